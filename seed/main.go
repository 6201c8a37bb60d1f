package main

import (
	"context"
	"fmt"
	"time"

	"basketly/config"
	"basketly/database"
	slotRepo "basketly/database/repository/slot"
	"basketly/models"
	"basketly/utils"

	"go.uber.org/zap"
)

// window is a delivery window in minutes from midnight.
type window struct {
	Start int
	End   int
}

// Standard next-day windows, with the order cutoff for each.
var standardWindows = []struct {
	window
	Cutoff int
}{
	{window{480, 660}, 1080},   // 8:00 AM - 11:00 AM, order by 6 PM
	{window{720, 840}, 1200},   // 12:00 PM - 2:00 PM, order by 8 PM
	{window{900, 1080}, 1320},  // 3:00 PM - 6:00 PM, order by 10 PM
	{window{1140, 1260}, 1320}, // 7:00 PM - 9:00 PM, order by 10 PM
}

func hhmm(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// demoCatalog returns the slot catalog of a single dark store.
func demoCatalog() []models.DeliverySlot {
	var slots []models.DeliverySlot
	for i, w := range standardWindows {
		slots = append(slots, models.DeliverySlot{
			Active: true,
			RawSlot: models.RawSlot{
				ID:                fmt.Sprintf("std-%d", i+1),
				Name:              fmt.Sprintf("%s - %s", hhmm(w.Start), hhmm(w.End)),
				DeliveryStartTime: hhmm(w.Start),
				DeliveryEndTime:   hhmm(w.End),
				OrderCutoffTime:   hhmm(w.Cutoff),
				DeliveryCharge:    30,
				DaysOfWeek:        []int{1, 2, 3, 4, 5, 6},
			},
		})
	}

	slots = append(slots,
		models.DeliverySlot{
			Active: true,
			RawSlot: models.RawSlot{
				ID:                "std-bulk-sunday",
				Name:              "Sunday bulk restock",
				DeliveryStartTime: "07:00",
				DeliveryEndTime:   "10:00",
				OrderCutoffTime:   "20:00",
				MinOrderValue:     5000,
				DaysOfWeek:        []int{0},
			},
		},
		models.DeliverySlot{
			Active: true,
			RawSlot: models.RawSlot{
				ID:                   "exp-day",
				Name:                 "Express (2 hours)",
				IsExpress:            true,
				ExpressDeliveryHours: 2,
				DeliveryStartTime:    "09:00",
				DeliveryEndTime:      "21:00",
				OrderCutoffTime:      "19:00",
				DeliveryCharge:       60,
				MinOrderValue:        500,
			},
		},
		models.DeliverySlot{
			Active: true,
			RawSlot: models.RawSlot{
				ID:                   "exp-24x7",
				Name:                 "Express 24x7 (4 hours)",
				IsExpress:            true,
				Express24x7:          true,
				ExpressDeliveryHours: 4,
				DeliveryCharge:       99,
				MinOrderValue:        1000,
			},
		},
	)
	return slots
}

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer database.CloseDB(ctx)

	repo := slotRepo.NewMongoSlotRepo()
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure slot indexes", zap.Error(err))
	}

	slots := demoCatalog()
	inserted, err := repo.UpsertMany(ctx, slots)
	if err != nil {
		logger.Fatal("Failed to seed slot catalog", zap.Error(err))
	}

	keep := make([]string, 0, len(slots))
	for _, s := range slots {
		keep = append(keep, s.ID)
	}
	retired, err := repo.DeactivateMissing(ctx, keep)
	if err != nil {
		logger.Fatal("Failed to retire old slots", zap.Error(err))
	}

	logger.Info("Seeded delivery slot catalog",
		zap.Int("slots", len(slots)),
		zap.Int("inserted", inserted),
		zap.Int("retired", retired),
	)
}
