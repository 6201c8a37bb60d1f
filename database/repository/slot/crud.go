// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"basketly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpsertMany writes catalog records keyed by slot id, in order, and returns
// the number of newly inserted slots.
func (r *mongoSlotRepo) UpsertMany(ctx context.Context, slots []models.DeliverySlot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	writes := make([]mongo.WriteModel, 0, len(slots))
	for _, s := range slots {
		if s.ID == "" {
			return 0, errors.New("slot id is required")
		}
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"id": s.ID}).
			SetReplacement(s).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("failed to upsert slots: %w", err)
	}
	return int(res.UpsertedCount), nil
}

// DeactivateMissing marks every active slot whose id is not in keep as inactive.
func (r *mongoSlotRepo) DeactivateMissing(ctx context.Context, keep []string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"active": true, "id": bson.M{"$nin": keep}}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate slots: %w", err)
	}
	return int(res.ModifiedCount), nil
}
