package delivery

import (
	"sort"
	"time"

	"basketly/models"
)

// Disabled reasons shown on the cart page.
const (
	ReasonCutoffPassed      = "Cutoff time passed"
	ReasonNotYetOpen        = "Not yet open"
	ReasonClosedForToday    = "Closed for today"
	ReasonNoNextDayDelivery = "Not available for next delivery"
)

// Evaluate decides which raw slots are bookable at now and partitions them into
// standard (sorted by delivery start) and express (catalog order) slots.
//
// The cart subtotal never disables a slot; minimum order values only govern
// whether a slot can be selected. Evaluate is pure and does not modify raw.
func Evaluate(raw []models.RawSlot, now time.Time, cartSubtotal float64) models.SlotEvaluation {
	eval := models.SlotEvaluation{
		Standard:    []models.EvaluatedSlot{},
		Express:     []models.EvaluatedSlot{},
		EvaluatedAt: now,
	}
	current := TimeOfDayOf(now)

	for _, slot := range raw {
		if slot.IsExpress {
			eval.Express = append(eval.Express, evaluateExpress(slot, current))
			continue
		}
		eval.Standard = append(eval.Standard, evaluateStandard(slot, now, current))
	}

	sort.SliceStable(eval.Standard, func(i, j int) bool {
		return startOf(eval.Standard[i].RawSlot).Before(startOf(eval.Standard[j].RawSlot))
	})
	return eval
}

func newEvaluated(slot models.RawSlot) models.EvaluatedSlot {
	// copy so callers can't alias the catalog's weekday slice
	if slot.DaysOfWeek != nil {
		slot.DaysOfWeek = append([]int(nil), slot.DaysOfWeek...)
	}
	return models.EvaluatedSlot{RawSlot: slot}
}

func pastCutoff(slot models.RawSlot, current TimeOfDay) bool {
	cutoff, ok := optionalTimeOfDay(slot.OrderCutoffTime)
	if !ok {
		return false
	}
	return !current.Before(cutoff)
}

func evaluateExpress(slot models.RawSlot, current TimeOfDay) models.EvaluatedSlot {
	es := newEvaluated(slot)

	if pastCutoff(slot, current) {
		es.Disabled = true
		es.DisabledReason = ReasonCutoffPassed
	}
	if slot.Express24x7 {
		return es
	}

	// Each half of the window is checked only when its bound is present.
	// A finished window overrides the cutoff reason.
	if end, ok := optionalTimeOfDay(slot.DeliveryEndTime); ok && current.After(end) {
		es.Disabled = true
		es.DisabledReason = ReasonClosedForToday
		return es
	}
	if es.Disabled {
		return es
	}
	if start, ok := optionalTimeOfDay(slot.DeliveryStartTime); ok && current.Before(start) {
		es.Disabled = true
		es.DisabledReason = ReasonNotYetOpen
		es.OpensIn = FormatCountdown(start.Minutes() - current.Minutes())
	}
	return es
}

func evaluateStandard(slot models.RawSlot, now time.Time, current TimeOfDay) models.EvaluatedSlot {
	es := newEvaluated(slot)

	tomorrow := Tomorrow(now)
	dayAfter := DayAfterTomorrow(now)
	availableTomorrow := allowsWeekday(slot.DaysOfWeek, tomorrow)
	availableDayAfter := allowsWeekday(slot.DaysOfWeek, dayAfter)

	var day time.Time
	switch {
	case pastCutoff(slot, current):
		if availableDayAfter {
			day = dayAfter
		}
	case availableTomorrow:
		day = tomorrow
	case availableDayAfter:
		day = dayAfter
	}

	if day.IsZero() {
		es.Disabled = true
		es.DisabledReason = ReasonNoNextDayDelivery
		return es
	}
	es.DeliveryDate = &day
	es.DeliveryLabel = DeliveryLabel(day, tomorrow)
	return es
}

// startOf returns the delivery start, treating a missing start as midnight.
func startOf(slot models.RawSlot) TimeOfDay {
	start, _ := optionalTimeOfDay(slot.DeliveryStartTime)
	return start
}
