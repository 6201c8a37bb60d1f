package models

import "time"

// DeliverySlot is a catalog record as stored by the slot catalog.
type DeliverySlot struct {
	RawSlot `bson:",inline"`
	Active  bool `bson:"active" json:"active"`
}

// RawSlot is a time-windowed delivery option supplied by the catalog.
type RawSlot struct {
	ID                   string  `bson:"id" json:"id"`
	Name                 string  `bson:"name" json:"name"`
	IsExpress            bool    `bson:"isExpress" json:"isExpress"`
	Express24x7          bool    `bson:"express24x7" json:"express24x7"`
	ExpressDeliveryHours int     `bson:"expressDeliveryHours,omitempty" json:"expressDeliveryHours,omitempty"` // used only when IsExpress
	DeliveryStartTime    string  `bson:"deliveryStartTime,omitempty" json:"deliveryStartTime,omitempty"`       // "HH:MM"
	DeliveryEndTime      string  `bson:"deliveryEndTime,omitempty" json:"deliveryEndTime,omitempty"`           // "HH:MM"
	OrderCutoffTime      string  `bson:"orderCutoffTime,omitempty" json:"orderCutoffTime,omitempty"`           // "HH:MM", empty = no cutoff
	DeliveryCharge       float64 `bson:"deliveryCharge" json:"deliveryCharge"`
	MinOrderValue        float64 `bson:"minOrderValue" json:"minOrderValue"`               // 0 = no minimum
	DaysOfWeek           []int   `bson:"daysOfWeek,omitempty" json:"daysOfWeek,omitempty"` // 0 = Sunday; empty = every day
}

// EvaluatedSlot is a RawSlot annotated with its bookability at a given instant.
type EvaluatedSlot struct {
	RawSlot
	Disabled       bool       `json:"disabled"`
	DisabledReason string     `json:"disabledReason,omitempty"`
	DeliveryDate   *time.Time `json:"deliveryDate,omitempty"`  // standard slots only
	DeliveryLabel  string     `json:"deliveryLabel,omitempty"` // "Tomorrow" or "Mon, Jan 2"
	OpensIn        string     `json:"opensIn,omitempty"`       // express slots that are not yet open
}

// MeetsMinimum reports whether subtotal satisfies the slot's minimum order value.
func (s RawSlot) MeetsMinimum(subtotal float64) bool {
	return s.MinOrderValue == 0 || subtotal >= s.MinOrderValue
}

// Selectable reports whether the slot may be chosen for a cart with the given subtotal.
func (s EvaluatedSlot) Selectable(subtotal float64) bool {
	return !s.Disabled && s.MeetsMinimum(subtotal)
}

// SlotEvaluation partitions evaluated slots the way the cart page shows them.
type SlotEvaluation struct {
	Standard    []EvaluatedSlot `json:"standardSlots"`
	Express     []EvaluatedSlot `json:"expressSlots"`
	EvaluatedAt time.Time       `json:"evaluatedAt"`
}

// All returns standard slots followed by express slots.
func (e SlotEvaluation) All() []EvaluatedSlot {
	all := make([]EvaluatedSlot, 0, len(e.Standard)+len(e.Express))
	all = append(all, e.Standard...)
	return append(all, e.Express...)
}

// Find looks a slot up by id across both partitions.
func (e SlotEvaluation) Find(id string) (EvaluatedSlot, bool) {
	if id == "" {
		return EvaluatedSlot{}, false
	}
	for _, s := range e.Standard {
		if s.ID == id {
			return s, true
		}
	}
	for _, s := range e.Express {
		if s.ID == id {
			return s, true
		}
	}
	return EvaluatedSlot{}, false
}

// IsEmpty reports whether the evaluation holds no slots at all.
func (e SlotEvaluation) IsEmpty() bool {
	return len(e.Standard) == 0 && len(e.Express) == 0
}
