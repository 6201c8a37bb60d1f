package models

import "time"

// Selection is either unselected (Slot == nil) or the single chosen slot.
type Selection struct {
	Slot *EvaluatedSlot `json:"slot,omitempty"`
}

// Unselected is the empty selection.
var Unselected = Selection{}

// Selected builds a selection holding a copy of slot.
func Selected(slot EvaluatedSlot) Selection {
	return Selection{Slot: &slot}
}

// IsSelected reports whether a slot is chosen.
func (s Selection) IsSelected() bool {
	return s.Slot != nil
}

// SlotID returns the selected slot id, or "" when unselected.
func (s Selection) SlotID() string {
	if s.Slot == nil {
		return ""
	}
	return s.Slot.ID
}

// PersistedSelection is what a selection store hands back at startup.
type PersistedSelection struct {
	SlotID   string
	Snapshot []byte // serialized EvaluatedSlot at the time of selection
}

// IsEmpty reports whether nothing was persisted.
func (p PersistedSelection) IsEmpty() bool {
	return p.SlotID == "" && len(p.Snapshot) == 0
}

// SlotSnapshot is the cart page view published after every engine pass.
type SlotSnapshot struct {
	SessionID         string           `json:"sessionId"`
	Loaded            bool             `json:"loaded"`
	AwaitingCart      bool             `json:"awaitingCart"`
	CatalogError      bool             `json:"catalogError"`
	NoSlotsAvailable  bool             `json:"noSlotsAvailable"`
	StandardSlots     []EvaluatedSlot  `json:"standardSlots"`
	ExpressSlots      []EvaluatedSlot  `json:"expressSlots"`
	SelectedSlotID    string           `json:"selectedSlotId,omitempty"`
	SelectedSlot      *EvaluatedSlot   `json:"selectedSlot,omitempty"`
	SelectionDisabled bool             `json:"selectionDisabled"`
	CartSubtotal      float64          `json:"cartSubtotal"`
	Pricing           PricingBreakdown `json:"pricing"`
	EvaluatedAt       time.Time        `json:"evaluatedAt"`
	Version           uint64           `json:"version"`
}
