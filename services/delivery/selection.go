package delivery

import (
	"context"
	"encoding/json"

	"basketly/models"

	"go.uber.org/zap"
)

// SelectionStore persists the single slot selection of a cart session.
// Set and Clear write the slot id and the slot snapshot together.
type SelectionStore interface {
	Get(ctx context.Context) (models.PersistedSelection, error)
	Set(ctx context.Context, slot models.EvaluatedSlot) error
	Clear(ctx context.Context) error
}

// SelectionManager owns the selection of one cart session. It is not safe for
// concurrent use; the Engine drives it from a single goroutine.
type SelectionManager struct {
	store       SelectionStore
	logger      *zap.Logger
	current     models.Selection
	initialized bool
}

func NewSelectionManager(store SelectionStore, logger *zap.Logger) *SelectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionManager{store: store, logger: logger}
}

// Current returns the current selection.
func (m *SelectionManager) Current() models.Selection {
	return m.current
}

// Initialized reports whether the first-load restore/auto-pick has run.
func (m *SelectionManager) Initialized() bool {
	return m.initialized
}

// Initialize runs restore and, failing that, auto-pick. Only the first call
// does anything; it returns false on later calls.
func (m *SelectionManager) Initialize(ctx context.Context, eval models.SlotEvaluation, subtotal float64) bool {
	if m.initialized {
		return false
	}
	m.initialized = true

	if m.current.IsSelected() {
		return true
	}
	if m.restore(ctx, eval, subtotal) {
		return true
	}
	m.AutoPick(ctx, eval, subtotal)
	return true
}

func (m *SelectionManager) restore(ctx context.Context, eval models.SlotEvaluation, subtotal float64) bool {
	persisted, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Warn("failed to read persisted slot selection", zap.Error(err))
		return false
	}
	if persisted.IsEmpty() {
		return false
	}

	candidates := []string{persisted.SlotID}
	if len(persisted.Snapshot) > 0 {
		var snap models.EvaluatedSlot
		if err := json.Unmarshal(persisted.Snapshot, &snap); err != nil {
			m.logger.Debug("discarding corrupt slot snapshot", zap.Error(err))
		} else {
			candidates = append(candidates, snap.ID)
		}
	}

	for _, id := range candidates {
		slot, ok := eval.Find(id)
		if !ok {
			continue
		}
		if !slot.Selectable(subtotal) {
			m.logger.Debug("persisted slot no longer eligible",
				zap.String("slotID", id),
				zap.Bool("disabled", slot.Disabled),
				zap.String("reason", slot.DisabledReason),
			)
			break
		}
		m.set(ctx, slot)
		m.logger.Debug("restored slot selection", zap.String("slotID", id))
		return true
	}

	m.clear(ctx)
	return false
}

// AutoPick selects the first eligible slot, standard slots first.
func (m *SelectionManager) AutoPick(ctx context.Context, eval models.SlotEvaluation, subtotal float64) bool {
	for _, slot := range eval.All() {
		if slot.Selectable(subtotal) {
			m.set(ctx, slot)
			m.logger.Debug("auto-picked slot", zap.String("slotID", slot.ID))
			return true
		}
	}
	return false
}

// Select handles a user click. Unknown, disabled or under-minimum slots are
// rejected without any state change.
func (m *SelectionManager) Select(ctx context.Context, slotID string, eval models.SlotEvaluation, subtotal float64) bool {
	slot, ok := eval.Find(slotID)
	if !ok || !slot.Selectable(subtotal) {
		return false
	}
	m.set(ctx, slot)
	return true
}

// SubtotalChanged clears the selection when the cart falls below the selected
// slot's minimum order value. It never picks a replacement.
func (m *SelectionManager) SubtotalChanged(ctx context.Context, subtotal float64) bool {
	if !m.current.IsSelected() || m.current.Slot.MeetsMinimum(subtotal) {
		return false
	}
	m.logger.Debug("clearing slot below minimum order value",
		zap.String("slotID", m.current.SlotID()),
		zap.Float64("minOrderValue", m.current.Slot.MinOrderValue),
		zap.Float64("subtotal", subtotal),
	)
	m.clear(ctx)
	return true
}

// Revalidate refreshes the held slot from a new evaluation and reports whether
// the selection is currently disabled or gone from the catalog. The selection
// itself is kept either way.
func (m *SelectionManager) Revalidate(eval models.SlotEvaluation) bool {
	if !m.current.IsSelected() {
		return false
	}
	slot, ok := eval.Find(m.current.SlotID())
	if !ok {
		return true
	}
	m.current = models.Selected(slot)
	return slot.Disabled
}

func (m *SelectionManager) set(ctx context.Context, slot models.EvaluatedSlot) {
	m.current = models.Selected(slot)
	if err := m.store.Set(ctx, slot); err != nil {
		m.logger.Warn("failed to persist slot selection", zap.String("slotID", slot.ID), zap.Error(err))
	}
}

func (m *SelectionManager) clear(ctx context.Context) {
	m.current = models.Unselected
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear persisted slot selection", zap.Error(err))
	}
}
