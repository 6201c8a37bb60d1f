package delivery

import (
	"context"

	"basketly/models"
)

// CatalogProvider supplies the active delivery slots.
type CatalogProvider interface {
	ActiveSlots(ctx context.Context) ([]models.RawSlot, error)
}

// StoreFactory builds the selection store of a cart session.
type StoreFactory func(sessionID string) SelectionStore

// SessionEngine is the view of an Engine the HTTP layer works against.
type SessionEngine interface {
	Snapshot(ctx context.Context) (models.SlotSnapshot, error)
	UpdateCart(ctx context.Context, cart models.CartState) (models.SlotSnapshot, error)
	Select(ctx context.Context, slotID string) (models.SlotSnapshot, bool, error)
	Refresh(ctx context.Context) (models.SlotSnapshot, error)
	Subscribe() (<-chan models.SlotSnapshot, func())
}
