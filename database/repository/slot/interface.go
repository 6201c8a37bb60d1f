// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"

	"basketly/database"
	"basketly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "delivery_slots"

// SlotCatalogRepository reads the delivery slot catalog. Cart sessions only
// read; the write methods serve the catalog seeder.
type SlotCatalogRepository interface {
	ActiveSlots(ctx context.Context) ([]models.RawSlot, error)
	EnsureIndexes(ctx context.Context) error

	UpsertMany(ctx context.Context, slots []models.DeliverySlot) (int, error)
	DeactivateMissing(ctx context.Context, keep []string) (int, error)
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a MongoDB-backed catalog on the application database.
func NewMongoSlotRepo() SlotCatalogRepository {
	return NewMongoSlotRepoWithDB(database.Database())
}

// NewMongoSlotRepoWithDB constructs a catalog on an explicit database handle.
func NewMongoSlotRepoWithDB(db *mongo.Database) SlotCatalogRepository {
	return &mongoSlotRepo{coll: db.Collection(collectionName)}
}
