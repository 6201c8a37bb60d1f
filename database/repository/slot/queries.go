// File: database/repository/slot/queries.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"basketly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoSlotRepo) ActiveSlots(ctx context.Context) ([]models.RawSlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// natural insertion order is the catalog order express slots are shown in
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query active slots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.DeliverySlot
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode active slots: %w", err)
	}

	slots := make([]models.RawSlot, 0, len(docs))
	for _, d := range docs {
		if !d.Active || d.ID == "" {
			continue
		}
		slots = append(slots, d.RawSlot)
	}
	return slots, nil
}
