package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"basketly/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func morningSlot() models.EvaluatedSlot {
	return models.EvaluatedSlot{
		RawSlot: models.RawSlot{
			ID:                "s-morning",
			Name:              "Morning",
			DeliveryStartTime: "08:00",
			DeliveryEndTime:   "11:00",
			DeliveryCharge:    30,
			DaysOfWeek:        []int{1, 2, 3},
		},
		DeliveryLabel: "Tomorrow",
	}
}

func TestRedisSelectionStore_EmptyGet(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisSelectionStore(client, "sess-1", time.Hour)

	p, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestRedisSelectionStore_SetWritesBothKeys(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSelectionStore(client, "sess-1", time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, morningSlot()))

	id, err := mr.Get("selection:sess-1:selectedSlotId")
	require.NoError(t, err)
	assert.Equal(t, "s-morning", id)
	assert.Equal(t, time.Hour, mr.TTL("selection:sess-1:selectedSlotId"))
	assert.Equal(t, time.Hour, mr.TTL("selection:sess-1:selectedSlotSnapshot"))

	p, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s-morning", p.SlotID)

	var snap models.EvaluatedSlot
	require.NoError(t, json.Unmarshal(p.Snapshot, &snap))
	assert.Equal(t, morningSlot(), snap)
}

func TestRedisSelectionStore_SessionsAreIsolated(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, NewRedisSelectionStore(client, "sess-1", 0).Set(ctx, morningSlot()))

	p, err := NewRedisSelectionStore(client, "sess-2", 0).Get(ctx)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestRedisSelectionStore_Clear(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSelectionStore(client, "sess-1", time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, morningSlot()))
	require.NoError(t, store.Clear(ctx))

	assert.False(t, mr.Exists("selection:sess-1:selectedSlotId"))
	assert.False(t, mr.Exists("selection:sess-1:selectedSlotSnapshot"))
	p, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestRedisSelectionStore_Expires(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSelectionStore(client, "sess-1", time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, morningSlot()))
	mr.FastForward(2 * time.Hour)

	p, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
}

func TestRedisSelectionStore_ServerDown(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSelectionStore(client, "sess-1", time.Hour)
	mr.Close()
	ctx := context.Background()

	_, err := store.Get(ctx)
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, morningSlot()))
	assert.Error(t, store.Clear(ctx))
}

func TestMemorySelectionStore(t *testing.T) {
	store := NewMemorySelectionStore()
	ctx := context.Background()

	store.Seed("legacy", []byte("{broken"))
	p, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "legacy", p.SlotID)
	assert.Equal(t, []byte("{broken"), p.Snapshot)

	require.NoError(t, store.Set(ctx, morningSlot()))
	p, _ = store.Get(ctx)
	assert.Equal(t, "s-morning", p.SlotID)

	require.NoError(t, store.Clear(ctx))
	p, _ = store.Get(ctx)
	assert.True(t, p.IsEmpty())
}

func TestMemoryStores_ForReturnsSameStore(t *testing.T) {
	stores := NewMemoryStores()
	assert.Same(t, stores.For("a"), stores.For("a"))
	assert.NotSame(t, stores.For("a"), stores.For("b"))
}
