// File: services/storage/selection.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"basketly/models"

	"github.com/go-redis/redis/v8"
)

const (
	selectionPrefix    = "selection:"
	slotIDSuffix       = ":selectedSlotId"
	slotSnapshotSuffix = ":selectedSlotSnapshot"
)

// DefaultSelectionTTL bounds how long an abandoned cart keeps its slot.
const DefaultSelectionTTL = 7 * 24 * time.Hour

// RedisSelectionStore persists one cart session's slot selection in Redis.
type RedisSelectionStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisSelectionStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisSelectionStore {
	if ttl <= 0 {
		ttl = DefaultSelectionTTL
	}
	return &RedisSelectionStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (s *RedisSelectionStore) idKey() string {
	return selectionPrefix + s.sessionID + slotIDSuffix
}

func (s *RedisSelectionStore) snapshotKey() string {
	return selectionPrefix + s.sessionID + slotSnapshotSuffix
}

func (s *RedisSelectionStore) Get(ctx context.Context) (models.PersistedSelection, error) {
	vals, err := s.client.MGet(ctx, s.idKey(), s.snapshotKey()).Result()
	if err != nil {
		return models.PersistedSelection{}, fmt.Errorf("failed to read selection: %w", err)
	}

	var p models.PersistedSelection
	if id, ok := vals[0].(string); ok {
		p.SlotID = id
	}
	if snap, ok := vals[1].(string); ok {
		p.Snapshot = []byte(snap)
	}
	return p, nil
}

// Set writes the slot id and snapshot in one MULTI/EXEC.
func (s *RedisSelectionStore) Set(ctx context.Context, slot models.EvaluatedSlot) error {
	snap, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to encode slot snapshot: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.idKey(), slot.ID, s.ttl)
		pipe.Set(ctx, s.snapshotKey(), snap, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist selection: %w", err)
	}
	return nil
}

func (s *RedisSelectionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.idKey(), s.snapshotKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear selection: %w", err)
	}
	return nil
}

// MemorySelectionStore keeps a selection in process memory.
type MemorySelectionStore struct {
	mu       sync.Mutex
	slotID   string
	snapshot []byte
}

func NewMemorySelectionStore() *MemorySelectionStore {
	return &MemorySelectionStore{}
}

// Seed stores raw values as-is, bypassing encoding.
func (s *MemorySelectionStore) Seed(slotID string, snapshot []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotID = slotID
	s.snapshot = snapshot
}

func (s *MemorySelectionStore) Get(ctx context.Context) (models.PersistedSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.PersistedSelection{SlotID: s.slotID, Snapshot: append([]byte(nil), s.snapshot...)}, nil
}

func (s *MemorySelectionStore) Set(ctx context.Context, slot models.EvaluatedSlot) error {
	snap, err := json.Marshal(slot)
	if err != nil {
		return fmt.Errorf("failed to encode slot snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotID = slot.ID
	s.snapshot = snap
	return nil
}

func (s *MemorySelectionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotID = ""
	s.snapshot = nil
	return nil
}

// MemoryStores hands out one in-memory store per session.
type MemoryStores struct {
	mu     sync.Mutex
	stores map[string]*MemorySelectionStore
}

func NewMemoryStores() *MemoryStores {
	return &MemoryStores{stores: make(map[string]*MemorySelectionStore)}
}

// For returns the store of sessionID, creating it on first use.
func (m *MemoryStores) For(sessionID string) *MemorySelectionStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[sessionID]
	if !ok {
		s = NewMemorySelectionStore()
		m.stores[sessionID] = s
	}
	return s
}
