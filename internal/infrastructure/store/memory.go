package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/webcreatorLuke/roblox-code-bot/internal/domain"
	"github.com/webcreatorLuke/roblox-code-bot/internal/ports"
)

// MemoryStore keeps generations in process memory. Used for --ephemeral
// sessions and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []memoryEntry
	seq     int64
	now     func() time.Time
}

type memoryEntry struct {
	seq    int64
	record domain.GenerationRecord
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores gen with a new id and timestamp.
func (s *MemoryStore) Create(ctx context.Context, gen domain.NewGeneration) (domain.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.GenerationRecord{}, goerr.Wrap(err, "create cancelled")
	}
	id, err := newRecordID()
	if err != nil {
		return domain.GenerationRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	record := gen.Record(id, s.now().UTC())
	s.records = append(s.records, memoryEntry{seq: s.seq, record: record})
	return record, nil
}

// List returns up to limit records, newest first. Records created within the
// same clock tick keep insertion order.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, goerr.Wrap(err, "list cancelled")
	}
	s.mu.RLock()
	entries := append([]memoryEntry(nil), s.records...)
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.record.CreatedAt.Equal(b.record.CreatedAt) {
			return a.record.CreatedAt.After(b.record.CreatedAt)
		}
		return a.seq > b.seq
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]domain.GenerationRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.record)
	}
	return out, nil
}

// Get returns the record with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (domain.GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.records {
		if e.record.ID == id {
			return e.record, nil
		}
	}
	return domain.GenerationRecord{}, goerr.Wrap(domain.ErrRecordNotFound, "generation not found", goerr.V("id", id))
}

// Clear removes every record.
func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

var _ ports.GenerationRepository = (*MemoryStore)(nil)
