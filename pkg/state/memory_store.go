package state

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process, keyed by Ref.Identifier. Clone,
// when set, copies snapshots on the way in and out so callers never share
// state with the store.
type MemoryStore[T any] struct {
	Clone func(T) T

	mu      sync.RWMutex
	records map[string]memoryRecord[T]
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

// NewMemoryStore returns an empty store using clone to copy snapshots.
func NewMemoryStore[T any](clone func(T) T) *MemoryStore[T] {
	return &MemoryStore[T]{Clone: clone, records: map[string]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return s.copy(record.snapshot), cloneMeta(record.meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	if s.records == nil {
		s.records = map[string]memoryRecord[T]{}
	}
	s.records[key] = memoryRecord[T]{snapshot: s.copy(snapshot), meta: cloneMeta(meta)}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

// Len returns the number of stored baselines.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore[T]) copy(snapshot T) T {
	if s.Clone == nil {
		return snapshot
	}
	return s.Clone(snapshot)
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
