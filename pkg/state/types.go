package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrETagMismatch is returned when a commit was prepared against a stale
	// baseline.
	ErrETagMismatch = errors.New("state: etag mismatch")
	// ErrNotFound is returned by Baselines.Load when no baseline exists.
	ErrNotFound = errors.New("state: baseline not found")
)

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads and saves one snapshot per Ref.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T, meta Meta) (Meta, error)
}

// Baselines wraps a Store with ETag checks and snapshot identifiers.
type Baselines[T any] struct {
	Store Store[T]
	// NewID generates snapshot identifiers. Required for Commit.
	NewID func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Load returns the baseline stored under ref, or ErrNotFound.
func (b Baselines[T]) Load(ctx context.Context, ref Ref) (T, Meta, error) {
	var zero T
	if b.Store == nil {
		return zero, Meta{}, fmt.Errorf("state: store is required")
	}
	snapshot, meta, ok, err := b.Store.Load(ctx, ref)
	if err != nil {
		return zero, Meta{}, fmt.Errorf("state: load %s: %w", ref, err)
	}
	if !ok {
		return zero, Meta{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return snapshot, meta, nil
}

// Commit saves snapshot as the new baseline for ref. When expected.ETag is
// set it must match the stored ETag. The returned Meta carries a fresh
// snapshot ID and an incremented ETag.
func (b Baselines[T]) Commit(ctx context.Context, ref Ref, snapshot T, expected Meta) (Meta, error) {
	if b.Store == nil {
		return Meta{}, fmt.Errorf("state: store is required")
	}
	if b.NewID == nil {
		return Meta{}, fmt.Errorf("state: id generator is required")
	}

	_, current, ok, err := b.Store.Load(ctx, ref)
	if err != nil {
		return Meta{}, fmt.Errorf("state: load %s: %w", ref, err)
	}
	if !ok {
		current = Meta{}
	}
	if expected.ETag != "" && current.ETag != "" && expected.ETag != current.ETag {
		return current, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, expected.ETag, current.ETag)
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	next := mergeMeta(current, expected)
	next.SnapshotID = b.NewID()
	next.ETag = nextETag(current.ETag)
	next.UpdatedAt = now().UTC()

	saved, err := b.Store.Save(ctx, ref, snapshot, next)
	if err != nil {
		return current, fmt.Errorf("state: save %s: %w", ref, err)
	}
	return saved, nil
}

func nextETag(current string) string {
	n, err := strconv.Atoi(current)
	if err != nil {
		return "1"
	}
	return strconv.Itoa(n + 1)
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
