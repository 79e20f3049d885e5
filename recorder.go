package reconcile

import (
	"context"
	"sync"
)

// Recorder is a Callback that keeps every event it receives. Fail, when
// set, is consulted first and its error returned without recording.
type Recorder struct {
	Fail func(ChangeEvent) error

	mu     sync.Mutex
	events []ChangeEvent
}

// Handle implements Callback.
func (r *Recorder) Handle(_ context.Context, event ChangeEvent) error {
	if r.Fail != nil {
		if err := r.Fail(event); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ChangeEvent(nil), r.events...)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, len(r.events))
	for i, event := range r.events {
		kinds[i] = event.Kind
	}
	return kinds
}

// Reset forgets the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
