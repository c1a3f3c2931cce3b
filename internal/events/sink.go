package events

import (
	"context"
	"sync"
)

// Sink is an append-only event log. Implementations must preserve insertion
// order and must not deduplicate.
type Sink interface {
	Append(ctx context.Context, evt Event) error
	// List returns up to limit events, newest first.
	List(ctx context.Context, limit int) ([]Event, error)
}

// MemorySink keeps the log in process memory. Used when no database is
// configured and in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return nil
}

func (s *MemorySink) List(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}

	out := make([]Event, 0, limit)
	for i := len(s.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.events[i])
	}
	return out, nil
}
