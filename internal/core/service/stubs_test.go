package service

import (
	"context"
	"sync"
	"time"

	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/infrastructure/db/memory"
)

// stubStore counts calls and can be told to fail; otherwise it delegates to
// an in-memory collection.
type stubStore[T any] struct {
	mem *memory.Collection[T]

	insertErr   error
	insertDelay time.Duration
	findErr     error
	countErr    error

	mu       sync.Mutex
	calls    int
	lastFind ports.FindOptions
}

func newStubStore[T any](name string) *stubStore[T] {
	return &stubStore[T]{mem: memory.NewCollection[T](name)}
}

func (s *stubStore[T]) Insert(ctx context.Context, doc T) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.insertDelay > 0 {
		time.Sleep(s.insertDelay)
	}
	if s.insertErr != nil {
		return s.insertErr
	}
	return s.mem.Insert(ctx, doc)
}

func (s *stubStore[T]) Find(ctx context.Context, opts ports.FindOptions) ([]T, error) {
	s.mu.Lock()
	s.calls++
	s.lastFind = opts
	s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.mem.Find(ctx, opts)
}

func (s *stubStore[T]) Count(ctx context.Context, filter ports.Filter) (int64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.mem.Count(ctx, filter)
}

func (s *stubStore[T]) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubIdempotency mimics the Redis store: nil entries are pending claims.
type stubIdempotency struct {
	mu         sync.Mutex
	entries    map[string][]byte
	reserveErr error
	released   []string
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{entries: map[string][]byte{}}
}

func (s *stubIdempotency) Reserve(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reserveErr != nil {
		return nil, false, s.reserveErr
	}
	b, ok := s.entries[key]
	if !ok {
		s.entries[key] = nil
		return nil, true, nil
	}
	return b, false, nil
}

func (s *stubIdempotency) Complete(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = payload
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.released = append(s.released, key)
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	accept bool
	events []ports.LeadCreatedEvent
}

func (p *stubPublisher) Enqueue(e ports.LeadCreatedEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.accept
}

func strPtr(s string) *string { return &s }
