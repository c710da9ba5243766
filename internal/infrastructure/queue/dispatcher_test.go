package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonwallet/leads-service/internal/core/ports"
)

type recordingNotifier struct {
	name string
	err  error

	mu     sync.Mutex
	events []ports.LeadCreatedEvent
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Notify(_ context.Context, e ports.LeadCreatedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func (n *recordingNotifier) ids() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.LeadID)
	}
	return out
}

func TestDispatcher_DeliversToEveryNotifier(t *testing.T) {
	failing := &recordingNotifier{name: "amqp", err: errors.New("broker down")}
	ok := &recordingNotifier{name: "email"}
	d := NewDispatcher(Config{Workers: 2}, []ports.LeadNotifier{failing, ok}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, id := range []string{"l1", "l2", "l3"} {
		require.True(t, d.Enqueue(ports.LeadCreatedEvent{LeadID: id}))
	}

	assert.Eventually(t, func() bool { return ok.count() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 3, failing.count(), "a failing notifier does not stop delivery to the next")
}

func TestDispatcher_SameLeadKeepsOrder(t *testing.T) {
	n := &recordingNotifier{name: "email"}
	d := NewDispatcher(Config{Workers: 4}, []ports.LeadNotifier{n}, zerolog.Nop())
	d.Start(context.Background())

	for i := 0; i < 20; i++ {
		require.True(t, d.Enqueue(ports.LeadCreatedEvent{LeadID: "same", Name: string(rune('a' + i))}))
	}
	require.NoError(t, d.Shutdown(context.Background()))

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.events, 20)
	for i, e := range n.events {
		assert.Equal(t, string(rune('a'+i)), e.Name)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	n := &recordingNotifier{name: "email"}
	d := NewDispatcher(Config{Workers: 1, Buffer: 2}, []ports.LeadNotifier{n}, zerolog.Nop())

	// Not started: the channel fills and further events are dropped.
	assert.True(t, d.Enqueue(ports.LeadCreatedEvent{LeadID: "1"}))
	assert.True(t, d.Enqueue(ports.LeadCreatedEvent{LeadID: "2"}))
	assert.False(t, d.Enqueue(ports.LeadCreatedEvent{LeadID: "3"}))

	d.Start(context.Background())
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, []string{"1", "2"}, n.ids())
}

func TestDispatcher_ShutdownRejectsNewEvents(t *testing.T) {
	d := NewDispatcher(Config{}, nil, zerolog.Nop())
	d.Start(context.Background())

	require.NoError(t, d.Shutdown(context.Background()))
	require.NoError(t, d.Shutdown(context.Background()), "shutdown is idempotent")
	assert.False(t, d.Enqueue(ports.LeadCreatedEvent{LeadID: "late"}))
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(Config{Workers: 8}, nil, zerolog.Nop())
	first := d.shardIndex("lead-42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("lead-42"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}
