// Package queue delivers lead.created events to notifiers off the request path.
package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/metrics"
)

const (
	defaultWorkers       = 4
	defaultChannelBuffer = 256
	defaultNotifyTimeout = 10 * time.Second
)

// Config sizes the dispatcher. Zero values fall back to defaults.
type Config struct {
	Workers       int
	Buffer        int
	NotifyTimeout time.Duration
}

// Dispatcher routes lead.created events to a fixed set of workers using
// consistent hashing on the lead id. Each worker hands the event to every
// notifier in order; a failing notifier does not stop the others.
type Dispatcher struct {
	workers   []chan ports.LeadCreatedEvent
	notifiers []ports.LeadNotifier
	timeout   time.Duration
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. It does nothing until Start is called.
func NewDispatcher(cfg Config, notifiers []ports.LeadNotifier, log zerolog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = defaultChannelBuffer
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	d := &Dispatcher{
		workers:   make([]chan ports.LeadCreatedEvent, cfg.Workers),
		notifiers: notifiers,
		timeout:   cfg.NotifyTimeout,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.LeadCreatedEvent, cfg.Buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Shutdown has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands event to the worker responsible for its lead. It never
// blocks: when that worker's channel is full, or the dispatcher is shut down,
// the event is dropped and Enqueue returns false.
func (d *Dispatcher) Enqueue(event ports.LeadCreatedEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	idx := d.shardIndex(event.LeadID)
	select {
	case d.workers[idx] <- event:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("queue", "dropped").Inc()
		d.log.Warn().
			Str("lead_id", event.LeadID).
			Int("worker_id", idx).
			Msg("notification queue full, event dropped")
		return false
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered,
// or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a lead id deterministically to a worker index.
func (d *Dispatcher) shardIndex(leadID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(leadID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.LeadCreatedEvent) {
	defer d.wg.Done()
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, event ports.LeadCreatedEvent) {
	for _, n := range d.notifiers {
		start := time.Now()
		nctx, cancel := context.WithTimeout(ctx, d.timeout)
		err := n.Notify(nctx, event)
		cancel()
		metrics.NotificationDuration.WithLabelValues(n.Name()).Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.NotificationsTotal.WithLabelValues(n.Name(), "failed").Inc()
			d.log.Error().Err(err).
				Str("lead_id", event.LeadID).
				Str("notifier", n.Name()).
				Int("worker_id", worker).
				Msg("lead notification failed")
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(n.Name(), "sent").Inc()
	}
}
