// Package scheduler runs the optional self-heartbeat that writes status checks.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/pkg/metrics"
)

// HeartbeatClientName is the client_name of status checks written by the service itself.
const HeartbeatClientName = "leads-service"

const runTimeout = 10 * time.Second

// parser accepts standard five-field expressions and descriptors like "@every 1m".
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Heartbeat records a StatusCheck on a cron schedule.
type Heartbeat struct {
	cron   *cron.Cron
	status ports.StatusService
	log    zerolog.Logger
}

// NewHeartbeat validates schedule and registers the job. It does not start it.
func NewHeartbeat(schedule string, status ports.StatusService, log zerolog.Logger) (*Heartbeat, error) {
	cl := cronLogger{log: log}
	h := &Heartbeat{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		status: status,
		log:    log,
	}
	if _, err := h.cron.AddFunc(schedule, h.Run); err != nil {
		return nil, fmt.Errorf("invalid heartbeat schedule %q: %w", schedule, err)
	}
	return h, nil
}

// Start runs the scheduler in its own goroutine.
func (h *Heartbeat) Start() {
	h.cron.Start()
	h.log.Info().Msg("heartbeat scheduler started")
}

// Stop prevents new runs and waits for a running one to finish, or for ctx.
func (h *Heartbeat) Stop(ctx context.Context) error {
	select {
	case <-h.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run records one heartbeat. Failures are logged; the next tick retries.
func (h *Heartbeat) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	check, err := h.status.Record(ctx, HeartbeatClientName)
	if err != nil {
		h.log.Error().Err(err).Msg("heartbeat failed")
		return
	}
	metrics.StatusChecksTotal.WithLabelValues("heartbeat").Inc()
	h.log.Debug().Str("status_check_id", check.ID).Msg("heartbeat recorded")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
