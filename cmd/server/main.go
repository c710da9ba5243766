// @title                       Leads Service API
// @version                     1.0
// @description                 Lead intake, status checks and admin listing.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/carbonwallet/leads-service/internal/api"
	"github.com/carbonwallet/leads-service/internal/api/handler"
	"github.com/carbonwallet/leads-service/internal/core/domain"
	"github.com/carbonwallet/leads-service/internal/core/ports"
	"github.com/carbonwallet/leads-service/internal/core/service"
	"github.com/carbonwallet/leads-service/internal/infrastructure/config"
	"github.com/carbonwallet/leads-service/internal/infrastructure/db/memory"
	"github.com/carbonwallet/leads-service/internal/infrastructure/db/mongo"
	redisstore "github.com/carbonwallet/leads-service/internal/infrastructure/db/redis"
	"github.com/carbonwallet/leads-service/internal/infrastructure/mail"
	"github.com/carbonwallet/leads-service/internal/infrastructure/messaging"
	"github.com/carbonwallet/leads-service/internal/infrastructure/queue"
	"github.com/carbonwallet/leads-service/internal/infrastructure/scheduler"
	"github.com/carbonwallet/leads-service/internal/pkg/validate"
	"github.com/carbonwallet/leads-service/pkg/logger"
)

const serviceName = "leads-service"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type stores struct {
	leads  ports.RecordStore[domain.Lead]
	checks ports.RecordStore[domain.StatusCheck]
	ping   handler.Pinger
	close  func(context.Context) error
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
		Env:     cfg.Env,
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	readiness := []handler.Dependency{{Name: "store", Pinger: st.ping}}
	v := validate.New()

	var leadOpts []service.LeadServiceOption
	if cfg.RedisEnabled() {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		leadOpts = append(leadOpts, service.WithIdempotency(redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)))
		readiness = append(readiness, handler.Dependency{
			Name:   "redis",
			Pinger: handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency replays enabled")
	}

	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, log)
	if err != nil {
		return err
	}
	auth, err := service.NewAuthService(service.AdminCredentials{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
	}, tokens, log)
	if err != nil {
		return err
	}

	var notifiers []ports.LeadNotifier
	if cfg.AMQPEnabled() {
		conn, err := messaging.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer conn.Close()
		notifiers = append(notifiers, messaging.NewPublisher(conn.Channel(), cfg.AMQP.Exchange, cfg.AMQP.RoutingKey))
	}
	if cfg.SMTPEnabled() {
		notifiers = append(notifiers, mail.NewNotifier(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			To:       cfg.Notify.To,
		}))
	}

	var dispatcher *queue.Dispatcher
	if len(notifiers) > 0 {
		dispatcher = queue.NewDispatcher(queue.Config{Workers: cfg.Notify.Workers}, notifiers, log)
		// Workers outlive the signal context so Shutdown can drain them.
		dispatcher.Start(context.WithoutCancel(ctx))
		leadOpts = append(leadOpts, service.WithEventPublisher(dispatcher))
	}

	leads := service.NewLeadService(st.leads, v, log, leadOpts...)
	status := service.NewStatusService(st.checks, v, log)

	var heartbeat *scheduler.Heartbeat
	if cfg.HeartbeatSchedule != "" {
		heartbeat, err = scheduler.NewHeartbeat(cfg.HeartbeatSchedule, status, log)
		if err != nil {
			return err
		}
		heartbeat.Start()
	}

	router := api.NewRouter(api.Services{
		Leads:  leads,
		Status: status,
		Auth:   auth,
		Tokens: tokens,
	}, api.Options{
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
		Readiness:   readiness,
		Validator:   v,
		Log:         log,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.StoreBackend).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if heartbeat != nil {
		if err := heartbeat.Stop(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("heartbeat stop")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	if dispatcher != nil {
		if err := dispatcher.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("notification queue drain")
		}
	}

	log.Info().Msg("stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		leads := memory.NewCollection[domain.Lead](domain.LeadsCollection)
		return &stores{
			leads:  leads,
			checks: memory.NewCollection[domain.StatusCheck](domain.StatusChecksCollection),
			ping:   leads,
			close:  func(context.Context) error { return nil },
		}, nil
	}

	store, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URL,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, store.Database()); err != nil {
		_ = store.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	return &stores{
		leads:  mongo.NewCollection[domain.Lead](store.Database(), domain.LeadsCollection, store.Timeout()),
		checks: mongo.NewCollection[domain.StatusCheck](store.Database(), domain.StatusChecksCollection, store.Timeout()),
		ping:   store,
		close:  store.Disconnect,
	}, nil
}
