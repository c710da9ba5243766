package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
}

// Store owns the client and the selected database.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns a Store bound to cfg.Database. A default timeout is applied when
// none is provided.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.timeout()
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database), timeout: timeout}, nil
}

// clientOptions builds the driver options for cfg. Driver retries are off,
// even when the URI asks for them: a failed store call surfaces to the caller
// immediately.
func clientOptions(cfg Config) *options.ClientOptions {
	timeout := cfg.timeout()
	poolSize := cfg.MaxPoolSize
	if poolSize == 0 {
		poolSize = 100
	}

	return options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(poolSize).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetRetryWrites(false).
		SetRetryReads(false)
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Database returns the selected database.
func (s *Store) Database() *mongo.Database { return s.db }

// Timeout is the per-operation deadline applied by collections of this store.
func (s *Store) Timeout() time.Duration { return s.timeout }

// Ping reports whether the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

// Disconnect closes every pooled connection.
func (s *Store) Disconnect(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
