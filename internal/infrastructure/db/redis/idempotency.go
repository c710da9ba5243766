package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed owner can block its key.
	pendingTTL    = time.Minute
	pendingMarker = "pending"
)

// IdempotencyStore gates lead submissions by Idempotency-Key. Reserve claims
// a key with SETNX before the insert; Complete replaces the claim with the
// stored lead so later requests replay it; Release drops a claim whose insert
// failed.
// Key format: idempotency:lead:<key>
type IdempotencyStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewIdempotencyStore wraps client. A non-positive ttl falls back to 24h.
func NewIdempotencyStore(client redis.Cmdable, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve claims key. Exactly one concurrent caller gets reserved=true. The
// others get the completed payload, or a nil payload while the owner is still
// working.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) ([]byte, bool, error) {
	k := s.key(key)
	for range 2 {
		ok, err := s.client.SetNX(ctx, k, pendingMarker, pendingTTL).Result()
		if err != nil {
			return nil, false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return nil, true, nil
		}

		b, err := s.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return nil, false, fmt.Errorf("idempotency reserve: %w", err)
		}
		if string(b) == pendingMarker {
			return nil, false, nil
		}
		return b, false, nil
	}
	return nil, false, nil
}

// Complete stores payload under a key previously reserved by the caller.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.key(key), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

// Release drops a reservation so the key can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(k string) string {
	return "idempotency:lead:" + k
}
