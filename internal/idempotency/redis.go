// Package idempotency remembers completed responses by client-supplied key so
// a retried request is answered without repeating its side effects.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInFlight means another request with the same key has not finished yet.
	ErrInFlight = errors.New("request with this idempotency key is in progress")
	// ErrKeyReused means the key was first used with a different request body.
	ErrKeyReused = errors.New("idempotency key was used with a different request")
)

const (
	statePending  = "pending"
	stateComplete = "complete"

	defaultLockTTL = time.Minute
)

// entry is the value stored under a key. Fingerprint identifies the request
// that claimed it.
type entry struct {
	State       string          `json:"state"`
	Fingerprint string          `json:"fingerprint"`
	Response    json.RawMessage `json:"response,omitempty"`
}

type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore keeps completed responses for ttl. A claim that is never
// completed or released expires after lockTTL (one minute when not positive).
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration) *RedisStore {
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &RedisStore{client: client, ttl: ttl, lockTTL: lockTTL}
}

// LockTTL is how long a claim outlives a request that never finishes.
// Callers bound the guarded work by it so a claim cannot lapse mid-request.
func (s *RedisStore) LockTTL() time.Duration {
	return s.lockTTL
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Fingerprint hashes a request body into the form Claim expects.
func Fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Claim reserves key for the request identified by fingerprint. When the key
// already completed for the same fingerprint, the stored response is returned
// and the caller must not run the request again.
func (s *RedisStore) Claim(ctx context.Context, scope, key, fingerprint string) ([]byte, error) {
	k := cacheKey(scope, key)
	pending, err := json.Marshal(entry{State: statePending, Fingerprint: fingerprint})
	if err != nil {
		return nil, err
	}
	ok, err := s.client.SetNX(ctx, k, pending, s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if ok {
		return nil, nil
	}

	data, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// Released or expired between SETNX and GET.
		return nil, ErrInFlight
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	if e.Fingerprint != fingerprint {
		return nil, ErrKeyReused
	}
	if e.State != stateComplete {
		return nil, ErrInFlight
	}
	return e.Response, nil
}

// Complete stores the response for key.
func (s *RedisStore) Complete(ctx context.Context, scope, key, fingerprint string, response []byte) error {
	data, err := json.Marshal(entry{State: stateComplete, Fingerprint: fingerprint, Response: response})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, cacheKey(scope, key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Release drops a claim so the client may retry after a failure.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	if err := s.client.Del(ctx, cacheKey(scope, key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}
