package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "idem:restock:"

// IdempotencyStore remembers client-supplied submission keys so that a retried
// request does not create a second restock batch.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Reserve claims key for owner. It returns false when owner already used the
// key for a submission still within the TTL. Keys are scoped per owner.
func (s *IdempotencyStore) Reserve(ctx context.Context, owner, key string) (bool, error) {
	return s.rdb.SetNX(ctx, idempotencyKey(owner, key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
}

// Release frees key so a failed submission can be retried with it.
func (s *IdempotencyStore) Release(ctx context.Context, owner, key string) error {
	return s.rdb.Del(ctx, idempotencyKey(owner, key)).Err()
}

func idempotencyKey(owner, key string) string {
	return idempotencyPrefix + owner + ":" + key
}
