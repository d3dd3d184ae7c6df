package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"worklog-bot/internal/flow"
)

// RedisStore keeps sessions in Redis as JSON values under a key
// prefix. Expiry is native: every Set refreshes the key TTL, Redis
// drops idle keys, and Get maps the miss to a fresh Idle session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. A ttl of zero
// stores keys without expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
		ttl:    ttl,
	}
}

func (r *RedisStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisStore) Get(ctx context.Context, userID string) (flow.Session, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return flow.NewSession(), nil // not stored
	}
	if err != nil {
		return flow.Session{}, fmt.Errorf("session: failed to load: %w", err)
	}

	var sess flow.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return flow.Session{}, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	if sess.Fields == nil {
		sess.Fields = map[string]string{}
	}
	return sess, nil
}

func (r *RedisStore) Set(ctx context.Context, userID string, sess flow.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	return r.client.Set(ctx, r.key(userID), data, r.ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
