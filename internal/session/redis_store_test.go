package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worklog-bot/internal/flow"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Minute), mr
}

func TestRedisStoreDefaultsToIdle(t *testing.T) {
	s, _ := newTestRedisStore(t)

	sess, err := s.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State)
	assert.NotNil(t, sess.Fields)
	assert.Empty(t, sess.Fields)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	in := flow.Session{
		State:  flow.StateAwaitingHours,
		Fields: map[string]string{flow.FieldWork: "work_field", flow.FieldShift: "shift_1"},
	}
	require.NoError(t, s.Set(ctx, "79991234567", in))

	out, err := s.Get(ctx, "79991234567")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestRedisStoreClear(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "u1", flow.Session{
		State:  flow.StateAwaitingShift,
		Fields: map[string]string{flow.FieldWork: "work_field"},
	}))
	require.NoError(t, s.Clear(ctx, "u1"))

	sess, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State)
	assert.Empty(t, sess.Fields)
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "u1", flow.Session{
		State:  flow.StateAwaitingShift,
		Fields: map[string]string{flow.FieldWork: "work_field"},
	}))

	mr.FastForward(2 * time.Minute)

	sess, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, flow.StateIdle, sess.State, "an expired key reads as fresh")
}

func TestRedisStoreCorruptValue(t *testing.T) {
	s, mr := newTestRedisStore(t)

	require.NoError(t, mr.Set("session:u1", "{not json"))

	_, err := s.Get(context.Background(), "u1")
	assert.ErrorContains(t, err, "session")
}
