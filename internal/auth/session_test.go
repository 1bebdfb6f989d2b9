package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedSessionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	allow := NewAllowList("tok-a", "tok-b")
	s, err := NewSignedSessions([]byte("k3y"), 30*time.Minute, allow)
	require.NoError(t, err)

	sess, err := s.Issue(ctx, "tok-b")
	require.NoError(t, err)
	assert.False(t, strings.Contains(sess.Value, "tok-b"), "cookie must not embed the token")

	got, err := s.Resolve(ctx, sess.Value)
	require.NoError(t, err)
	assert.Equal(t, "tok-b", got)
}

func TestSignedSessionsExpire(t *testing.T) {
	ctx := context.Background()
	s, err := NewSignedSessions([]byte("k3y"), time.Minute, NewAllowList("tok"))
	require.NoError(t, err)

	now := time.Now()
	s.now = func() time.Time { return now }
	sess, err := s.Issue(ctx, "tok")
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = s.Resolve(ctx, sess.Value)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestSignedSessionsRejectForeignKeyAndRemovedToken(t *testing.T) {
	ctx := context.Background()
	issuer, err := NewSignedSessions([]byte("one"), 0, NewAllowList("tok"))
	require.NoError(t, err)
	sess, err := issuer.Issue(ctx, "tok")
	require.NoError(t, err)

	other, err := NewSignedSessions([]byte("two"), 0, NewAllowList("tok"))
	require.NoError(t, err)
	_, err = other.Resolve(ctx, sess.Value)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// same key, token no longer configured
	rotated, err := NewSignedSessions([]byte("one"), 0, NewAllowList("new-tok"))
	require.NoError(t, err)
	_, err = rotated.Resolve(ctx, sess.Value)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSignedSessionsNeedSecret(t *testing.T) {
	_, err := NewSignedSessions(nil, 0, NewAllowList("tok"))
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func newRedisStore(t *testing.T, allow AllowList) (*RedisSessions, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewRedisSessions(context.Background(), client, []byte("secret"), 30*time.Minute, allow)
	require.NoError(t, err)
	return s, mr
}

func TestRedisSessions(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, NewAllowList("tok"))

	sess, err := s.Issue(ctx, "tok")
	require.NoError(t, err)

	got, err := s.Resolve(ctx, sess.Value)
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
	assert.Equal(t, 30*time.Minute, mr.TTL(redisKeyPrefix+sess.Value))

	require.NoError(t, s.Revoke(ctx, sess.Value))
	_, err = s.Resolve(ctx, sess.Value)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionsExpiry(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t, NewAllowList("tok"))

	sess, err := s.Issue(ctx, "tok")
	require.NoError(t, err)
	mr.FastForward(31 * time.Minute)

	_, err = s.Resolve(ctx, sess.Value)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionsRejectMalformedID(t *testing.T) {
	s, _ := newRedisStore(t, NewAllowList("tok"))
	_, err := s.Resolve(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

func TestTokenSessions(t *testing.T) {
	ctx := context.Background()
	s := TokenSessions{}
	sess, err := s.Issue(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Value)

	got, err := s.Resolve(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}
