package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "findash:session:"

// RedisSessions keeps sessions in redis under a random id, so logout
// revokes server side.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
	fp     *fingerprints
	now    func() time.Time
}

// NewRedisSessions pings redis and builds the store.
func NewRedisSessions(ctx context.Context, client *redis.Client, secret []byte, ttl time.Duration, allow AllowList) (*RedisSessions, error) {
	fp, err := newFingerprints(secret, allow)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisSessions{client: client, ttl: ttlOrDefault(ttl), fp: fp, now: time.Now}, nil
}

func (s *RedisSessions) Issue(ctx context.Context, token string) (Session, error) {
	id := uuid.NewString()
	if err := s.client.Set(ctx, redisKeyPrefix+id, s.fp.sum(token), s.ttl).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{Value: id, ExpiresAt: s.now().Add(s.ttl)}, nil
}

func (s *RedisSessions) Resolve(ctx context.Context, value string) (string, error) {
	if _, err := uuid.Parse(value); err != nil {
		return "", ErrInvalidSessionID
	}
	fp, err := s.client.Get(ctx, redisKeyPrefix+value).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return s.fp.lookup(fp)
}

func (s *RedisSessions) Revoke(ctx context.Context, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return nil
	}
	if err := s.client.Del(ctx, redisKeyPrefix+value).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisSessions) Name() string { return "redis" }
