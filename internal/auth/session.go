package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultSessionTTL is the lifetime of a session cookie.
const DefaultSessionTTL = 30 * time.Minute

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrMissingSecret    = errors.New("session secret is required")
	ErrInvalidSessionID = errors.New("invalid session")
)

// Session is what Login hands back to the client as a cookie.
type Session struct {
	Value     string
	ExpiresAt time.Time
}

// SessionStore maps cookie values back to the token they were issued for.
// Resolve returns ErrSessionNotFound for unknown, expired or revoked values.
type SessionStore interface {
	Issue(ctx context.Context, token string) (Session, error)
	Resolve(ctx context.Context, value string) (string, error)
	Revoke(ctx context.Context, value string) error
	Name() string
}

// TokenSessions stores the token itself in the cookie. Nothing is kept
// server side; the cookie max age bounds the session.
type TokenSessions struct {
	TTL time.Duration
	Now func() time.Time
}

func (s TokenSessions) Issue(_ context.Context, token string) (Session, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Session{Value: token, ExpiresAt: now().Add(ttlOrDefault(s.TTL))}, nil
}

func (TokenSessions) Resolve(_ context.Context, value string) (string, error) {
	if value == "" {
		return "", ErrSessionNotFound
	}
	return value, nil
}

func (TokenSessions) Revoke(context.Context, string) error { return nil }

func (TokenSessions) Name() string { return "token" }

// fingerprints maps keyed hashes of the allow-list back to tokens, so a
// session never has to carry the token. Tokens removed from the allow-list
// stop resolving on the next restart.
type fingerprints struct {
	key   [blake2b.Size256]byte
	index map[string]string
}

func newFingerprints(secret []byte, allow AllowList) (*fingerprints, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	f := &fingerprints{
		key:   blake2b.Sum256(secret),
		index: make(map[string]string, allow.Len()),
	}
	for _, t := range allow.Tokens() {
		f.index[f.sum(t)] = t
	}
	return f, nil
}

func (f *fingerprints) sum(token string) string {
	h, err := blake2b.New256(f.key[:])
	if err != nil {
		// a 32 byte key is always accepted
		panic(fmt.Sprintf("blake2b: %v", err))
	}
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

func (f *fingerprints) lookup(fp string) (string, error) {
	token, ok := f.index[fp]
	if !ok {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultSessionTTL
	}
	return ttl
}
