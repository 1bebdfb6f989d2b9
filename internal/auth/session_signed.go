package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionSubject = "trusted"

type sessionClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// SignedSessions issues HS256 JWT cookies. The claims hold a fingerprint of
// the token, never the token.
type SignedSessions struct {
	secret []byte
	ttl    time.Duration
	fp     *fingerprints
	now    func() time.Time
}

// NewSignedSessions builds a stateless store signing with secret.
func NewSignedSessions(secret []byte, ttl time.Duration, allow AllowList) (*SignedSessions, error) {
	fp, err := newFingerprints(secret, allow)
	if err != nil {
		return nil, err
	}
	return &SignedSessions{secret: secret, ttl: ttlOrDefault(ttl), fp: fp, now: time.Now}, nil
}

func (s *SignedSessions) Issue(_ context.Context, token string) (Session, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := sessionClaims{
		Fingerprint: s.fp.sum(token),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionSubject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session: %w", err)
	}
	return Session{Value: signed, ExpiresAt: exp}, nil
}

func (s *SignedSessions) Resolve(_ context.Context, value string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(sessionSubject),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return s.fp.lookup(claims.Fingerprint)
}

// Revoke is a no-op; logout clears the cookie and expiry bounds the rest.
func (s *SignedSessions) Revoke(context.Context, string) error { return nil }

func (s *SignedSessions) Name() string { return "signed" }
