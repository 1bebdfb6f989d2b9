package auth

import (
	"context"
	"net/http"
	"strings"
)

const (
	// CookieName carries the session credential.
	CookieName = "session_token"
	// BearerPrefix introduces a token in the Authorization header.
	BearerPrefix = "Bearer "
)

// Channel identifies where a credential came from.
type Channel string

const (
	ChannelNone   Channel = "none"
	ChannelCookie Channel = "cookie"
	ChannelHeader Channel = "header"
)

// Credential is what a request presented. The zero value is an absent
// credential.
type Credential struct {
	Value   string
	Channel Channel
}

// Present reports whether any credential arrived.
func (c Credential) Present() bool {
	return c.Channel == ChannelCookie || c.Channel == ChannelHeader
}

// ExtractCredential reads the request credential. A session cookie wins over
// the Authorization header even when the cookie no longer resolves; in that
// case the credential is present but empty and evaluates to guest.
func ExtractCredential(ctx context.Context, r *http.Request, sessions SessionStore) Credential {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		token, err := sessions.Resolve(ctx, c.Value)
		if err != nil {
			token = ""
		}
		return Credential{Value: token, Channel: ChannelCookie}
	}

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, BearerPrefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(h, BearerPrefix)); token != "" {
			return Credential{Value: token, Channel: ChannelHeader}
		}
	}
	return Credential{Channel: ChannelNone}
}
