package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCredential(t *testing.T) {
	ctx := context.Background()
	store := TokenSessions{}

	t.Run("none", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
		c := ExtractCredential(ctx, r, store)
		assert.False(t, c.Present())
		assert.Equal(t, ChannelNone, c.Channel)
	})

	t.Run("bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer  tok-1 ")
		assert.Equal(t, Credential{Value: "tok-1", Channel: ChannelHeader}, ExtractCredential(ctx, r, store))
	})

	t.Run("non bearer scheme ignored", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		assert.False(t, ExtractCredential(ctx, r, store).Present())
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
		r.Header.Set("Authorization", "Bearer from-header")
		assert.Equal(t, Credential{Value: "from-cookie", Channel: ChannelCookie}, ExtractCredential(ctx, r, store))
	})

	t.Run("unresolvable cookie does not fall back", func(t *testing.T) {
		signed, err := NewSignedSessions([]byte("secret"), 0, NewAllowList("tok"))
		assert.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		r.Header.Set("Authorization", "Bearer tok")

		c := ExtractCredential(ctx, r, signed)
		assert.Equal(t, ChannelCookie, c.Channel)
		assert.False(t, EvaluateTrust(c, NewAllowList("tok")))
	})
}
