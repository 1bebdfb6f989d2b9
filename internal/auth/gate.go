package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"findash/internal/log"
	"findash/internal/metrics"
)

// ErrInvalidCredential is returned by Login for tokens outside the allow-list.
var ErrInvalidCredential = errors.New("invalid credential")

const (
	ModeTrusted = "trusted"
	ModeGuest   = "guest"
)

// Decision is the per-request outcome of the gate.
type Decision struct {
	Trusted bool
	Channel Channel
}

// Mode returns "trusted" or "guest".
func (d Decision) Mode() string {
	if d.Trusted {
		return ModeTrusted
	}
	return ModeGuest
}

// Options configures a Gate.
type Options struct {
	Sessions     SessionStore
	SessionTTL   time.Duration
	SecureCookie bool
	Logger       *log.Logger
	Metrics      *metrics.Metrics
}

// Gate evaluates trust for requests and runs login/logout.
type Gate struct {
	allow    AllowList
	sessions SessionStore
	ttl      time.Duration
	secure   bool
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// NewGate builds a Gate. Without a session store the cookie carries the token.
func NewGate(allow AllowList, opts Options) *Gate {
	g := &Gate{
		allow:    allow,
		sessions: opts.Sessions,
		ttl:      ttlOrDefault(opts.SessionTTL),
		secure:   opts.SecureCookie,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
	if g.sessions == nil {
		g.sessions = TokenSessions{TTL: g.ttl}
	}
	if g.logger == nil {
		g.logger = log.Discard()
	}
	g.logger = g.logger.WithComponent(log.ComponentAuth)
	return g
}

// DemoMode reports that no token is configured and every request is a guest.
func (g *Gate) DemoMode() bool { return g.allow.Empty() }

// Evaluate classifies r. It never fails: any credential problem yields guest.
func (g *Gate) Evaluate(r *http.Request) Decision {
	ctx := r.Context()
	cred := ExtractCredential(ctx, r, g.sessions)
	d := Decision{Trusted: EvaluateTrust(cred, g.allow), Channel: cred.Channel}

	g.logger.InfoContext(ctx, "access evaluated",
		log.NewFields().WithTrust(string(cred.Channel), d.Trusted, cred.Value).WithOperation(log.OpEvaluate).ToSlice()...)
	g.metrics.ObserveTrust(string(cred.Channel), d.Trusted)
	return d
}

type decisionKey struct{}

// WithDecision stores d in ctx.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionKey{}, d)
}

// FromContext returns the decision stored by Middleware; guest when missing.
func FromContext(ctx context.Context) Decision {
	if d, ok := ctx.Value(decisionKey{}).(Decision); ok {
		return d
	}
	return Decision{Channel: ChannelNone}
}

// Middleware evaluates every request once and stores the decision.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithDecision(r.Context(), g.Evaluate(r))))
	})
}

// RequireTrusted rejects guests with onDenied.
func RequireTrusted(onDenied http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).Trusted {
				onDenied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Login checks token against the allow-list and issues a session.
func (g *Gate) Login(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if g.allow.Empty() {
		g.logger.WarnContext(ctx, "login attempted while no tokens are configured", log.FieldOperation, log.OpLogin)
	}
	if !g.allow.Contains(token) {
		g.metrics.ObserveLogin(false)
		g.logger.WarnContext(ctx, "login rejected",
			log.NewFields().WithTrust(string(ChannelNone), false, token).WithOperation(log.OpLogin).ToSlice()...)
		return Session{}, ErrInvalidCredential
	}

	s, err := g.sessions.Issue(ctx, token)
	if err != nil {
		return Session{}, err
	}
	g.metrics.ObserveLogin(true)
	g.logger.InfoContext(ctx, "login accepted", log.FieldOperation, log.OpLogin, "session_store", g.sessions.Name())
	return s, nil
}

// Logout revokes the session carried by r, if any. Revocation errors are
// logged; logout itself always succeeds.
func (g *Gate) Logout(ctx context.Context, r *http.Request) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return
	}
	if err := g.sessions.Revoke(ctx, c.Value); err != nil {
		g.logger.WarnContext(ctx, "session revoke failed", log.Err(err), log.FieldOperation, log.OpLogout)
	}
}

// SetSessionCookie writes s as the session cookie.
func (g *Gate) SetSessionCookie(w http.ResponseWriter, s Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.Value,
		Path:     "/",
		MaxAge:   int(g.ttl / time.Second),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on the client.
func (g *Gate) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
