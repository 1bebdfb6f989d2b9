package main

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"findash/internal/amqp"
	"findash/internal/auth"
	"findash/internal/cache"
	"findash/internal/cli"
	"findash/internal/config"
	"findash/internal/dataset"
	apphttp "findash/internal/http"
	"findash/internal/insights"
	"findash/internal/log"
	"findash/internal/metrics"
	"findash/internal/middleware/security"
	"findash/internal/privacy"
	"findash/internal/services"
)

const (
	shutdownTimeout    = 30 * time.Second
	cacheSweepInterval = 5 * time.Minute
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.SetupLogger(nil, log.ComponentApp, os.Stderr).Error("Configuration validation failed", log.Err(err))
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.Err(err))
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext()
	defer stop()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	store, _, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close backend", log.Err(err))
		}
	}()

	allow := auth.NewAllowList(cfg.AllowListTokens()...)
	if allow.Empty() {
		logger.Warn("No access tokens configured: every request is served normalized data")
	}
	sessions, err := newSessionStore(ctx, cfg, allow, logger)
	if err != nil {
		return err
	}
	gate := auth.NewGate(allow, auth.Options{
		Sessions:     sessions,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.IsProduction(),
		Logger:       logger,
		Metrics:      m,
	})

	data := dataset.NewService(store.Reader, dataset.Options{
		TTL:     cfg.DatasetCacheTTL,
		Logger:  logger,
		Metrics: m,
	})
	caches := cache.NewManager(logger)
	caches.Register(data.Cache())

	var events *amqp.Client
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, uuid.NewString(), logger)
		if err != nil {
			return err
		}
		publisher = events
		logger.Info("AMQP dataset events enabled", "exchange", cfg.AMQPExchange, "origin", events.Origin())
	}
	admin := services.NewAdminService(store.Writer, data, publisher, logger)
	defer func() {
		if err := admin.Close(); err != nil {
			logger.Error("Failed to close admin service", log.Err(err))
		}
	}()

	model := insights.NewClient(insights.Config{
		APIKey:     cfg.AnthropicAPIKey,
		BaseURL:    cfg.InsightsBaseURL,
		Model:      cfg.InsightsModel,
		MaxTokens:  cfg.InsightsMaxTokens,
		Timeout:    cfg.InsightsTimeout,
		MaxRetries: cfg.InsightsRetries,
	})
	if !model.Configured() {
		logger.Warn("ANTHROPIC_API_KEY not set: AI insights are disabled")
	}

	detector, err := security.NewDetector(cfg.TrustedProxies, logger)
	if err != nil {
		return err
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:              ":" + cfg.Port,
		Gate:              gate,
		Data:              data,
		Admin:             admin,
		Insights:          insights.NewService(data, model, logger, m),
		Factors:           privacy.DailySource{},
		Detector:          detector,
		Metrics:           m,
		Logger:            logger,
		CORSOrigins:       cfg.CORSOrigins,
		FrontendDist:      cfg.FrontendDist,
		MetricsEnabled:    cfg.MetricsEnabled,
		LoginPerMinute:    cfg.LoginRatePerMinute,
		InsightsPerMinute: cfg.InsightsRatePerMinute,
		APIPerMinute:      cfg.APIRatePerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting findash server",
			"port", cfg.Port, log.FieldBackend, data.Source(), "session_store", sessions.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return caches.Run(gctx, cacheSweepInterval)
	})
	if events != nil {
		g.Go(func() error {
			err := events.ConsumeDatasetChanged(gctx, services.DatasetEventHandler(data, logger))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// newSessionStore builds the configured session store. Signed and redis
// stores need a secret; without one a random secret is drawn, so sessions do
// not survive a restart.
func newSessionStore(ctx context.Context, cfg *config.Config, allow auth.AllowList, logger *log.Logger) (auth.SessionStore, error) {
	if cfg.SessionStore == config.SessionToken {
		return auth.TokenSessions{TTL: cfg.SessionTTL}, nil
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		logger.Warn("SESSION_SECRET not set: using a random secret, sessions end on restart")
	}

	switch cfg.SessionStore {
	case config.SessionRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return auth.NewRedisSessions(ctx, client, secret, cfg.SessionTTL, allow)
	default:
		return auth.NewSignedSessions(secret, cfg.SessionTTL, allow)
	}
}
