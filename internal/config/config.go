package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Data backends.
const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSheets   = "sheets"
	BackendMemory   = "memory"
)

// Session stores.
const (
	SessionSigned = "signed"
	SessionRedis  = "redis"
	SessionToken  = "token"
)

// numbered allow-list variables: AUTH_TOKEN_1, AUTH_TOKEN_2, ...
const authTokenPrefix = "AUTH_TOKEN_"

type Config struct {
	// HTTP Server
	Port           string   `env:"PORT" env-default:"8000"`
	Environment    string   `env:"ENVIRONMENT" env-default:"development"`
	CORSOrigins    []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3001,http://localhost:5173"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" env-separator:","`
	FrontendDist   string   `env:"FRONTEND_DIST" env-default:"./frontend/dist"`
	MetricsEnabled bool     `env:"METRICS_ENABLED" env-default:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`

	// Data
	DataBackend     string        `env:"DATA_BACKEND"`
	DataPath        string        `env:"DATA_PATH" env-default:"./data"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	SQLiteDBPath    string        `env:"SQLITE_DB_PATH" env-default:"./data/findash.db"`
	DatasetCacheTTL time.Duration `env:"DATASET_CACHE_TTL" env-default:"1m"`

	// Access
	TrustedTokens []string      `env:"TRUSTED_TOKENS" env-separator:","`
	AuthTokens    []string      // collected from AUTH_TOKEN_<n>
	SessionStore  string        `env:"SESSION_STORE" env-default:"signed"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"30m"`

	// Redis sessions
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// Rate limits, requests per minute per client address
	LoginRatePerMinute    int `env:"LOGIN_RATE_PER_MINUTE" env-default:"5"`
	InsightsRatePerMinute int `env:"INSIGHTS_RATE_PER_MINUTE" env-default:"10"`
	APIRatePerMinute      int `env:"API_RATE_PER_MINUTE" env-default:"120"`

	// Insights
	AnthropicAPIKey   string        `env:"ANTHROPIC_API_KEY"`
	InsightsModel     string        `env:"INSIGHTS_MODEL" env-default:"claude-3-5-sonnet-20241022"`
	InsightsBaseURL   string        `env:"INSIGHTS_BASE_URL" env-default:"https://api.anthropic.com"`
	InsightsMaxTokens int           `env:"INSIGHTS_MAX_TOKENS" env-default:"1024"`
	InsightsTimeout   time.Duration `env:"INSIGHTS_TIMEOUT" env-default:"60s"`
	InsightsRetries   int           `env:"INSIGHTS_MAX_RETRIES" env-default:"2"`

	// AMQP
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" env-default:"findash.events"`

	// Google Sheets
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetRange         string `env:"GOOGLE_SHEET_RANGE" env-default:"Transactions!A:J"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// S3 (DATA_PATH=s3://bucket/key)
	AWSRegion   string `env:"AWS_REGION" env-default:"eu-central-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.AuthTokens = numberedTokens(os.Environ())
	cfg.DataBackend = resolveBackend(cfg.DataBackend, cfg.DatabaseURL)
	return cfg, nil
}

// resolveBackend picks postgres when a DSN is configured and CSV otherwise.
func resolveBackend(backend, databaseURL string) string {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if backend != "" {
		return backend
	}
	if databaseURL != "" {
		return BackendPostgres
	}
	return BackendCSV
}

// numberedTokens collects AUTH_TOKEN_<n> values ordered by n.
func numberedTokens(environ []string) []string {
	type entry struct {
		n     int
		value string
	}
	var found []entry
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, authTokenPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(key, authTokenPrefix))
		if err != nil || n < 1 || strings.TrimSpace(value) == "" {
			continue
		}
		found = append(found, entry{n: n, value: strings.TrimSpace(value)})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	out := make([]string, 0, len(found))
	for _, e := range found {
		out = append(out, e.value)
	}
	return out
}

// AllowListTokens merges TRUSTED_TOKENS and AUTH_TOKEN_<n>.
func (c *Config) AllowListTokens() []string {
	out := make([]string, 0, len(c.TrustedTokens)+len(c.AuthTokens))
	out = append(out, c.TrustedTokens...)
	out = append(out, c.AuthTokens...)
	return out
}

// IsProduction reports whether cookies must be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{BackendCSV, BackendSQLite, BackendPostgres, BackendSheets, BackendMemory}
	if !contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendCSV:
		if c.DataPath == "" {
			errors = append(errors, "DATA_PATH cannot be empty when using csv backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	validStores := []string{SessionSigned, SessionRedis, SessionToken}
	if !contains(validStores, c.SessionStore) {
		errors = append(errors, fmt.Sprintf("invalid session store '%s': must be one of %v", c.SessionStore, validStores))
	}
	if c.SessionStore == SessionRedis && c.RedisAddr == "" {
		errors = append(errors, "REDIS_ADDR is required when using the redis session store")
	}
	if c.SessionTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be positive", c.SessionTTL))
	}

	if c.LoginRatePerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid login rate %d: must be at least 1", c.LoginRatePerMinute))
	}
	if c.InsightsRatePerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid insights rate %d: must be at least 1", c.InsightsRatePerMinute))
	}
	if c.APIRatePerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid API rate %d: must be at least 1", c.APIRatePerMinute))
	}
	if c.InsightsMaxTokens < 1 {
		errors = append(errors, fmt.Sprintf("invalid insights max tokens %d: must be at least 1", c.InsightsMaxTokens))
	}
	if c.InsightsRetries < 0 {
		errors = append(errors, fmt.Sprintf("invalid insights retries %d: cannot be negative", c.InsightsRetries))
	}
	if c.DatasetCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid dataset cache TTL %v: cannot be negative", c.DatasetCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
