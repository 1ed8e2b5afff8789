package cliparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultPort             = 3318
	DefaultDatabaseType     = "sqlite"
	DefaultRedisChannel     = "kindred.answers"
	DefaultLogMode          = "dev"
	DefaultSessionCacheSize = 1024
	DefaultStoreTimeout     = 5 * time.Second
	DefaultScoreWorkers     = 8
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string
	TokenSecret  string

	CatalogPath  string
	RedisAddr    string
	RedisChannel string
	LogMode      string

	SessionCacheSize int
	StoreTimeout     time.Duration
	ScoreWorkers     int

	TraceStdout  bool
	OTLPEndpoint string

	// CORSOrigins lists the browser origins allowed to call the API.
	// Empty allows any origin.
	CORSOrigins []string
}

// setting ties a viper key to its flag and environment variable
type setting struct {
	key string
	env string
}

var settings = []setting{
	{"port", "PORT"},
	{"database-url", "DATABASE_URL"},
	{"database-type", "DATABASE_TYPE"},
	{"admin-salt", "ADMIN_KEY_SALT"},
	{"token-secret", "TOKEN_SECRET"},
	{"catalog", "CATALOG_PATH"},
	{"redis-addr", "REDIS_ADDR"},
	{"redis-channel", "REDIS_CHANNEL"},
	{"log-mode", "LOG_MODE"},
	{"session-cache", "SESSION_CACHE_SIZE"},
	{"store-timeout", "STORE_TIMEOUT"},
	{"score-workers", "SCORE_WORKERS"},
	{"trace-stdout", "TRACE_STDOUT"},
	{"otlp-endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT"},
	{"cors-origins", "CORS_ORIGINS"},
}

// AddFlags registers the server flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	// Network config (can be CLI args or env)
	fs.IntP("port", "p", DefaultPort, "Server port")
	fs.StringP("database-url", "d", "", "Database URL")
	fs.StringP("database-type", "t", DefaultDatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.String("admin-salt", "", "Admin key salt (prefer env)")
	fs.String("token-secret", "", "User token signing secret (prefer env)")

	fs.String("catalog", "", "Question catalog YAML (default: built-in)")
	fs.String("redis-addr", "", "Redis address for answer events (empty disables)")
	fs.String("redis-channel", DefaultRedisChannel, "Redis channel for answer events")
	fs.String("log-mode", DefaultLogMode, "Log mode (dev or prod)")
	fs.Int("session-cache", DefaultSessionCacheSize, "Answer sessions kept in memory")
	fs.Duration("store-timeout", DefaultStoreTimeout, "Timeout for each store call")
	fs.Int("score-workers", DefaultScoreWorkers, "Concurrent workers for batch ranking")
	fs.Bool("trace-stdout", false, "Print trace spans to stdout")
	fs.String("otlp-endpoint", "", "OTLP/HTTP trace collector (host:port)")
	fs.String("cors-origins", "", "Comma-separated CORS origins (empty allows any)")
	fs.String("config", "", "Optional YAML config file")
}

// ParseFlags loads .env, parses args and resolves the configuration.
// Precedence is flag, then environment, then config file, then default.
func ParseFlags(args []string) (Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("kindred", pflag.ContinueOnError)
	AddFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return FromFlags(fs)
}

// FromFlags resolves the configuration from a flag set prepared by AddFlags.
func FromFlags(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for _, s := range settings {
		if err := v.BindEnv(s.key, s.env); err != nil {
			return Config{}, err
		}
		if f := fs.Lookup(s.key); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return Config{}, err
			}
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		Port:             v.GetInt("port"),
		DatabaseURL:      v.GetString("database-url"),
		DatabaseType:     strings.ToLower(v.GetString("database-type")),
		AdminKeySalt:     v.GetString("admin-salt"),
		TokenSecret:      v.GetString("token-secret"),
		CatalogPath:      v.GetString("catalog"),
		RedisAddr:        v.GetString("redis-addr"),
		RedisChannel:     v.GetString("redis-channel"),
		LogMode:          v.GetString("log-mode"),
		SessionCacheSize: v.GetInt("session-cache"),
		StoreTimeout:     v.GetDuration("store-timeout"),
		ScoreWorkers:     v.GetInt("score-workers"),
		TraceStdout:      v.GetBool("trace-stdout"),
		OTLPEndpoint:     v.GetString("otlp-endpoint"),
		CORSOrigins:      splitList(v.GetString("cors-origins")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first missing or out of range setting.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.AdminKeySalt == "" {
		return errors.New("ADMIN_KEY_SALT required")
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET required")
	}

	if c.SessionCacheSize <= 0 {
		return errors.New("session cache size must be positive")
	}
	if c.StoreTimeout <= 0 {
		return errors.New("store timeout must be positive")
	}
	if c.ScoreWorkers <= 0 {
		return errors.New("score workers must be positive")
	}
	for _, o := range c.CORSOrigins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("invalid CORS origin %q (must start with http:// or https://)", o)
		}
	}
	return nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
