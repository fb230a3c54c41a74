package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the draft kit service
type Config struct {
	Environment string
	Port        string
	GRPCPort    string
	CORSOrigins []string

	KVDriver     string // memory, sqlite, postgres, nats
	SQLiteFile   string
	DatabaseURL  string
	NATSURL      string
	NATSSubject  string
	NATSKVBucket string

	PlayerSource   string // http, clickhouse, mock
	AnalysisAPIURL string
	PlayersRefresh time.Duration

	ClickHouse ClickHouseConfig
	Auth       AuthConfig
}

// ClickHouseConfig holds ClickHouse connection settings
type ClickHouseConfig struct {
	Addr     string
	Database string
	User     string
	Password string
}

// AuthConfig holds OAuth2/OIDC settings for production auth
type AuthConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// IsDevelopment reports whether dev-only stand-ins (mock auth, embedded NATS) should be used
func (c *Config) IsDevelopment() bool {
	return c.Environment == "" || c.Environment == "development"
}

// Load reads .env (if present) and the process environment into a Config
func Load() (*Config, error) {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "3000"),
		GRPCPort:       getEnv("GRPC_PORT", "50051"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		KVDriver:       strings.ToLower(getEnv("KV_DRIVER", "memory")),
		SQLiteFile:     getEnv("SQLITE_FILE", "dev.sqlite"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject:    getEnv("NATS_SUBJECT", "draftkit.events"),
		NATSKVBucket:   getEnv("NATS_KV_BUCKET", "DRAFTKIT"),
		PlayerSource:   strings.ToLower(getEnv("PLAYER_SOURCE", "http")),
		AnalysisAPIURL: strings.TrimRight(getEnv("ANALYSIS_API_URL", "http://localhost:5001/api"), "/"),
		ClickHouse: ClickHouseConfig{
			Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
			Database: getEnv("CLICKHOUSE_DB", "default"),
			User:     getEnv("CLICKHOUSE_USER", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		},
		Auth: AuthConfig{
			BaseURL:      os.Getenv("AUTH_BASE_URL"),
			ClientID:     os.Getenv("AUTH_CLIENT_ID"),
			ClientSecret: os.Getenv("AUTH_CLIENT_SECRET"),
			RedirectURL:  getEnv("AUTH_REDIRECT_URL", "http://localhost:3000/auth/callback"),
		},
	}

	refresh := getEnv("PLAYERS_REFRESH", "0")
	d, err := time.ParseDuration(refresh)
	if err != nil {
		return nil, fmt.Errorf("invalid PLAYERS_REFRESH %q: %w", refresh, err)
	}
	cfg.PlayersRefresh = d

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.KVDriver {
	case "memory", "sqlite", "nats":
	case "postgres":
		// Development falls back to a SQLite-backed stand-in
		if c.DatabaseURL == "" && !c.IsDevelopment() {
			return fmt.Errorf("DATABASE_URL environment variable is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown KV_DRIVER: %s (valid: memory, sqlite, postgres, nats)", c.KVDriver)
	}

	switch c.PlayerSource {
	case "http", "clickhouse", "mock":
	default:
		return fmt.Errorf("unknown PLAYER_SOURCE: %s (valid: http, clickhouse, mock)", c.PlayerSource)
	}

	if !c.IsDevelopment() && (c.Auth.BaseURL == "" || c.Auth.ClientID == "" || c.Auth.ClientSecret == "") {
		return fmt.Errorf("AUTH_BASE_URL, AUTH_CLIENT_ID, and AUTH_CLIENT_SECRET are required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
