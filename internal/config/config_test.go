package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "PORT", "KV_DRIVER", "PLAYER_SOURCE", "PLAYERS_REFRESH", "CORS_ORIGINS", "ANALYSIS_API_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
	if cfg.Port != "3000" {
		t.Errorf("expected port 3000, got %s", cfg.Port)
	}
	if cfg.KVDriver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.KVDriver)
	}
	if cfg.PlayersRefresh != 0 {
		t.Errorf("expected refresh disabled, got %v", cfg.PlayersRefresh)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
	if cfg.AnalysisAPIURL != "http://localhost:5001/api" {
		t.Errorf("unexpected analysis URL: %s", cfg.AnalysisAPIURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KV_DRIVER", "SQLite")
	t.Setenv("PLAYERS_REFRESH", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("ANALYSIS_API_URL", "https://analyst.test/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.KVDriver != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.KVDriver)
	}
	if cfg.PlayersRefresh != 5*time.Minute {
		t.Errorf("expected 5m, got %v", cfg.PlayersRefresh)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.AnalysisAPIURL != "https://analyst.test/api" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.AnalysisAPIURL)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"KV_DRIVER": "redis"}},
		{"postgres without url", map[string]string{
			"ENVIRONMENT":        "production",
			"KV_DRIVER":          "postgres",
			"DATABASE_URL":       "",
			"AUTH_BASE_URL":      "https://auth.test",
			"AUTH_CLIENT_ID":     "id",
			"AUTH_CLIENT_SECRET": "secret",
		}},
		{"bad refresh", map[string]string{"PLAYERS_REFRESH": "soon"}},
		{"unknown source", map[string]string{"PLAYER_SOURCE": "csv"}},
		{"production without auth", map[string]string{"ENVIRONMENT": "production", "AUTH_BASE_URL": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadDevelopmentPostgresWithoutURL(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("KV_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DatabaseURL != "" || !cfg.IsDevelopment() {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
