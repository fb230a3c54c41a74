package mocks

import (
	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
)

// MockPostgresKV provides a mock Postgres key-value store using SQLite for local development
type MockPostgresKV struct {
	*kv.SQLiteStore
}

// NewMockPostgresKV creates a mock Postgres store using SQLite
func NewMockPostgresKV(sqliteFile string) (*MockPostgresKV, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development")

	store, err := kv.NewSQLiteStore(sqliteFile)
	if err != nil {
		return nil, err
	}

	return &MockPostgresKV{SQLiteStore: store}, nil
}
