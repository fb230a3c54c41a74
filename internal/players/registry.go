package players

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
)

// Source loads the full set of player reference records
type Source interface {
	LoadPlayers(ctx context.Context) ([]models.PlayerRecord, error)
}

// Registry holds the current reference table. Each loaded table is immutable;
// a reload swaps in a new one atomically.
type Registry struct {
	source Source
	table  atomic.Pointer[Table]
}

// NewRegistry creates a registry with an empty table
func NewRegistry(source Source) *Registry {
	r := &Registry{source: source}
	r.table.Store(NewTable(nil))
	return r
}

// Table returns the current table. Never nil.
func (r *Registry) Table() *Table {
	return r.table.Load()
}

// Lookup resolves a name against the current table
func (r *Registry) Lookup(name string) (models.PlayerRecord, bool) {
	return r.Table().Lookup(name)
}

// Reload fetches players from the source and replaces the table.
// On failure the previous table stays in place.
func (r *Registry) Reload(ctx context.Context) error {
	records, err := r.source.LoadPlayers(ctx)
	if err != nil {
		return err
	}
	t := NewTable(records)
	r.table.Store(t)
	logger.Info("Player reference table loaded", "players", t.Len())
	return nil
}

// RefreshEvery reloads the table on an interval until ctx is done
func (r *Registry) RefreshEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil {
				logger.Error("Failed to refresh player reference table", "error", err)
			}
		}
	}
}

// Suggest offers autocomplete labels from the current table
func (r *Registry) Suggest(query string, limit int) []string {
	return r.Table().Suggest(query, limit)
}
