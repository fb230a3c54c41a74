package board

import "github.com/joslsmit/ratm-app/internal/models"

// Resolver looks up reference data for a free-text player name
type Resolver interface {
	Lookup(name string) (models.PlayerRecord, bool)
}

// DeriveComposition counts the board's picks per position. Picks that cannot be
// resolved, or resolve to an unrecognized position, are skipped. A nil resolver
// counts nothing. The result always holds all six positions.
func DeriveComposition(snap Snapshot, table Resolver) models.RosterComposition {
	counts := models.NewRosterComposition()
	if table == nil {
		return counts
	}

	for _, slot := range snap {
		if slot.PlayerName == "" {
			continue
		}
		record, ok := table.Lookup(slot.PlayerName)
		if !ok || !record.Position.Valid() {
			continue
		}
		counts[record.Position]++
	}
	return counts
}
