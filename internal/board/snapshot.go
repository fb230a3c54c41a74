package board

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joslsmit/ratm-app/internal/models"
	"github.com/joslsmit/ratm-app/internal/players"
)

// Rounds is the fixed number of rounds on a draft board
const Rounds = 15

// Snapshot is an immutable copy of the board: one slot per round, in round order
type Snapshot [Rounds]models.RoundSlot

// EmptySnapshot returns a board with every round unfilled
func EmptySnapshot() Snapshot {
	var s Snapshot
	for i := range s {
		s[i].Round = i + 1
	}
	return s
}

// ValidRound returns ErrInvalidRound unless 1 <= round <= Rounds
func ValidRound(round int) error {
	if round < 1 || round > Rounds {
		return fmt.Errorf("%w: %d", ErrInvalidRound, round)
	}
	return nil
}

// Get returns the player name for round, or "" when unfilled or out of range
func (s Snapshot) Get(round int) string {
	if ValidRound(round) != nil {
		return ""
	}
	return s[round-1].PlayerName
}

// Filled returns the number of rounds holding a player
func (s Snapshot) Filled() int {
	n := 0
	for _, slot := range s {
		if slot.PlayerName != "" {
			n++
		}
	}
	return n
}

// Slots returns the rounds as a slice
func (s Snapshot) Slots() []models.RoundSlot {
	out := make([]models.RoundSlot, Rounds)
	copy(out, s[:])
	return out
}

// Picks returns the filled rounds keyed "Round N", the shape the analyst expects
func (s Snapshot) Picks() map[string]string {
	picks := make(map[string]string)
	for _, slot := range s {
		if slot.PlayerName != "" {
			picks[fmt.Sprintf("Round %d", slot.Round)] = slot.PlayerName
		}
	}
	return picks
}

// Duplicates lists player names drafted in more than one round. Names are
// compared by lookup key; the first spelling seen is reported.
func (s Snapshot) Duplicates() []string {
	seen := make(map[string]string)
	counts := make(map[string]int)
	for _, slot := range s {
		if slot.PlayerName == "" {
			continue
		}
		key := players.Normalize(slot.PlayerName)
		if key == "" {
			key = strings.ToLower(slot.PlayerName)
		}
		if _, ok := seen[key]; !ok {
			seen[key] = slot.PlayerName
		}
		counts[key]++
	}

	dups := []string{}
	for key, n := range counts {
		if n > 1 {
			dups = append(dups, seen[key])
		}
	}
	sort.Strings(dups)
	return dups
}
