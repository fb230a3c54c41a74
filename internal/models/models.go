package models

import "strings"

// Position is a fantasy roster position
type Position string

const (
	PositionQB      Position = "QB"
	PositionRB      Position = "RB"
	PositionWR      Position = "WR"
	PositionTE      Position = "TE"
	PositionK       Position = "K"
	PositionDST     Position = "DST"
	PositionUnknown Position = ""
)

// Positions lists the roster positions in display order
var Positions = []Position{PositionQB, PositionRB, PositionWR, PositionTE, PositionK, PositionDST}

// ParsePosition maps a raw position string to a Position. Unrecognized values return PositionUnknown.
func ParsePosition(s string) Position {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "QB":
		return PositionQB
	case "RB":
		return PositionRB
	case "WR":
		return PositionWR
	case "TE":
		return PositionTE
	case "K", "PK":
		return PositionK
	case "DST", "DEF", "D/ST", "DS":
		return PositionDST
	default:
		return PositionUnknown
	}
}

// Valid reports whether p is one of the six roster positions
func (p Position) Valid() bool {
	for _, pos := range Positions {
		if p == pos {
			return true
		}
	}
	return false
}

// EcrType selects which consensus ranking set is shown and sent to the analyst
type EcrType string

const (
	EcrOverall    EcrType = "overall"
	EcrPositional EcrType = "positional"
	EcrRookie     EcrType = "rookie"
)

// ParseEcrType returns the EcrType for s and whether it was recognized
func ParseEcrType(s string) (EcrType, bool) {
	switch EcrType(strings.ToLower(strings.TrimSpace(s))) {
	case EcrOverall:
		return EcrOverall, true
	case EcrPositional:
		return EcrPositional, true
	case EcrRookie:
		return EcrRookie, true
	}
	return EcrOverall, false
}

// Ranking holds one set of consensus ranking metrics. Nil fields are unknown.
type Ranking struct {
	ECR       *float64 `json:"ecr,omitempty"`
	SD        *float64 `json:"sd,omitempty"`
	Best      *int     `json:"best,omitempty"`
	Worst     *int     `json:"worst,omitempty"`
	RankDelta *float64 `json:"rankDelta,omitempty"`
}

// PlayerRecord is read-only reference data for a single player
type PlayerRecord struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName,omitempty"`
	Position    Position `json:"position"`
	Team        string   `json:"team,omitempty"`
	ByeWeek     *int     `json:"byeWeek,omitempty"`
	YearsExp    *int     `json:"yearsExp,omitempty"`
	IsRookie    bool     `json:"isRookie"`
	Overall     Ranking  `json:"overall"`
	Positional  Ranking  `json:"positional"`
	Rookie      Ranking  `json:"rookie"`
}

// Label returns the name shown to users and offered by autocomplete
func (p PlayerRecord) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// RankingFor returns the ranking set for the given ECR type
func (p PlayerRecord) RankingFor(t EcrType) Ranking {
	switch t {
	case EcrPositional:
		return p.Positional
	case EcrRookie:
		return p.Rookie
	default:
		return p.Overall
	}
}

// RoundSlot is one round of the draft board. An empty PlayerName means unfilled.
type RoundSlot struct {
	Round      int    `json:"round"`
	PlayerName string `json:"playerName"`
}

// RosterComposition counts drafted players per position. All six positions are always present.
type RosterComposition map[Position]int

// NewRosterComposition returns a composition with every position set to zero
func NewRosterComposition() RosterComposition {
	c := make(RosterComposition, len(Positions))
	for _, pos := range Positions {
		c[pos] = 0
	}
	return c
}

// Total returns the number of resolved picks
func (c RosterComposition) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Theme is the UI color theme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)
