package mocks

import (
	"context"
	"math/rand"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
)

// MockClickHouseClient serves a fixed player reference table for local development
type MockClickHouseClient struct {
	players []mockPlayer
}

type mockPlayer struct {
	name     string
	pos      string
	team     string
	bye      int
	exp      int
	ecr      float64
	sd       float64
	posRank  float64
	rookieRk float64
}

// NewMockClickHouseClient creates a mock reference source
func NewMockClickHouseClient() *MockClickHouseClient {
	logger.Info("Using MOCK ClickHouse player reference for local development")

	return &MockClickHouseClient{
		players: []mockPlayer{
			{"Christian McCaffrey", "RB", "SF", 9, 7, 1.4, 0.9, 1, 0},
			{"CeeDee Lamb", "WR", "DAL", 7, 4, 2.1, 1.1, 1, 0},
			{"Tyreek Hill", "WR", "MIA", 6, 8, 3.2, 1.5, 2, 0},
			{"Justin Jefferson", "WR", "MIN", 6, 4, 4.0, 1.6, 3, 0},
			{"Ja'Marr Chase", "WR", "CIN", 12, 3, 5.3, 2.2, 4, 0},
			{"Breece Hall", "RB", "NYJ", 12, 2, 6.1, 2.4, 2, 0},
			{"Bijan Robinson", "RB", "ATL", 12, 1, 6.8, 2.6, 3, 0},
			{"Amon-Ra St. Brown", "WR", "DET", 5, 3, 7.5, 2.0, 5, 0},
			{"Saquon Barkley", "RB", "PHI", 5, 6, 11.2, 3.1, 5, 0},
			{"Jonathan Taylor", "RB", "IND", 14, 4, 12.9, 3.4, 6, 0},
			{"Travis Kelce", "TE", "KC", 6, 11, 18.4, 4.2, 2, 0},
			{"Sam LaPorta", "TE", "DET", 5, 1, 22.7, 4.8, 1, 0},
			{"Josh Allen", "QB", "BUF", 12, 6, 24.3, 5.6, 1, 0},
			{"Jalen Hurts", "QB", "PHI", 5, 4, 27.5, 6.1, 2, 0},
			{"Lamar Jackson", "QB", "BAL", 14, 6, 30.2, 6.6, 3, 0},
			{"Marvin Harrison Jr.", "WR", "ARI", 11, 0, 20.1, 4.4, 12, 1},
			{"Malik Nabers", "WR", "NYG", 11, 0, 33.6, 5.9, 17, 2},
			{"Brock Bowers", "TE", "LV", 10, 0, 70.4, 9.8, 7, 3},
			{"Jayden Daniels", "QB", "WAS", 14, 0, 98.2, 12.5, 11, 4},
			{"Justin Tucker", "K", "BAL", 14, 12, 160.5, 14.1, 1, 0},
			{"Harrison Butker", "K", "KC", 6, 7, 165.3, 13.2, 2, 0},
			{"San Francisco 49ers", "DST", "SF", 9, 0, 120.7, 11.3, 1, 0},
			{"Dallas Cowboys", "DST", "DAL", 7, 0, 124.9, 12.0, 2, 0},
		},
	}
}

// LoadPlayers returns the mock reference table. Rank deltas jitter between
// calls so periodic refreshes are visible in development.
func (m *MockClickHouseClient) LoadPlayers(ctx context.Context) ([]models.PlayerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]models.PlayerRecord, 0, len(m.players))
	for _, p := range m.players {
		bye, exp := p.bye, p.exp
		ecr, sd := p.ecr, p.sd
		best := int(ecr - sd)
		if best < 1 {
			best = 1
		}
		worst := int(ecr+3*sd) + 1
		delta := float64(rand.Intn(7) - 3)
		posRank := p.posRank

		r := models.PlayerRecord{
			Name:        p.name,
			DisplayName: p.name,
			Position:    models.ParsePosition(p.pos),
			Team:        p.team,
			ByeWeek:     &bye,
			YearsExp:    &exp,
			IsRookie:    p.exp == 0,
			Overall:     models.Ranking{ECR: &ecr, SD: &sd, Best: &best, Worst: &worst, RankDelta: &delta},
			Positional:  models.Ranking{ECR: &posRank},
		}
		if p.rookieRk > 0 {
			rk := p.rookieRk
			r.Rookie = models.Ranking{ECR: &rk}
		}
		records = append(records, r)
	}

	logger.Debug("Mock ClickHouse: loaded player reference", "players", len(records))
	return records, nil
}

// Close is a no-op for mock client
func (m *MockClickHouseClient) Close() error {
	return nil
}
