package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
)

// DefaultTable holds one row per player with all three consensus ranking sets
const DefaultTable = "player_reference"

// Client loads player reference data from ClickHouse
type Client struct {
	conn  driver.Conn
	table string
}

// NewClient creates a new ClickHouse client
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	logger.Info("Connected to ClickHouse", "addr", addr, "database", database)
	return &Client{conn: conn, table: DefaultTable}, nil
}

// playerRow is one row of the reference table
type playerRow struct {
	Name        string   `ch:"name"`
	DisplayName string   `ch:"display_name"`
	Position    string   `ch:"position"`
	Team        string   `ch:"team"`
	ByeWeek     *int32   `ch:"bye_week"`
	YearsExp    *int32   `ch:"years_exp"`
	IsRookie    bool     `ch:"is_rookie"`
	EcrOverall  *float64 `ch:"ecr_overall"`
	SdOverall   *float64 `ch:"sd_overall"`
	BestOverall *int32   `ch:"best_overall"`
	WorstOvr    *int32   `ch:"worst_overall"`
	DeltaOvr    *float64 `ch:"rank_delta_overall"`
	EcrPos      *float64 `ch:"ecr_positional"`
	SdPos       *float64 `ch:"sd_positional"`
	BestPos     *int32   `ch:"best_positional"`
	WorstPos    *int32   `ch:"worst_positional"`
	DeltaPos    *float64 `ch:"rank_delta_positional"`
	EcrRookie   *float64 `ch:"ecr_rookie"`
	SdRookie    *float64 `ch:"sd_rookie"`
	BestRookie  *int32   `ch:"best_rookie"`
	WorstRookie *int32   `ch:"worst_rookie"`
	DeltaRookie *float64 `ch:"rank_delta_rookie"`
}

// LoadPlayers reads the latest snapshot of every player. Rows are
// deduplicated by name, keeping the most recently updated one.
func (c *Client) LoadPlayers(ctx context.Context) ([]models.PlayerRecord, error) {
	query := fmt.Sprintf(`
		SELECT
			name, display_name, position, team, bye_week, years_exp, is_rookie,
			ecr_overall, sd_overall, best_overall, worst_overall, rank_delta_overall,
			ecr_positional, sd_positional, best_positional, worst_positional, rank_delta_positional,
			ecr_rookie, sd_rookie, best_rookie, worst_rookie, rank_delta_rookie
		FROM %s FINAL
		WHERE name != ''
		ORDER BY ecr_overall ASC NULLS LAST, name ASC
	`, c.table)

	var rows []playerRow
	if err := c.conn.Select(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query player reference: %w", err)
	}

	records := make([]models.PlayerRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

func (r playerRow) record() models.PlayerRecord {
	return models.PlayerRecord{
		Name:        strings.TrimSpace(r.Name),
		DisplayName: strings.TrimSpace(r.DisplayName),
		Position:    models.ParsePosition(r.Position),
		Team:        r.Team,
		ByeWeek:     toInt(r.ByeWeek),
		YearsExp:    toInt(r.YearsExp),
		IsRookie:    r.IsRookie,
		Overall:     ranking(r.EcrOverall, r.SdOverall, r.BestOverall, r.WorstOvr, r.DeltaOvr),
		Positional:  ranking(r.EcrPos, r.SdPos, r.BestPos, r.WorstPos, r.DeltaPos),
		Rookie:      ranking(r.EcrRookie, r.SdRookie, r.BestRookie, r.WorstRookie, r.DeltaRookie),
	}
}

func ranking(ecr, sd *float64, best, worst *int32, delta *float64) models.Ranking {
	return models.Ranking{ECR: ecr, SD: sd, Best: toInt(best), Worst: toInt(worst), RankDelta: delta}
}

func toInt(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("clickhouse client not connected")
	}
	return c.conn.Ping(ctx)
}
