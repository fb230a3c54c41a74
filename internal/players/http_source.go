package players

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/joslsmit/ratm-app/internal/models"
)

// HTTPSource fetches the player list from the analytics backend
type HTTPSource struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
}

// NewHTTPSource creates a source for baseURL (e.g. http://localhost:5001/api)
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		HTTP:      &http.Client{Timeout: 20 * time.Second},
		BaseURL:   baseURL,
		UserAgent: "ratm-draftkit/1.0",
	}
}

// wirePlayer mirrors the backend's all_player_names_with_data entries
type wirePlayer struct {
	Name                string   `json:"name"`
	DisplayName         string   `json:"display_name"`
	AutocompleteName    string   `json:"autocomplete_name"`
	Position            string   `json:"position"`
	Team                string   `json:"team"`
	ByeWeek             *float64 `json:"bye_week"`
	YearsExp            *float64 `json:"years_exp"`
	IsRookie            bool     `json:"is_rookie"`
	EcrOverall          *float64 `json:"ecr_overall"`
	SdOverall           *float64 `json:"sd_overall"`
	BestOverall         *float64 `json:"best_overall"`
	WorstOverall        *float64 `json:"worst_overall"`
	RankDeltaOverall    *float64 `json:"rank_delta_overall"`
	EcrPositional       *float64 `json:"ecr_positional"`
	SdPositional        *float64 `json:"sd_positional"`
	BestPositional      *float64 `json:"best_positional"`
	WorstPositional     *float64 `json:"worst_positional"`
	RankDeltaPositional *float64 `json:"rank_delta_positional"`
	EcrRookie           *float64 `json:"ecr_rookie"`
	SdRookie            *float64 `json:"sd_rookie"`
	BestRookie          *float64 `json:"best_rookie"`
	WorstRookie         *float64 `json:"worst_rookie"`
	RankDeltaRookie     *float64 `json:"rank_delta_rookie"`
}

func (w wirePlayer) record() models.PlayerRecord {
	display := w.DisplayName
	if display == "" {
		display = w.AutocompleteName
	}
	return models.PlayerRecord{
		Name:        w.Name,
		DisplayName: display,
		Position:    models.ParsePosition(w.Position),
		Team:        w.Team,
		ByeWeek:     toInt(w.ByeWeek),
		YearsExp:    toInt(w.YearsExp),
		IsRookie:    w.IsRookie,
		Overall:     ranking(w.EcrOverall, w.SdOverall, w.BestOverall, w.WorstOverall, w.RankDeltaOverall),
		Positional:  ranking(w.EcrPositional, w.SdPositional, w.BestPositional, w.WorstPositional, w.RankDeltaPositional),
		Rookie:      ranking(w.EcrRookie, w.SdRookie, w.BestRookie, w.WorstRookie, w.RankDeltaRookie),
	}
}

func ranking(ecr, sd, best, worst, delta *float64) models.Ranking {
	return models.Ranking{ECR: ecr, SD: sd, Best: toInt(best), Worst: toInt(worst), RankDelta: delta}
}

func toInt(f *float64) *int {
	if f == nil || math.IsNaN(*f) {
		return nil
	}
	v := int(*f)
	return &v
}

// LoadPlayers implements Source
func (s *HTTPSource) LoadPlayers(ctx context.Context) ([]models.PlayerRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/all_player_names_with_data", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET all_player_names_with_data failed: %d body=%s", resp.StatusCode, string(body))
	}

	var wire []wirePlayer
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}

	records := make([]models.PlayerRecord, 0, len(wire))
	for _, w := range wire {
		if w.Name == "" {
			continue
		}
		records = append(records, w.record())
	}
	return records, nil
}

// StaticSource serves a fixed list of players
type StaticSource []models.PlayerRecord

// LoadPlayers implements Source
func (s StaticSource) LoadPlayers(ctx context.Context) ([]models.PlayerRecord, error) {
	out := make([]models.PlayerRecord, len(s))
	copy(out, s)
	return out, nil
}
