package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
)

var (
	// ErrMissingAPIKey is returned before any request is made without a key
	ErrMissingAPIKey = errors.New("analysis API key is required")
	// ErrEmptyResponse is returned when the analyst answers with neither a result nor an error
	ErrEmptyResponse = errors.New("analysis response was empty")
	// ErrMissingPlayer is returned by EvaluatePick without a player to grade
	ErrMissingPlayer = errors.New("player to pick is required")
)

// APIError is an error body returned by the analysis backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analysis backend returned %d: %s", e.Status, e.Message)
}

// Client talks to the draft analysis backend
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	UserAgent string
}

// NewClient creates a client for the backend at baseURL (e.g. http://localhost:5001/api)
func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 60 * time.Second},
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "ratm-draftkit/1.0",
	}
}

// PositionRequest asks which positions to target in the current round
type PositionRequest struct {
	DraftBoard        map[string]string `json:"draft_board"`
	CurrentRound      int               `json:"current_round"`
	EcrTypePreference models.EcrType    `json:"ecr_type_preference"`
}

// PickRequest asks whether a player is a good pick in the current round
type PickRequest struct {
	DraftBoard        map[string]string `json:"draft_board"`
	PlayerToPick      string            `json:"player_to_pick"`
	CurrentRound      int               `json:"current_round"`
	EcrTypePreference models.EcrType    `json:"ecr_type_preference"`
}

// CompositionRequest asks for a short read on roster balance
type CompositionRequest struct {
	Composition models.RosterComposition `json:"composition"`
}

type response struct {
	Result   json.RawMessage `json:"result"`
	Analysis json.RawMessage `json:"analysis"`
	Error    string          `json:"error"`
}

// SuggestPosition returns the analyst's position advice. The result is
// usually a markdown string.
func (c *Client) SuggestPosition(ctx context.Context, apiKey string, req PositionRequest) (json.RawMessage, error) {
	return c.post(ctx, apiKey, "/suggest_position", req)
}

// EvaluatePick returns the analyst's verdict on a prospective pick
func (c *Client) EvaluatePick(ctx context.Context, apiKey string, req PickRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.PlayerToPick) == "" {
		return nil, ErrMissingPlayer
	}
	return c.post(ctx, apiKey, "/pick_evaluator", req)
}

// AnalyzeComposition returns the analyst's read on a roster composition
func (c *Client) AnalyzeComposition(ctx context.Context, apiKey string, req CompositionRequest) (json.RawMessage, error) {
	return c.post(ctx, apiKey, "/roster_composition_analysis", req)
}

func (c *Client) post(ctx context.Context, apiKey, path string, body any) (json.RawMessage, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analysis request %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}
	logger.Debug("Analysis request completed", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	var out response
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("failed to decode analysis response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || out.Error != "" {
		msg := out.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	switch {
	case present(out.Result):
		return out.Result, nil
	case present(out.Analysis):
		return out.Analysis, nil
	}
	return nil, ErrEmptyResponse
}

func present(m json.RawMessage) bool {
	s := strings.TrimSpace(string(m))
	return s != "" && s != "null" && s != `""`
}
