package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joslsmit/ratm-app/internal/analysis"
	"github.com/joslsmit/ratm-app/internal/auth"
	"github.com/joslsmit/ratm-app/internal/board"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/pubsub"
	"github.com/joslsmit/ratm-app/internal/session"
	"github.com/joslsmit/ratm-app/internal/settings"
	"github.com/joslsmit/ratm-app/internal/targets"
)

const maxBodyBytes = 1 << 20

// Analyst is the draft analysis backend
type Analyst interface {
	SuggestPosition(ctx context.Context, apiKey string, req analysis.PositionRequest) (json.RawMessage, error)
	EvaluatePick(ctx context.Context, apiKey string, req analysis.PickRequest) (json.RawMessage, error)
	AnalyzeComposition(ctx context.Context, apiKey string, req analysis.CompositionRequest) (json.RawMessage, error)
}

// APIHandlers contains all API handler methods
type APIHandlers struct {
	sessions *session.Manager
	analyst  Analyst
	pubsub   *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance. analyst and ps may be nil.
func NewAPIHandlers(sessions *session.Manager, analyst Analyst, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		sessions: sessions,
		analyst:  analyst,
		pubsub:   ps,
	}
}

// Register mounts every API route on mux, each wrapped by protect
func (h *APIHandlers) Register(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		// Board
		"/api/board":              h.GetBoard,
		"/api/board/round":        h.SetRound,
		"/api/board/clear":        h.ClearRound,
		"/api/board/reset":        h.ResetBoard,
		"/api/board/composition":  h.GetComposition,
		"/api/board/edit/begin":   h.BeginEdit,
		"/api/board/edit/input":   h.EditInput,
		"/api/board/edit/confirm": h.ConfirmEdit,
		"/api/board/edit/cancel":  h.CancelEdit,

		// Targets and preferences
		"/api/targets":        h.ListTargets,
		"/api/targets/add":    h.AddTarget,
		"/api/targets/remove": h.RemoveTarget,
		"/api/settings/theme": h.Theme,
		"/api/settings/ecr":   h.EcrPreference,
		"/api/app/reset":      h.ResetApplication,

		// Reference data
		"/api/players/search":  h.SearchPlayers,
		"/api/players/profile": h.GetPlayerProfile,

		// Analysis
		"/api/analysis/suggest_position": h.SuggestPosition,
		"/api/analysis/pick_evaluator":   h.EvaluatePick,
		"/api/analysis/composition":      h.AnalyzeComposition,

		// SSE for realtime updates
		"/api/events": h.EventsSSE,
	}

	for pattern, fn := range routes {
		mux.Handle(pattern, protect(fn))
	}
}

// session returns the caller's draft kit, or writes 401
func (h *APIHandlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	user := auth.GetUser(r)
	if user == nil || user.ID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	return h.sessions.Get(user.ID), true
}

// GetBoard returns the full board view
func (h *APIHandlers) GetBoard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

type roundRequest struct {
	Round      int    `json:"round"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
}

// SetRound overwrites one round
func (h *APIHandlers) SetRound(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !decode(w, r, &req) {
		return
	}

	logger.Debug("Setting round", "user", s.UserID, "round", req.Round, "player", req.PlayerName)
	if err := s.Board.Set(req.Round, req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// ClearRound empties one round
func (h *APIHandlers) ClearRound(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.Editor.Clear(req.Round); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// ResetBoard empties every round and deletes the stored board
func (h *APIHandlers) ResetBoard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	logger.Info("Resetting draft board", "user", s.UserID)
	s.Editor.Reset()
	if err := s.Board.ResetAll(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// GetComposition returns the per-position counts
func (h *APIHandlers) GetComposition(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Composition())
}

// BeginEdit puts a round into editing mode
func (h *APIHandlers) BeginEdit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := s.Editor.BeginEdit(req.Round)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// EditInput records typed text and returns autocomplete suggestions
func (h *APIHandlers) EditInput(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !decode(w, r, &req) {
		return
	}

	state, err := s.Editor.Input(req.Round, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ConfirmEdit commits the selected player
func (h *APIHandlers) ConfirmEdit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !decode(w, r, &req) {
		return
	}

	if err := s.Editor.Confirm(req.Round, req.PlayerName); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// CancelEdit leaves editing mode without changing the board
func (h *APIHandlers) CancelEdit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !decode(w, r, &req) {
		return
	}

	s.Editor.Cancel(req.Round)
	writeJSON(w, http.StatusOK, s.View())
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.Warn("Failed to decode request", "path", r.URL.Path, "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var apiErr *analysis.APIError

	switch {
	case errors.Is(err, board.ErrInvalidRound),
		errors.Is(err, board.ErrNotEditing),
		errors.Is(err, board.ErrEmptySelection),
		errors.Is(err, targets.ErrEmptyName),
		errors.Is(err, settings.ErrInvalidTheme),
		errors.Is(err, settings.ErrInvalidEcrType),
		errors.Is(err, analysis.ErrMissingAPIKey),
		errors.Is(err, analysis.ErrMissingPlayer):
		status = http.StatusBadRequest
	case errors.As(err, &apiErr), errors.Is(err, analysis.ErrEmptyResponse):
		status = http.StatusBadGateway
	default:
		logger.Error("Request failed", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}
