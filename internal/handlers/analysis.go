package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/joslsmit/ratm-app/internal/analysis"
	"github.com/joslsmit/ratm-app/internal/board"
	"github.com/joslsmit/ratm-app/internal/session"
)

type analysisRequest struct {
	CurrentRound int    `json:"currentRound"`
	PlayerToPick string `json:"playerToPick"`
}

// currentRound defaults to the first open round, or the last round on a full board
func currentRound(s *session.Session, requested int) int {
	if requested >= 1 && requested <= board.Rounds {
		return requested
	}
	if next := board.NextOpenRound(s.Board.Snapshot()); next > 0 {
		return next
	}
	return board.Rounds
}

func (h *APIHandlers) analysisReady(w http.ResponseWriter) bool {
	if h.analyst == nil {
		http.Error(w, "Analysis backend not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, result json.RawMessage, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"result": result})
}

// SuggestPosition asks the analyst which positions to target next
func (h *APIHandlers) SuggestPosition(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) || !h.analysisReady(w) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req analysisRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.analyst.SuggestPosition(r.Context(), r.Header.Get("X-API-Key"), analysis.PositionRequest{
		DraftBoard:        s.Board.Snapshot().Picks(),
		CurrentRound:      currentRound(s, req.CurrentRound),
		EcrTypePreference: s.Settings.EcrType(),
	})
	writeResult(w, result, err)
}

// EvaluatePick asks the analyst to grade a prospective pick
func (h *APIHandlers) EvaluatePick(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) || !h.analysisReady(w) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req analysisRequest
	if !decode(w, r, &req) {
		return
	}
	req.PlayerToPick = strings.TrimSpace(req.PlayerToPick)
	if req.PlayerToPick == "" {
		http.Error(w, "Missing playerToPick", http.StatusBadRequest)
		return
	}

	result, err := h.analyst.EvaluatePick(r.Context(), r.Header.Get("X-API-Key"), analysis.PickRequest{
		DraftBoard:        s.Board.Snapshot().Picks(),
		PlayerToPick:      req.PlayerToPick,
		CurrentRound:      currentRound(s, req.CurrentRound),
		EcrTypePreference: s.Settings.EcrType(),
	})
	writeResult(w, result, err)
}

// AnalyzeComposition asks the analyst about roster balance
func (h *APIHandlers) AnalyzeComposition(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) || !h.analysisReady(w) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	result, err := h.analyst.AnalyzeComposition(r.Context(), r.Header.Get("X-API-Key"), analysis.CompositionRequest{
		Composition: s.Composition(),
	})
	writeResult(w, result, err)
}
