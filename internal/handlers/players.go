package handlers

import (
	"net/http"
	"strconv"

	"github.com/joslsmit/ratm-app/internal/board"
	"github.com/joslsmit/ratm-app/internal/models"
	"github.com/joslsmit/ratm-app/internal/players"
)

const maxSearchLimit = 50

// SearchPlayers returns autocomplete labels for ?query=
func (h *APIHandlers) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	limit := board.DefaultSuggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = min(n, maxSearchLimit)
	}

	writeJSON(w, http.StatusOK, h.sessions.Players().Suggest(r.URL.Query().Get("query"), limit))
}

// PlayerProfile is a reference record with consensus labels
type PlayerProfile struct {
	models.PlayerRecord
	OverallConsensus    string `json:"overallConsensus,omitempty"`
	PositionalConsensus string `json:"positionalConsensus,omitempty"`
}

// GetPlayerProfile returns reference data for ?name=
func (h *APIHandlers) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Missing name parameter", http.StatusBadRequest)
		return
	}

	rec, ok := h.sessions.Players().Lookup(name)
	if !ok {
		http.Error(w, "Player not found", http.StatusNotFound)
		return
	}

	profile := PlayerProfile{PlayerRecord: rec}
	if rec.Overall.SD != nil {
		profile.OverallConsensus = players.ConsensusLabel(*rec.Overall.SD)
	}
	if rec.Positional.SD != nil {
		profile.PositionalConsensus = players.ConsensusLabel(*rec.Positional.SD)
	}
	writeJSON(w, http.StatusOK, profile)
}
