package handlers

import (
	"net/http"

	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
	"github.com/joslsmit/ratm-app/internal/players"
	"github.com/joslsmit/ratm-app/internal/session"
)

// TargetView is a target list entry joined with reference data
type TargetView struct {
	Name      string          `json:"name"`
	Found     bool            `json:"found"`
	Position  models.Position `json:"position,omitempty"`
	Team      string          `json:"team,omitempty"`
	ByeWeek   *int            `json:"byeWeek,omitempty"`
	Ranking   models.Ranking  `json:"ranking"`
	Consensus string          `json:"consensus,omitempty"`
	Drafted   bool            `json:"drafted"`
}

func (h *APIHandlers) targetViews(s *session.Session) []TargetView {
	table := h.sessions.Players().Table()
	ecr := s.Settings.EcrType()

	drafted := make(map[string]bool)
	for _, slot := range s.Board.Snapshot() {
		if slot.PlayerName != "" {
			drafted[players.Normalize(slot.PlayerName)] = true
		}
	}

	names := s.Targets.Names()
	out := make([]TargetView, 0, len(names))
	for _, name := range names {
		v := TargetView{Name: name, Drafted: drafted[players.Normalize(name)]}
		if rec, ok := table.Lookup(name); ok {
			v.Found = true
			v.Position = rec.Position
			v.Team = rec.Team
			v.ByeWeek = rec.ByeWeek
			v.Ranking = rec.RankingFor(ecr)
			if v.Ranking.SD != nil {
				v.Consensus = players.ConsensusLabel(*v.Ranking.SD)
			}
		}
		out = append(out, v)
	}
	return out
}

// ListTargets returns the target list with reference data
func (h *APIHandlers) ListTargets(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.targetViews(s))
}

type targetRequest struct {
	PlayerName string `json:"playerName"`
}

// AddTarget adds a player to the target list
func (h *APIHandlers) AddTarget(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req targetRequest
	if !decode(w, r, &req) {
		return
	}

	added, err := s.AddTarget(req.PlayerName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":   added,
		"targets": h.targetViews(s),
	})
}

// RemoveTarget removes a player from the target list
func (h *APIHandlers) RemoveTarget(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req targetRequest
	if !decode(w, r, &req) {
		return
	}

	removed, err := s.RemoveTarget(req.PlayerName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"removed": removed,
		"targets": h.targetViews(s),
	})
}

// Theme reads (GET) or sets (POST) the theme. A POST without a theme toggles it.
func (h *APIHandlers) Theme(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]models.Theme{"theme": s.Settings.Theme()})
	case http.MethodPost:
		var req struct {
			Theme string `json:"theme"`
		}
		if !decode(w, r, &req) {
			return
		}

		var t models.Theme
		var err error
		if req.Theme == "" {
			t, err = s.ToggleTheme()
		} else {
			t, err = s.SetTheme(req.Theme)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]models.Theme{"theme": t})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// EcrPreference reads (GET) or sets (POST) which ranking set is preferred
func (h *APIHandlers) EcrPreference(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]models.EcrType{"ecrType": s.Settings.EcrType()})
	case http.MethodPost:
		var req struct {
			EcrType string `json:"ecrType"`
		}
		if !decode(w, r, &req) {
			return
		}
		t, err := s.Settings.SetEcrType(req.EcrType)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]models.EcrType{"ecrType": t})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ResetApplication clears the board and target list, keeping preferences
func (h *APIHandlers) ResetApplication(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	logger.Info("Resetting application", "user", s.UserID)
	if err := s.ResetApplication(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
