package session

import (
	"errors"
	"fmt"

	"github.com/joslsmit/ratm-app/internal/board"
	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
	"github.com/joslsmit/ratm-app/internal/players"
	"github.com/joslsmit/ratm-app/internal/pubsub"
	"github.com/joslsmit/ratm-app/internal/settings"
	"github.com/joslsmit/ratm-app/internal/targets"
)

// Session is one user's draft kit: board, in-progress edits, target list
// and preferences, all persisted under the user's key namespace.
type Session struct {
	UserID   string
	Board    *board.Store
	Editor   *board.Editor
	Targets  *targets.List
	Settings *settings.Settings

	players *players.Registry
	events  pubsub.Publisher
}

// BoardView is the full board as the UI renders it
type BoardView struct {
	Rounds      []models.RoundSlot       `json:"rounds"`
	Picks       map[string]string        `json:"picks"`
	Composition models.RosterComposition `json:"composition"`
	NextRound   int                      `json:"nextRound"`
	Duplicates  []string                 `json:"duplicates"`
	Editing     []board.EditState        `json:"editing"`
}

func newSession(userID string, store kv.Store, registry *players.Registry, events pubsub.Publisher) *Session {
	boardStore := board.NewStore(board.NewPersistence(store))
	s := &Session{
		UserID:   userID,
		Board:    boardStore,
		Editor:   board.NewEditor(boardStore, registry),
		Targets:  targets.NewList(store),
		Settings: settings.New(store),
		players:  registry,
		events:   events,
	}
	boardStore.OnChange(s.boardChanged)
	return s
}

func (s *Session) boardChanged(c board.Change) {
	payload := map[string]interface{}{
		"composition": board.DeriveComposition(c.Snapshot, s.players.Table()),
	}
	if c.Kind != board.ChangeReset {
		payload["round"] = c.Round
		payload["playerName"] = c.PlayerName
	}
	s.publish(pubsub.EventType(c.Kind), payload)
}

func (s *Session) publish(typ pubsub.EventType, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(pubsub.NewEvent(s.UserID, typ, payload))
}

// Composition derives the roster composition from the current board
func (s *Session) Composition() models.RosterComposition {
	return board.DeriveComposition(s.Board.Snapshot(), s.players.Table())
}

// View returns the board with everything derived from it
func (s *Session) View() BoardView {
	snap := s.Board.Snapshot()
	return BoardView{
		Rounds:      snap.Slots(),
		Picks:       snap.Picks(),
		Composition: board.DeriveComposition(snap, s.players.Table()),
		NextRound:   board.NextOpenRound(snap),
		Duplicates:  snap.Duplicates(),
		Editing:     s.Editor.Editing(),
	}
}

// AddTarget adds a player to the target list
func (s *Session) AddTarget(name string) (bool, error) {
	added, err := s.Targets.Add(name)
	if err != nil {
		return false, err
	}
	if added {
		s.publish(pubsub.EventTargetAdd, map[string]interface{}{"playerName": name, "targets": s.Targets.Names()})
	}
	return added, nil
}

// RemoveTarget drops a player from the target list
func (s *Session) RemoveTarget(name string) (bool, error) {
	removed, err := s.Targets.Remove(name)
	if err != nil {
		return false, err
	}
	if removed {
		s.publish(pubsub.EventTargetRemove, map[string]interface{}{"playerName": name, "targets": s.Targets.Names()})
	}
	return removed, nil
}

// SetTheme stores the theme and announces it to the user's other tabs
func (s *Session) SetTheme(theme string) (models.Theme, error) {
	t, err := s.Settings.SetTheme(theme)
	if err != nil {
		return t, err
	}
	s.publish(pubsub.EventThemeChange, map[string]interface{}{"theme": t})
	return t, nil
}

// ToggleTheme flips between light and dark and announces the result
func (s *Session) ToggleTheme() (models.Theme, error) {
	t, err := s.Settings.ToggleTheme()
	if err != nil {
		return t, err
	}
	s.publish(pubsub.EventThemeChange, map[string]interface{}{"theme": t})
	return t, nil
}

// ResetApplication clears the board and the target list. Preferences are kept.
func (s *Session) ResetApplication() error {
	s.Editor.Reset()

	var errs []error
	if err := s.Board.ResetAll(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Targets.Clear(); err != nil {
		errs = append(errs, err)
	}

	s.publish(pubsub.EventAppReset, map[string]interface{}{"composition": s.Composition()})
	logger.Info("Application reset", "user", s.UserID)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("application reset incomplete: %w", err)
	}
	return nil
}
