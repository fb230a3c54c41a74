package board

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// DefaultSuggestionLimit caps autocomplete results per keystroke
const DefaultSuggestionLimit = 10

var (
	// ErrNotEditing is returned when input arrives for a round that is not being edited
	ErrNotEditing = errors.New("round is not being edited")
	// ErrEmptySelection is returned when confirming a blank player name
	ErrEmptySelection = errors.New("no player selected")
)

// Suggester offers player names for partially typed input
type Suggester interface {
	Suggest(query string, limit int) []string
}

// EditState is the transient, unsaved input for one round
type EditState struct {
	Round       int      `json:"round"`
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions"`
}

// Editor tracks which rounds are accepting input. Typing never touches the
// board; only a confirmed selection is committed to the Store.
//
// The UI edits one round at a time, but nothing here enforces that.
type Editor struct {
	mu      sync.Mutex
	store   *Store
	names   Suggester
	limit   int
	editing map[int]*EditState
}

// NewEditor creates an editor committing into store and suggesting from names
func NewEditor(store *Store, names Suggester) *Editor {
	return &Editor{
		store:   store,
		names:   names,
		limit:   DefaultSuggestionLimit,
		editing: make(map[int]*EditState),
	}
}

// BeginEdit puts round into the editing state with empty input
func (e *Editor) BeginEdit(round int) (EditState, error) {
	if err := ValidRound(round); err != nil {
		return EditState{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := &EditState{Round: round, Suggestions: []string{}}
	e.editing[round] = state
	return *state, nil
}

// Input records the text typed so far and returns matching player names
func (e *Editor) Input(round int, text string) (EditState, error) {
	if err := ValidRound(round); err != nil {
		return EditState{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state, ok := e.editing[round]
	if !ok {
		return EditState{}, ErrNotEditing
	}
	state.Text = text
	state.Suggestions = e.suggest(text)
	return copyState(state), nil
}

// Confirm commits playerName to round and leaves the editing state
func (e *Editor) Confirm(round int, playerName string) error {
	if err := ValidRound(round); err != nil {
		return err
	}
	if strings.TrimSpace(playerName) == "" {
		return ErrEmptySelection
	}

	e.mu.Lock()
	delete(e.editing, round)
	e.mu.Unlock()

	return e.store.Set(round, playerName)
}

// Cancel leaves the editing state and discards the typed text
func (e *Editor) Cancel(round int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.editing, round)
}

// Clear leaves the editing state, if any, and empties round on the board
func (e *Editor) Clear(round int) error {
	if err := ValidRound(round); err != nil {
		return err
	}
	e.Cancel(round)
	return e.store.Clear(round)
}

// IsEditing reports whether round is accepting input
func (e *Editor) IsEditing(round int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.editing[round]
	return ok
}

// Editing returns every round currently being edited, in round order
func (e *Editor) Editing() []EditState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]EditState, 0, len(e.editing))
	for _, state := range e.editing {
		out = append(out, copyState(state))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

// Reset drops every in-progress edit
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editing = make(map[int]*EditState)
}

func (e *Editor) suggest(text string) []string {
	if e.names == nil {
		return []string{}
	}
	return e.names.Suggest(text, e.limit)
}

func copyState(s *EditState) EditState {
	out := *s
	out.Suggestions = append([]string{}, s.Suggestions...)
	return out
}
