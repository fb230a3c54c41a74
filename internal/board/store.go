package board

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joslsmit/ratm-app/internal/logger"
)

// ChangeKind identifies a board mutation
type ChangeKind string

const (
	ChangeSet   ChangeKind = "board:set"
	ChangeClear ChangeKind = "board:clear"
	ChangeReset ChangeKind = "board:reset"
)

// Change describes a committed mutation and the board after it
type Change struct {
	Kind       ChangeKind
	Round      int
	PlayerName string
	Snapshot   Snapshot
}

// Store is the round -> player mapping of one board. The persisted copy is
// authoritative: every read and mutation reloads it first, so stores on
// several instances sharing one key-value backend see each other's picks.
//
// Concurrent mutations of the same board from different instances are still
// last-writer-wins on the whole board.
type Store struct {
	mu        sync.Mutex
	snap      Snapshot
	persist   *Persistence
	listeners []func(Change)
}

// NewStore loads the persisted board. Unreadable or corrupt data is logged and
// the store starts empty.
func NewStore(p *Persistence) *Store {
	s := &Store{snap: EmptySnapshot(), persist: p}
	if err := s.load(); err != nil {
		logger.Error("Failed to load draft board, starting empty", "error", err)
	}
	return s
}

// OnChange registers fn to be called after every committed mutation. Calls
// arrive in commit order with the store locked, so fn must not call back
// into the Store.
func (s *Store) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get returns the player for round, "" when unfilled or out of range
func (s *Store) Get(round int) string {
	return s.Snapshot().Get(round)
}

// Snapshot returns a copy of the whole board. When the backend cannot be
// read the last known board is returned.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		logger.Warn("Failed to reload draft board, serving last known copy", "error", err)
	}
	return s.snap
}

// Set overwrites round unconditionally. An empty name clears the round.
func (s *Store) Set(round int, playerName string) error {
	if err := ValidRound(round); err != nil {
		return err
	}
	playerName = strings.TrimSpace(playerName)

	kind := ChangeSet
	if playerName == "" {
		kind = ChangeClear
	}
	return s.mutate(Change{Kind: kind, Round: round, PlayerName: playerName}, func(snap *Snapshot) {
		snap[round-1].PlayerName = playerName
	})
}

// Clear empties round
func (s *Store) Clear(round int) error {
	return s.Set(round, "")
}

// ResetAll empties every round and deletes the persisted board, so a fresh
// session sees no board at all rather than a board of blanks.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist.Clear(); err != nil {
		logger.Error("Failed to delete draft board", "error", err)
		return fmt.Errorf("failed to delete draft board: %w", err)
	}
	s.snap = EmptySnapshot()
	notify(s.listeners, Change{Kind: ChangeReset, Snapshot: s.snap})
	return nil
}

// load replaces the in-memory board with the persisted one. Corrupt data
// becomes an empty board. Callers hold s.mu.
func (s *Store) load() error {
	snap, err := s.persist.Load()
	switch {
	case err == nil:
		s.snap = snap
	case errors.Is(err, ErrPersistenceCorrupt):
		logger.Warn("Stored draft board is corrupt, starting empty", "error", err)
		s.snap = EmptySnapshot()
	default:
		return err
	}
	return nil
}

func (s *Store) mutate(change Change, apply func(*Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		logger.Error("Failed to read draft board before update", "error", err, "round", change.Round)
		return err
	}

	prev := s.snap
	apply(&s.snap)

	var err error
	if s.snap.Filled() == 0 {
		// Save skips blank boards, so clearing the last pick removes the key
		// instead of leaving the previous pick on disk.
		err = s.persist.Clear()
	} else {
		err = s.persist.Save(s.snap)
	}
	if err != nil {
		s.snap = prev
		logger.Error("Failed to persist draft board", "error", err, "round", change.Round)
		return fmt.Errorf("failed to persist draft board: %w", err)
	}

	change.Snapshot = s.snap
	notify(s.listeners, change)
	return nil
}

func notify(listeners []func(Change), change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}
