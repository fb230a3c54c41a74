package targets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
)

// StorageKey is the key the target list is persisted under
const StorageKey = "targetList"

var (
	// ErrCorrupt is returned when the stored target list cannot be decoded
	ErrCorrupt = errors.New("persisted target list is corrupt")
	// ErrEmptyName is returned when adding a blank player name
	ErrEmptyName = errors.New("player name is required")
)

// List is an ordered set of players the user wants to draft. Names are
// compared case-insensitively after trimming; the first spelling added is
// kept. Like the board, the stored copy is authoritative and reloaded before
// every read and change.
type List struct {
	mu    sync.Mutex
	store kv.Store
	names []string
}

// NewList loads the persisted list from store. Corrupt data is logged and
// the list starts empty.
func NewList(store kv.Store) *List {
	l := &List{store: store, names: []string{}}
	if err := l.load(); err != nil {
		logger.Warn("Stored target list unreadable, starting empty", "error", err)
	}
	return l
}

// Load reads the stored list. A missing key yields an empty list.
func Load(store kv.Store) ([]string, error) {
	raw, ok, err := store.Get(StorageKey)
	if err != nil {
		return []string{}, fmt.Errorf("failed to read target list: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return []string{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	names := make([]string, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, name := range stored {
		name = strings.TrimSpace(name)
		k := key(name)
		if name == "" || seen[k] {
			continue
		}
		seen[k] = true
		names = append(names, name)
	}
	return names, nil
}

// Names returns a copy of the list in insertion order
func (l *List) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reload()
	return append([]string{}, l.names...)
}

// Len returns the number of targets
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reload()
	return len(l.names)
}

// Contains reports whether name is already targeted
func (l *List) Contains(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reload()
	return l.indexOf(name) >= 0
}

// Add appends name. It returns false when the player is already targeted.
// On error the list is unchanged.
func (l *List) Add(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.load(); err != nil {
		return false, err
	}
	if l.indexOf(name) >= 0 {
		return false, nil
	}

	next := make([]string, 0, len(l.names)+1)
	next = append(append(next, l.names...), name)
	if err := l.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops name. It returns false when the player was not targeted.
// On error the list is unchanged.
func (l *List) Remove(name string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.load(); err != nil {
		return false, err
	}
	i := l.indexOf(name)
	if i < 0 {
		return false, nil
	}

	next := make([]string, 0, len(l.names)-1)
	next = append(append(next, l.names[:i]...), l.names[i+1:]...)
	if err := l.commit(next); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the list and deletes the stored key
func (l *List) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commit([]string{})
}

// load replaces the in-memory list with the stored one. Corrupt data becomes
// an empty list. Callers hold l.mu.
func (l *List) load() error {
	names, err := Load(l.store)
	switch {
	case err == nil:
		l.names = names
	case errors.Is(err, ErrCorrupt):
		logger.Warn("Stored target list is corrupt, starting empty", "error", err)
		l.names = []string{}
	default:
		return err
	}
	return nil
}

func (l *List) reload() {
	if err := l.load(); err != nil {
		logger.Warn("Failed to reload target list, serving last known copy", "error", err)
	}
}

func (l *List) indexOf(name string) int {
	k := key(name)
	for i, n := range l.names {
		if key(n) == k {
			return i
		}
	}
	return -1
}

// commit saves names and adopts them only once stored
func (l *List) commit(names []string) error {
	if len(names) == 0 {
		if err := l.store.Remove(StorageKey); err != nil {
			return fmt.Errorf("failed to delete target list: %w", err)
		}
		l.names = names
		return nil
	}

	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to marshal target list: %w", err)
	}
	if err := l.store.Set(StorageKey, string(data)); err != nil {
		return fmt.Errorf("failed to save target list: %w", err)
	}
	l.names = names
	return nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
