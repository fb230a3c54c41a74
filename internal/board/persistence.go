package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
)

// StorageKey is the key the board is persisted under
const StorageKey = "draftBoard"

var (
	// ErrInvalidRound is returned for rounds outside 1..Rounds
	ErrInvalidRound = errors.New("round out of range")
	// ErrPersistenceCorrupt is returned when the stored board cannot be decoded
	ErrPersistenceCorrupt = errors.New("persisted draft board is corrupt")
)

// Persistence saves and loads whole boards to a key-value store.
// The stored value is a JSON object mapping round number to player name,
// with empty rounds omitted.
type Persistence struct {
	store kv.Store
}

// NewPersistence creates a persistence adapter over store
func NewPersistence(store kv.Store) *Persistence {
	return &Persistence{store: store}
}

// Save writes the board. An all-empty board is never written, so an
// accidental blank state cannot clobber a saved board.
func (p *Persistence) Save(snap Snapshot) error {
	if snap.Filled() == 0 {
		return nil
	}

	data, err := json.Marshal(encode(snap))
	if err != nil {
		return fmt.Errorf("failed to marshal draft board: %w", err)
	}
	return p.store.Set(StorageKey, string(data))
}

// Load reads the board. A missing key yields an empty board. Undecodable data
// yields an empty board together with an error wrapping ErrPersistenceCorrupt.
func (p *Persistence) Load() (Snapshot, error) {
	raw, ok, err := p.store.Get(StorageKey)
	if err != nil {
		return EmptySnapshot(), fmt.Errorf("failed to read draft board: %w", err)
	}
	if !ok {
		return EmptySnapshot(), nil
	}
	return decode(raw)
}

// Clear deletes the stored board entirely
func (p *Persistence) Clear() error {
	return p.store.Remove(StorageKey)
}

func encode(snap Snapshot) map[string]string {
	out := make(map[string]string)
	for _, slot := range snap {
		if slot.PlayerName != "" {
			out[strconv.Itoa(slot.Round)] = slot.PlayerName
		}
	}
	return out
}

func decode(raw string) (Snapshot, error) {
	snap := EmptySnapshot()

	var stored map[string]string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}

	for key, name := range stored {
		// Only the keys encode writes are accepted, so "01" or " 1" cannot
		// compete with "1" for a round.
		round, err := strconv.Atoi(key)
		if err != nil || strconv.Itoa(round) != key || ValidRound(round) != nil {
			logger.Warn("Ignoring unknown round in stored draft board", "key", key)
			continue
		}
		snap[round-1].PlayerName = strings.TrimSpace(name)
	}
	return snap, nil
}
