package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joslsmit/ratm-app/internal/kv"
	"github.com/joslsmit/ratm-app/internal/logger"
	"github.com/joslsmit/ratm-app/internal/models"
)

const (
	// ThemeKey holds the UI theme preference
	ThemeKey = "theme"
	// EcrKey holds the preferred consensus ranking set
	EcrKey = "ecrTypePreference"
)

var (
	ErrInvalidTheme   = errors.New("theme must be light or dark")
	ErrInvalidEcrType = errors.New("ecr type must be overall, positional or rookie")
)

// Settings reads and writes user preferences. Preferences survive an
// application reset.
type Settings struct {
	store kv.Store
}

// New creates settings backed by store
func New(store kv.Store) *Settings {
	return &Settings{store: store}
}

// Theme returns the stored theme, light when unset or unreadable
func (s *Settings) Theme() models.Theme {
	raw, ok, err := s.store.Get(ThemeKey)
	if err != nil {
		logger.Error("Failed to read theme", "error", err)
		return models.ThemeLight
	}
	if !ok {
		return models.ThemeLight
	}
	theme, err := parseTheme(raw)
	if err != nil {
		logger.Warn("Ignoring unknown stored theme", "value", raw)
		return models.ThemeLight
	}
	return theme
}

// SetTheme stores theme
func (s *Settings) SetTheme(theme string) (models.Theme, error) {
	t, err := parseTheme(theme)
	if err != nil {
		return models.ThemeLight, err
	}
	if err := s.store.Set(ThemeKey, string(t)); err != nil {
		return t, fmt.Errorf("failed to save theme: %w", err)
	}
	return t, nil
}

// ToggleTheme flips between light and dark and returns the new theme
func (s *Settings) ToggleTheme() (models.Theme, error) {
	next := models.ThemeDark
	if s.Theme() == models.ThemeDark {
		next = models.ThemeLight
	}
	return s.SetTheme(string(next))
}

// EcrType returns the stored ranking preference, overall when unset
func (s *Settings) EcrType() models.EcrType {
	raw, ok, err := s.store.Get(EcrKey)
	if err != nil {
		logger.Error("Failed to read ECR preference", "error", err)
		return models.EcrOverall
	}
	if !ok {
		return models.EcrOverall
	}
	t, _ := models.ParseEcrType(raw)
	return t
}

// SetEcrType stores the ranking preference
func (s *Settings) SetEcrType(value string) (models.EcrType, error) {
	t, ok := models.ParseEcrType(value)
	if !ok {
		return models.EcrOverall, ErrInvalidEcrType
	}
	if err := s.store.Set(EcrKey, string(t)); err != nil {
		return t, fmt.Errorf("failed to save ECR preference: %w", err)
	}
	return t, nil
}

func parseTheme(s string) (models.Theme, error) {
	switch models.Theme(strings.ToLower(strings.TrimSpace(s))) {
	case models.ThemeLight:
		return models.ThemeLight, nil
	case models.ThemeDark:
		return models.ThemeDark, nil
	}
	return models.ThemeLight, fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}
