package services

import (
	"errors"
	"log/slog"
	"sync"

	"startpage/internal/common"
	"startpage/internal/models"
	"startpage/internal/storage"
)

// PreferencesService handles user preferences operations
type PreferencesService struct {
	store  storage.Store
	logger *slog.Logger

	// serialises read-modify-write cycles within this process
	mu sync.Mutex
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(store storage.Store, logger *slog.Logger) *PreferencesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferencesService{store: store, logger: logger}
}

// GetPreferences returns the stored preferences merged over the defaults.
// It never writes.
func (s *PreferencesService) GetPreferences() (*models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.load()
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences merges data over the current preferences and persists
// the result as one blob. Only the keys data changes are validated, so a
// stored value this version does not know never blocks unrelated updates.
func (s *PreferencesService) UpdatePreferences(data map[string]any) (*models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, common.NewPreferencesError("update", err)
	}

	merged, err := models.MergeValues(current, data)
	if err != nil {
		return nil, common.NewPreferencesError("update", err)
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	if err := merged.ValidateFields(models.Changed(current, merged, keys)...); err != nil {
		return nil, common.NewPreferencesError("update", err)
	}

	if err := storage.SaveJSON(s.store, common.KeyPreferences, merged); err != nil {
		return nil, common.NewPreferencesError("save", err)
	}

	if _, ok := data["theme"]; ok && merged.Theme.IsExplicit() {
		// The minimal theme toggle reads the flat key
		if err := s.store.Save(common.KeyTheme, []byte(merged.Theme)); err != nil {
			s.logger.Warn("Failed to mirror theme to legacy key", "error", err)
		}
	}

	return &merged, nil
}

// ResetPreferences overwrites the stored blob with a pristine default copy
// and forgets any explicit theme choice.
func (s *PreferencesService) ResetPreferences() (*models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := models.DefaultPreferences()
	if err := storage.SaveJSON(s.store, common.KeyPreferences, defaults); err != nil {
		return nil, common.NewPreferencesError("reset", err)
	}

	if err := s.store.Delete(common.KeyTheme); err != nil {
		s.logger.Warn("Failed to clear legacy theme key", "error", err)
	}

	return &defaults, nil
}

// ExplicitTheme returns the theme the user chose, if any. The preferences
// blob wins over the legacy flat key.
func (s *PreferencesService) ExplicitTheme() (models.Theme, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefs, err := s.load(); err == nil && prefs.Theme.IsExplicit() {
		return prefs.Theme, true
	}

	legacy := models.Theme(storage.LoadString(s.store, common.KeyTheme))
	if legacy.IsExplicit() {
		return legacy, true
	}

	return "", false
}

// HasExplicitTheme reports whether OS changes should be ignored
func (s *PreferencesService) HasExplicitTheme() bool {
	_, ok := s.ExplicitTheme()
	return ok
}

func (s *PreferencesService) load() (models.Preferences, error) {
	data, err := s.store.Load(common.KeyPreferences)
	if err != nil {
		if common.IsMissing(err) {
			return models.DefaultPreferences(), nil
		}
		return models.Preferences{}, err
	}

	prefs, dropped, err := models.ParseStored(data)
	if len(dropped) > 0 {
		s.logger.Warn("Ignoring unreadable stored preferences", "keys", dropped)
	}
	if err != nil {
		if errors.Is(err, common.ErrCorrupt) {
			s.logger.Warn("Stored preferences are corrupt, using defaults", "error", err)
			return models.DefaultPreferences(), nil
		}
		return models.Preferences{}, err
	}

	return prefs, nil
}
