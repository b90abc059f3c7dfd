// Package editor implements the preferences editing session: control
// changes are previewed on the page immediately and only persisted by Save.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"startpage/internal/common"
	"startpage/internal/domain/preferences"
	"startpage/internal/events"
	"startpage/internal/models"

	"github.com/bep/debounce"
)

// Previewer applies preferences to the page without persisting them
type Previewer interface {
	Apply(prefs models.Preferences)
}

// Options tune a Session
type Options struct {
	DebounceDelay  time.Duration
	MaxUploadBytes int64
}

// Session holds the unsaved preferences being edited
type Session struct {
	repo    preferences.Repository
	preview Previewer
	prober  ImageProber
	bus     *events.Bus
	logger  *slog.Logger
	opts    Options

	debounced func(func())

	mu      sync.Mutex
	open    bool
	draft   models.Preferences
	picker  models.Theme
	pending map[string]any

	unsubscribe func()
}

// NewSession creates a closed session. Open starts editing.
func NewSession(repo preferences.Repository, preview Previewer, prober ImageProber, bus *events.Bus, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = common.DefaultDebounceDelay
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = common.MaxBackgroundUploadBytes
	}

	s := &Session{
		repo:      repo,
		preview:   preview,
		prober:    prober,
		bus:       bus,
		logger:    logger,
		opts:      opts,
		debounced: debounce.New(opts.DebounceDelay),
		pending:   make(map[string]any),
	}

	s.unsubscribe = bus.Subscribe("editor", events.Funcs{
		ThemeChanged: s.onThemeChanged,
	})

	return s
}

// Open loads the persisted preferences into the draft
func (s *Session) Open() (*models.Preferences, error) {
	prefs, err := s.repo.GetPreferences()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.open = true
	s.draft = prefs.Clone()
	if prefs.Theme.IsExplicit() {
		s.picker = prefs.Theme
	}
	s.pending = make(map[string]any)
	s.mu.Unlock()

	return prefs, nil
}

// IsOpen reports whether an editing session is active
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Draft returns a copy of the unsaved preferences
func (s *Session) Draft() (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return models.Preferences{}, common.ErrNoSession
	}
	return s.draft.Clone(), nil
}

// ThemePicker returns the theme the picker control should show
func (s *Session) ThemePicker() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.picker
}

// Set changes one field of the draft and previews the result. field is the
// JSON name used in the persisted object.
func (s *Session) Set(field string, value any) error {
	return s.update(map[string]any{field: value})
}

// SetDebounced is Set for text and colour inputs: bursts of calls within
// the debounce delay collapse into one preview.
func (s *Session) SetDebounced(field string, value any) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return common.ErrNoSession
	}
	s.pending[field] = value
	s.mu.Unlock()

	s.debounced(func() {
		if err := s.Flush(); err != nil {
			s.logger.Warn("Debounced preference change rejected", "field", field, "error", err)
		}
	})
	return nil
}

// Flush applies any debounced changes that have not fired yet
func (s *Session) Flush() error {
	s.mu.Lock()
	patch := s.pending
	s.pending = make(map[string]any)
	s.mu.Unlock()

	if len(patch) == 0 {
		return nil
	}
	return s.update(patch)
}

func (s *Session) SetTheme(theme models.Theme) error {
	return s.Set("theme", theme)
}

func (s *Session) SetAccentColor(color string) error {
	return s.SetDebounced("accentColor", color)
}

func (s *Session) SetCardStyle(style models.CardStyle) error {
	return s.Set("cardStyle", style)
}

func (s *Session) SetAnimation(on bool) error {
	return s.Set("animation", on)
}

func (s *Session) SetLayout(layout models.Layout) error {
	return s.Set("layout", layout)
}

func (s *Session) SetTileLayout(columns int) error {
	return s.Set("tileLayout", columns)
}

func (s *Session) SetBlur(px int) error {
	return s.SetDebounced("blur", px)
}

// SetBackgroundType switches the background kind. Changing the kind drops
// the previous value because its shape no longer matches.
func (s *Session) SetBackgroundType(kind models.BackgroundType) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return common.ErrNoSession
	}
	bg := s.draft.Background
	s.mu.Unlock()

	if bg.Type != kind {
		bg = models.Background{Type: kind, Value: models.NullValue()}
	}
	return s.Set("background", bg)
}

func (s *Session) SetBackgroundColor(color string) error {
	return s.SetDebounced("background", models.Background{
		Type:  models.BackgroundColor,
		Value: models.StringValue(color),
	})
}

func (s *Session) SetGradient(g models.Gradient) error {
	return s.SetDebounced("background", models.Background{
		Type:  models.BackgroundGradient,
		Value: models.GradientValue(g),
	})
}

// SetBackgroundImageURL previews src as the background once it is known
// to be a reachable image. A rejected image leaves the previous background
// on the page and raises a blocking notification.
func (s *Session) SetBackgroundImageURL(ctx context.Context, src string) error {
	if !s.IsOpen() {
		return common.ErrNoSession
	}

	if err := s.prober.ProbeImage(ctx, src); err != nil {
		return s.rejectAsset(&common.AssetError{Source: src, Reason: err.Error()})
	}

	return s.Set("background", models.Background{
		Type:  models.BackgroundImage,
		Value: models.StringValue(src),
	})
}

// SetBackgroundUpload previews an uploaded file as the background
func (s *Session) SetBackgroundUpload(name, contentType string, data []byte) error {
	if !s.IsOpen() {
		return common.ErrNoSession
	}

	dataURL, err := EncodeUpload(name, contentType, data, s.opts.MaxUploadBytes)
	if err != nil {
		return s.rejectAsset(err)
	}

	return s.Set("background", models.Background{
		Type:  models.BackgroundImage,
		Value: models.StringValue(dataURL),
	})
}

// Save persists the draft. On failure the preview stays and the user may
// retry.
func (s *Session) Save() (*models.Preferences, error) {
	if err := s.Flush(); err != nil {
		s.logger.Warn("Discarding invalid pending change", "error", err)
	}

	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return nil, common.ErrNoSession
	}
	draft := s.draft.Clone()
	s.mu.Unlock()

	saved, err := s.repo.UpdatePreferences(draft.ToMap())
	if err != nil {
		s.logger.Error("Failed to save preferences", "error", err)
		s.bus.Publish(events.Toast{Message: "Failed to save preferences", Level: events.ToastError})
		return nil, err
	}

	s.mu.Lock()
	s.draft = saved.Clone()
	s.mu.Unlock()

	s.bus.Publish(events.PreferencesSaved{Prefs: saved.Clone()})
	s.bus.Publish(events.Toast{Message: "Preferences saved", Level: events.ToastSuccess})
	return saved, nil
}

// Cancel closes the session and restores the last persisted state
func (s *Session) Cancel() error {
	s.mu.Lock()
	s.open = false
	s.pending = make(map[string]any)
	s.mu.Unlock()

	prefs, err := s.repo.GetPreferences()
	if err != nil {
		return err
	}

	s.preview.Apply(*prefs)
	return nil
}

// Reset restores the defaults after confirm agrees. It returns false when
// the user declined.
func (s *Session) Reset(confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}

	prefs, err := s.repo.ResetPreferences()
	if err != nil {
		s.logger.Error("Failed to reset preferences", "error", err)
		s.bus.Publish(events.Toast{Message: "Failed to reset preferences", Level: events.ToastError})
		return false, err
	}

	s.mu.Lock()
	s.draft = prefs.Clone()
	s.pending = make(map[string]any)
	s.mu.Unlock()

	s.bus.Publish(events.PreferencesReset{Prefs: prefs.Clone()})
	s.bus.Publish(events.Toast{Message: "Preferences reset to defaults", Level: events.ToastInfo})
	return true, nil
}

// Close ends the session without touching the page
func (s *Session) Close() {
	s.mu.Lock()
	s.open = false
	s.pending = make(map[string]any)
	s.mu.Unlock()
}

// Detach stops listening for theme changes
func (s *Session) Detach() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Session) update(patch map[string]any) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return common.ErrNoSession
	}

	fields := make([]string, 0, len(patch))
	for field := range patch {
		fields = append(fields, field)
	}

	next, err := models.MergeValues(s.draft, patch)
	if err == nil {
		err = next.ValidateFields(fields...)
	}
	if err != nil {
		s.mu.Unlock()
		return common.NewPreferencesError("preview", err)
	}

	s.draft = next
	if next.Theme.IsExplicit() {
		s.picker = next.Theme
	}
	s.mu.Unlock()

	s.preview.Apply(next.Clone())
	return nil
}

func (s *Session) rejectAsset(err error) error {
	s.logger.Warn("Background image rejected", "error", err)

	// Re-apply the draft so an optimistic preview on the page is undone
	if draft, derr := s.Draft(); derr == nil {
		s.preview.Apply(draft)
	}

	s.bus.Publish(events.Toast{
		Message:  err.Error(),
		Level:    events.ToastError,
		Blocking: true,
	})
	return err
}

// SyncTheme points the picker, and an explicit draft theme, at the active
// theme. It is used on initialization, when the last ThemeChanged may
// predate the session.
func (s *Session) SyncTheme(theme models.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.picker = theme
	if s.open && s.draft.Theme.IsExplicit() {
		s.draft.Theme = theme
	}
}

func (s *Session) onThemeChanged(m events.ThemeChanged) {
	s.SyncTheme(m.Theme)
}
