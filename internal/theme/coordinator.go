// Package theme owns the light/dark state of the page and broadcasts every
// transition on the event bus.
package theme

import (
	"log/slog"
	"sync"

	"startpage/internal/appearance"
	"startpage/internal/domain/preferences"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
)

const (
	ClassDark  = "dark-mode"
	ClassLight = "light-mode"

	// Toggle icons show the theme a click switches to
	IconDark  = "bi-sun-fill"
	IconLight = "bi-moon-stars-fill"
)

var (
	modeClasses = []string{ClassDark, ClassLight}
	iconClasses = []string{IconDark, IconLight}
)

// Coordinator is the single source of truth for the active theme
type Coordinator struct {
	doc    *page.Document
	prefs  preferences.Repository
	system appearance.Source
	bus    *events.Bus
	logger *slog.Logger

	// mu also covers the document writes of a transition so the classes
	// on the page always match current
	mu      sync.Mutex
	current models.Theme
	// chosen is set by persisted transitions so a failed write still
	// keeps OS changes from overriding the user for this session. Only
	// ForgetChoice clears it.
	chosen bool
	// auto is set while the applied preferences ask for the auto theme;
	// the reconciler's listener then drives OS changes
	auto   bool
	stopOS func()
}

// NewCoordinator creates a coordinator. Call Start once the page exists.
func NewCoordinator(doc *page.Document, prefs preferences.Repository, system appearance.Source, bus *events.Bus, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		doc:    doc,
		prefs:  prefs,
		system: system,
		bus:    bus,
		logger: logger,
	}
}

// Start resolves the initial theme and begins mirroring the OS setting.
// An explicit stored choice wins; otherwise the OS value is used without
// being persisted.
func (c *Coordinator) Start() models.Theme {
	initial, explicit := c.prefs.ExplicitTheme()
	if !explicit {
		initial = models.ThemeFor(c.system.PrefersDark())
	}

	c.mu.Lock()
	if c.stopOS == nil {
		c.stopOS = c.system.OnChange(c.handleSystemChange)
	}
	c.mu.Unlock()

	c.transition(initial, false)
	c.logger.Info("Theme resolved", "theme", initial, "explicit", explicit)
	return initial
}

// Stop detaches the OS listener
func (c *Coordinator) Stop() {
	c.mu.Lock()
	stop := c.stopOS
	c.stopOS = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// EnableDarkMode switches to dark, writing the choice when persist is set
func (c *Coordinator) EnableDarkMode(persist bool) error {
	return c.transition(models.ThemeDark, persist)
}

// EnableLightMode switches to light, writing the choice when persist is set
func (c *Coordinator) EnableLightMode(persist bool) error {
	return c.transition(models.ThemeLight, persist)
}

// ToggleTheme switches to the opposite theme and persists it
func (c *Coordinator) ToggleTheme() error {
	c.mu.Lock()
	next := c.current.Opposite()
	c.render(next, true)
	c.mu.Unlock()

	return c.commit(next, true)
}

// Current returns the active theme
func (c *Coordinator) Current() models.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// IsDark reports whether the dark theme is active
func (c *Coordinator) IsDark() bool {
	return c.Current() == models.ThemeDark
}

// Apply shows theme without persisting it. ThemeAuto follows the OS value;
// an empty theme re-syncs with the stored choice or, failing that, the OS.
// A choice made this session by ToggleTheme wins over the OS in both cases.
func (c *Coordinator) Apply(theme models.Theme) {
	stored, explicit := c.prefs.ExplicitTheme()

	c.mu.Lock()
	c.auto = theme == models.ThemeAuto

	next := theme
	switch {
	case theme.IsExplicit():
	case theme == "" && explicit:
		next = stored
	case c.chosen:
		next = c.current
	default:
		next = models.ThemeFor(c.system.PrefersDark())
	}
	c.render(next, false)
	c.mu.Unlock()

	c.bus.Publish(events.ThemeChanged{Theme: next})
}

// ForgetChoice drops the session choice so OS changes are followed again
// when nothing explicit is stored. Called when preferences are reset.
func (c *Coordinator) ForgetChoice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chosen = false
}

func (c *Coordinator) handleSystemChange(dark bool) {
	c.mu.Lock()
	skip := c.chosen || c.auto
	c.mu.Unlock()

	if _, explicit := c.prefs.ExplicitTheme(); explicit || skip {
		return
	}

	c.transition(models.ThemeFor(dark), false)
}

// transition repeats every side effect even when theme is already active.
// The bus is published to without c.mu held so subscribers may call back.
func (c *Coordinator) transition(theme models.Theme, persist bool) error {
	c.mu.Lock()
	c.render(theme, persist)
	c.mu.Unlock()

	return c.commit(theme, persist)
}

// commit persists and announces a rendered theme
func (c *Coordinator) commit(theme models.Theme, persist bool) error {
	var err error
	if persist {
		if _, err = c.prefs.UpdatePreferences(map[string]any{"theme": string(theme)}); err != nil {
			c.logger.Error("Failed to persist theme", "theme", theme, "error", err)
		}
	}

	c.bus.Publish(events.ThemeChanged{Theme: theme})
	return err
}

// render must be called with c.mu held
func (c *Coordinator) render(theme models.Theme, persist bool) {
	c.current = theme
	if persist {
		c.chosen = true
	}

	if theme == models.ThemeDark {
		c.doc.SwapClass(page.Body, modeClasses, ClassDark)
		c.doc.SwapClass(page.ThemeToggle, iconClasses, IconDark)
	} else {
		c.doc.SwapClass(page.Body, modeClasses, ClassLight)
		c.doc.SwapClass(page.ThemeToggle, iconClasses, IconLight)
	}
}
