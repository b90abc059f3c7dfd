// Package simplemode implements the distraction-free mode: the body gets
// the simple-mode class and a large clock replaces the header.
package simplemode

import (
	"log/slog"
	"sync"
	"time"

	"startpage/internal/clock"
	"startpage/internal/common"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
	"startpage/internal/storage"
)

const ClassSimpleMode = "simple-mode"

var overlayThemes = []string{"overlay-dark", "overlay-light"}

type Options struct {
	// Now is overridable for tests
	Now func() time.Time
	// Theme reports the active theme so Start can style the overlay
	Theme func() models.Theme
}

// SimpleMode persists its flag under the legacy simple_mode key
type SimpleMode struct {
	store  storage.Store
	doc    *page.Document
	bus    *events.Bus
	logger *slog.Logger
	theme  func() models.Theme
	ticker *clock.Ticker

	mu          sync.Mutex
	on          bool
	unsubscribe func()
}

// New reads the stored flag; call Start to apply it
func New(store storage.Store, doc *page.Document, bus *events.Bus, opts Options, logger *slog.Logger) *SimpleMode {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SimpleMode{
		store:  store,
		doc:    doc,
		bus:    bus,
		logger: logger,
		theme:  opts.Theme,
		on:     storage.LoadString(store, common.KeySimpleMode) == "true",
	}
	m.ticker = clock.NewTicker(time.Second, opts.Now, m.updateClock)
	return m
}

// Start applies the stored state and follows theme changes
func (m *SimpleMode) Start() {
	if m.unsubscribe == nil {
		m.unsubscribe = m.bus.Subscribe("simple-mode", events.Funcs{
			ThemeChanged: m.onThemeChanged,
		})
	}
	if m.theme != nil {
		m.applyTheme(m.theme())
	}

	if m.IsOn() {
		m.apply(true)
	}
}

// Stop halts the clock and detaches from the bus
func (m *SimpleMode) Stop() {
	m.ticker.Stop()
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *SimpleMode) IsOn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}

func (m *SimpleMode) Enable() error {
	return m.set(true)
}

func (m *SimpleMode) Disable() error {
	return m.set(false)
}

// Toggle flips the mode and returns the new state
func (m *SimpleMode) Toggle() (bool, error) {
	on := !m.IsOn()
	return on, m.set(on)
}

func (m *SimpleMode) set(on bool) error {
	m.mu.Lock()
	m.on = on
	m.mu.Unlock()

	value := "false"
	if on {
		value = "true"
	}

	err := m.store.Save(common.KeySimpleMode, []byte(value))
	if err != nil {
		m.logger.Error("Failed to persist simple mode", "error", err)
	}

	m.apply(on)
	m.bus.Publish(events.SimpleModeChanged{On: on})
	return err
}

func (m *SimpleMode) apply(on bool) {
	m.doc.ToggleClass(page.Body, ClassSimpleMode, on)

	if on {
		m.ticker.Start()
	} else {
		m.ticker.Stop()
		m.doc.SetText(page.SimpleClock, "")
		m.doc.SetText(page.SimpleDate, "")
	}

	m.publish()
}

func (m *SimpleMode) updateClock(now time.Time) {
	m.doc.SetText(page.SimpleClock, clock.FormatTime(now))
	m.doc.SetText(page.SimpleDate, clock.FormatDate(now))

	if m.IsOn() {
		m.publish()
	}
}

func (m *SimpleMode) onThemeChanged(e events.ThemeChanged) {
	m.applyTheme(e.Theme)
}

func (m *SimpleMode) applyTheme(theme models.Theme) {
	active := "overlay-light"
	if theme == models.ThemeDark {
		active = "overlay-dark"
	}
	m.doc.SwapClass(page.SimpleOverlay, overlayThemes, active)
}

func (m *SimpleMode) publish() {
	m.bus.Publish(events.PageUpdated{Snapshot: m.doc.Snapshot()})
}
