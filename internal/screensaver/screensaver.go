// Package screensaver shows a full-screen clock after a period without
// user activity.
package screensaver

import (
	"log/slog"
	"sync"
	"time"

	"startpage/internal/clock"
	"startpage/internal/common"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
)

const (
	ClassActive        = "active"
	ClassEntering      = "entering"
	ClassContentHidden = "content-hidden"
	ClassNoAnimations  = "no-animations"
)

var overlayThemes = []string{"screensaver-dark", "screensaver-light"}

type Options struct {
	IdleTimeout time.Duration
	// Now is overridable for tests
	Now func() time.Time
	// Theme reports the active theme so Start can style the overlay
	// before the first transition
	Theme func() models.Theme
}

// Screensaver reacts to activity reports from the frontend
type Screensaver struct {
	doc    *page.Document
	bus    *events.Bus
	logger *slog.Logger
	idle   time.Duration
	theme  func() models.Theme
	ticker *clock.Ticker

	// serialises Show, Hide and Stop
	opMu sync.Mutex

	mu          sync.Mutex
	active      bool
	running     bool
	idleTimer   *time.Timer
	unsubscribe func()
}

func New(doc *page.Document, bus *events.Bus, opts Options, logger *slog.Logger) *Screensaver {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = common.DefaultIdleTimeout
	}

	s := &Screensaver{
		doc:    doc,
		bus:    bus,
		logger: logger,
		idle:   opts.IdleTimeout,
		theme:  opts.Theme,
	}
	s.ticker = clock.NewTicker(time.Second, opts.Now, s.updateTime)
	return s
}

// Start arms the idle timer and follows theme changes
func (s *Screensaver) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.idleTimer = time.AfterFunc(s.idle, s.Show)
	s.mu.Unlock()

	s.unsubscribe = s.bus.Subscribe("screensaver", events.Funcs{
		ThemeChanged: s.onThemeChanged,
	})
	if s.theme != nil {
		s.applyTheme(s.theme())
	}
}

// Stop hides the overlay and releases the timer and clock goroutine
func (s *Screensaver) Stop() {
	s.opMu.Lock()
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.opMu.Unlock()
		return
	}
	s.running = false
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.mu.Unlock()

	s.hide()
	s.opMu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Activity records user input: it hides the overlay and restarts the
// idle countdown.
func (s *Screensaver) Activity() {
	s.Hide()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running && s.idleTimer != nil {
		s.idleTimer.Reset(s.idle)
	}
}

// Show displays the overlay. It does nothing when already shown or after
// Stop.
func (s *Screensaver) Show() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if s.active || !s.running {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	s.ticker.Start()
	s.doc.AddClass(page.Container, ClassContentHidden)
	s.doc.AddClass(page.Screensaver, ClassActive)
	s.doc.ToggleClass(page.Screensaver, ClassEntering, !s.doc.HasClass(page.Body, ClassNoAnimations))

	s.logger.Debug("Screensaver shown")
	s.publish()
}

// Hide removes the overlay if it is shown
func (s *Screensaver) Hide() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.hide()
}

func (s *Screensaver) hide() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	s.ticker.Stop()
	s.doc.RemoveClass(page.Screensaver, ClassActive, ClassEntering)
	s.doc.RemoveClass(page.Container, ClassContentHidden)

	s.publish()
}

func (s *Screensaver) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Screensaver) updateTime(now time.Time) {
	s.doc.SetText(page.Clock, clock.FormatTime(now))
	s.doc.SetText(page.Date, clock.FormatDate(now))

	if s.IsActive() {
		s.publish()
	}
}

func (s *Screensaver) onThemeChanged(m events.ThemeChanged) {
	s.applyTheme(m.Theme)
}

func (s *Screensaver) applyTheme(theme models.Theme) {
	active := "screensaver-light"
	if theme == models.ThemeDark {
		active = "screensaver-dark"
	}
	s.doc.SwapClass(page.Screensaver, overlayThemes, active)
}

func (s *Screensaver) publish() {
	s.bus.Publish(events.PageUpdated{Snapshot: s.doc.Snapshot()})
}
