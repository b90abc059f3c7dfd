// Package reconcile derives every visible consequence of a preferences
// object and applies it to the page document.
package reconcile

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"startpage/internal/appearance"
	"startpage/internal/domain/preferences"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
)

const (
	AccentProperty = "--accent-color"
	ClassNoAnimate = "no-animations"
)

var (
	cardClasses       = classSet("card-", models.CardStyles)
	layoutClasses     = classSet("layout-", models.Layouts)
	backgroundClasses = classSet("bg-", models.BackgroundTypes)

	backgroundStyles = []string{
		"background-color",
		"background-image",
		"background-size",
		"background-position",
		"background-attachment",
		"background-repeat",
	}
	blurStyles = []string{"backdrop-filter", "-webkit-backdrop-filter"}
)

// Themer applies a theme to the page without persisting it
type Themer interface {
	Apply(theme models.Theme)
	// ForgetChoice drops an unsaved theme choice made this session
	ForgetChoice()
}

// Reconciler applies preferences to the page. Apply is idempotent: a
// second call with the same preferences leaves the document unchanged.
type Reconciler struct {
	doc    *page.Document
	themer Themer
	system appearance.Source
	bus    *events.Bus
	logger *slog.Logger

	// pass serialises Apply, Resize and OS-driven passes. Taken before mu.
	pass sync.Mutex

	mu           sync.Mutex
	last         *models.Preferences
	autoListener func()
}

func New(doc *page.Document, themer Themer, system appearance.Source, bus *events.Bus, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		doc:    doc,
		themer: themer,
		system: system,
		bus:    bus,
		logger: logger,
	}
}

// Load reads the persisted preferences and applies them
func (r *Reconciler) Load(repo preferences.Repository) (*models.Preferences, error) {
	prefs, err := repo.GetPreferences()
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	r.Apply(*prefs)
	return prefs, nil
}

// Subscribe re-applies preferences whenever they are saved or reset
func (r *Reconciler) Subscribe() func() {
	return r.bus.Subscribe("reconciler", events.Funcs{
		PreferencesSaved: func(m events.PreferencesSaved) { r.Apply(m.Prefs) },
		PreferencesReset: func(m events.PreferencesReset) {
			r.themer.ForgetChoice()
			r.Apply(m.Prefs)
		},
	})
}

// Apply runs one reconciliation pass in fixed order: accent, card style,
// animation, layout, background, blur, theme.
func (r *Reconciler) Apply(prefs models.Preferences) {
	p := prefs.Clone()

	r.pass.Lock()
	r.mu.Lock()
	r.last = &p
	r.mu.Unlock()

	r.applyAccent(p)
	r.applyCardStyle(p)
	r.applyAnimation(p)
	r.applyLayout(p)
	r.applyBackground(p)
	r.applyBlur(p)
	r.applyTheme(p)
	r.pass.Unlock()

	r.publish()
}

// Resize records a new viewport width and recomputes tile columns
func (r *Reconciler) Resize(width int) {
	r.pass.Lock()
	r.doc.SetWidth(width)
	if last, ok := r.Last(); ok {
		r.applyColumns(last)
	}
	r.pass.Unlock()

	r.publish()
}

// Last returns a copy of the most recently applied preferences
func (r *Reconciler) Last() (models.Preferences, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last == nil {
		return models.Preferences{}, false
	}
	return r.last.Clone(), true
}

// Close detaches the OS listener attached for the auto theme
func (r *Reconciler) Close() {
	r.mu.Lock()
	stop := r.autoListener
	r.autoListener = nil
	r.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (r *Reconciler) applyAccent(p models.Preferences) {
	if p.AccentColor == "" {
		return
	}
	r.doc.SetStyle(page.Root, AccentProperty, p.AccentColor)
}

func (r *Reconciler) applyCardStyle(p models.Preferences) {
	if !slices.Contains(models.CardStyles, p.CardStyle) {
		return
	}
	r.doc.SwapClass(page.Body, cardClasses, "card-"+string(p.CardStyle))
}

func (r *Reconciler) applyAnimation(p models.Preferences) {
	r.doc.ToggleClass(page.Body, ClassNoAnimate, !p.Animation)
}

func (r *Reconciler) applyLayout(p models.Preferences) {
	if !slices.Contains(models.Layouts, p.Layout) {
		return
	}
	r.doc.SwapClass(page.Body, layoutClasses, "layout-"+string(p.Layout))
	r.applyColumns(p)
}

func (r *Reconciler) applyColumns(p models.Preferences) {
	if p.Layout != models.LayoutGrid || p.TileLayout == nil {
		r.doc.SetColumns(0)
		return
	}
	r.doc.SetColumns(TileColumns(r.doc.Width(), *p.TileLayout))
}

func (r *Reconciler) applyBackground(p models.Preferences) {
	bg := p.Background
	if !slices.Contains(models.BackgroundTypes, bg.Type) {
		return
	}

	r.doc.SwapClass(page.Body, backgroundClasses, "bg-"+string(bg.Type))
	r.doc.RemoveStyle(page.Body, backgroundStyles...)

	switch bg.Type {
	case models.BackgroundColor:
		if color, ok := bg.Value.Text(); ok && color != "" {
			r.doc.SetStyle(page.Body, "background-color", color)
		}
	case models.BackgroundImage:
		if src, ok := bg.Value.Text(); ok && src != "" {
			r.doc.SetStyle(page.Body, "background-image", ImageCSS(src))
			r.doc.SetStyle(page.Body, "background-size", "cover")
			r.doc.SetStyle(page.Body, "background-position", "center")
			r.doc.SetStyle(page.Body, "background-attachment", "fixed")
			r.doc.SetStyle(page.Body, "background-repeat", "no-repeat")
		}
	case models.BackgroundGradient:
		if g, ok := bg.Value.Gradient(); ok {
			r.doc.SetStyle(page.Body, "background-image", GradientCSS(g))
		}
	}
}

func (r *Reconciler) applyBlur(p models.Preferences) {
	if p.Blur <= 0 {
		r.doc.RemoveStyle(page.Container, blurStyles...)
		return
	}

	value := fmt.Sprintf("blur(%dpx)", p.Blur)
	for _, property := range blurStyles {
		r.doc.SetStyle(page.Container, property, value)
	}
}

func (r *Reconciler) applyTheme(p models.Preferences) {
	r.themer.Apply(p.Theme)

	if p.Theme != models.ThemeAuto {
		return
	}

	r.mu.Lock()
	attach := r.autoListener == nil
	if attach {
		r.autoListener = r.system.OnChange(r.handleSystemChange)
	}
	r.mu.Unlock()

	if attach {
		r.logger.Debug("Attached OS listener for auto theme")
	}
}

// handleSystemChange only acts while the applied preferences still ask for
// the auto theme.
func (r *Reconciler) handleSystemChange(bool) {
	last, ok := r.Last()
	if !ok || last.Theme != models.ThemeAuto {
		return
	}

	r.pass.Lock()
	r.themer.Apply(models.ThemeAuto)
	r.pass.Unlock()

	r.publish()
}

func (r *Reconciler) publish() {
	r.bus.Publish(events.PageUpdated{Snapshot: r.doc.Snapshot()})
}

// TileColumns computes the live column count for a viewport width.
// Desktop uses tileLayout as-is, tablet clamps to 2, phone forces 1.
func TileColumns(width, tileLayout int) int {
	if tileLayout < 1 {
		return 0
	}

	switch page.BracketFor(width) {
	case page.Desktop:
		return tileLayout
	case page.Tablet:
		return min(2, tileLayout)
	default:
		return 1
	}
}

// GradientCSS builds the CSS gradient function for g
func GradientCSS(g models.Gradient) string {
	if g.Direction == models.RadialDirection {
		return fmt.Sprintf("radial-gradient(circle, %s, %s)", g.Color1, g.Color2)
	}
	if g.Direction == "" {
		return fmt.Sprintf("linear-gradient(%s, %s)", g.Color1, g.Color2)
	}
	return fmt.Sprintf("linear-gradient(%s, %s, %s)", g.Direction, g.Color1, g.Color2)
}

// ImageCSS wraps an image URL or data URL in a CSS url() value
func ImageCSS(src string) string {
	return `url("` + strings.ReplaceAll(src, `"`, `\"`) + `")`
}

func classSet[T ~string](prefix string, values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, prefix+string(v))
	}
	return out
}
