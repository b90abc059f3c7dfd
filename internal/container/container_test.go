package container

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"startpage/internal/bootstrap"
	"startpage/internal/config"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
	"startpage/internal/reconcile"
	"startpage/internal/storage"
	"startpage/internal/theme"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	settings := config.DefaultSettings()
	settings.RetryDelay = time.Millisecond
	settings.MaxAttempts = 3
	settings.IdleTimeout = time.Hour

	return &config.Config{
		Settings: settings,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestStartAppliesStoredPreferences(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, storage.SaveJSON(store, "preferences", map[string]any{
		"theme":       "dark",
		"accentColor": "#ff0000",
	}))

	c := New(testConfig(), store, false)
	c.Start()
	defer c.Stop()

	doc := c.GetDocument()
	assert.True(t, doc.HasClass(page.Body, theme.ClassDark))
	assert.Equal(t, "#ff0000", doc.Style(page.Root, reconcile.AccentProperty))
	assert.True(t, c.GetTheme().IsDark())
}

func TestStartFollowsSystemWithoutStoredTheme(t *testing.T) {
	c := New(testConfig(), storage.NewMemoryStore(), true)
	c.Start()
	defer c.Stop()

	assert.True(t, c.GetTheme().IsDark())

	c.GetAppearance().Set(false)
	assert.False(t, c.GetTheme().IsDark())
	assert.True(t, c.GetDocument().HasClass(page.Body, theme.ClassLight))
}

func TestStopDetachesSubscribers(t *testing.T) {
	c := New(testConfig(), storage.NewMemoryStore(), false)
	c.Start()
	require.Positive(t, c.GetBus().Len())

	c.Stop()
	assert.Zero(t, c.GetAppearance().Listeners())
}

func TestBootstrapWaitsForControls(t *testing.T) {
	c := New(testConfig(), storage.NewMemoryStore(), false)
	c.Start()
	defer c.Stop()

	var themes []string
	unsubscribe := c.GetBus().Subscribe("test", events.Funcs{
		ThemeChanged: func(m events.ThemeChanged) { themes = append(themes, string(m.Theme)) },
	})
	defer unsubscribe()

	c.GetControls().Register(bootstrap.RequiredControls...)
	require.NoError(t, c.GetBootstrapper().Wait(context.Background()))
	assert.Empty(t, themes)
	assert.Equal(t, models.ThemeLight, c.GetEditor().ThemePicker())
}

func TestStartStylesOverlaysForStoredTheme(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, storage.SaveJSON(store, "preferences", map[string]any{"theme": "dark"}))

	c := New(testConfig(), store, false)
	c.Start()
	defer c.Stop()

	doc := c.GetDocument()
	assert.Equal(t, models.ThemeDark, c.GetTheme().Current())
	assert.True(t, doc.HasClass(page.Screensaver, "screensaver-dark"))
	assert.Equal(t, []string{"overlay-dark"}, doc.Classes(page.SimpleOverlay))
}

func TestAutoThemeFollowsSystemOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, storage.SaveJSON(store, "preferences", map[string]any{"theme": "auto"}))

	c := New(testConfig(), store, false)
	c.Start()
	defer c.Stop()

	var themes []models.Theme
	unsubscribe := c.GetBus().Subscribe("test", events.Funcs{
		ThemeChanged: func(m events.ThemeChanged) { themes = append(themes, m.Theme) },
	})
	defer unsubscribe()

	c.GetAppearance().Set(true)
	assert.Equal(t, []models.Theme{models.ThemeDark}, themes)
	assert.True(t, c.GetDocument().HasClass(page.Body, theme.ClassDark))
}

func TestBootstrapFailsWhenControlsMissing(t *testing.T) {
	c := New(testConfig(), storage.NewMemoryStore(), false)

	err := c.GetBootstrapper().Wait(context.Background())
	var notReady *bootstrap.NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, 3, notReady.Attempts)
}

func TestServicesShareStore(t *testing.T) {
	store := storage.NewMemoryStore()
	c := New(testConfig(), store, false)

	collection, err := c.GetBookmarkService().GetCollection()
	require.NoError(t, err)
	assert.NotEmpty(t, collection.Categories)

	require.NoError(t, c.GetSearchService().SetEngine("google"))
	assert.Equal(t, "google", storage.LoadString(store, "preferred_search_engine"))
}
