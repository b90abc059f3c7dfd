package transport

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"startpage/internal/bootstrap"
	"startpage/internal/common"
	"startpage/internal/config"
	"startpage/internal/container"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
	"startpage/internal/reconcile"
	"startpage/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	name string
	data []interface{}
}

type recorder struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recorder) emit(_ context.Context, name string, data ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{name: name, data: data})
}

func (r *recorder) named(name string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []emitted
	for _, e := range r.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) last(name string) (emitted, bool) {
	all := r.named(name)
	if len(all) == 0 {
		return emitted{}, false
	}
	return all[len(all)-1], true
}

type fakeDialogs struct {
	confirm  bool
	openPath string
	savePath string
	opened   []string
}

func (d *fakeDialogs) Confirm(string, string) (bool, error)          { return d.confirm, nil }
func (d *fakeDialogs) OpenJSONDialog(string) (string, error)         { return d.openPath, nil }
func (d *fakeDialogs) SaveJSONDialog(string, string) (string, error) { return d.savePath, nil }
func (d *fakeDialogs) OpenURL(url string)                            { d.opened = append(d.opened, url) }

type fixture struct {
	app       *WailsApp
	container *container.Container
	store     *storage.MemoryStore
	events    *recorder
	dialogs   *fakeDialogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	settings := config.DefaultSettings()
	settings.RetryDelay = time.Millisecond
	settings.MaxAttempts = 3
	settings.ResizeDebounce = time.Millisecond
	settings.IdleTimeout = time.Hour

	cfg := &config.Config{
		Settings: settings,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	store := storage.NewMemoryStore()
	c := container.New(cfg, store, false)
	c.Start()

	rec := &recorder{}
	dialogs := &fakeDialogs{}
	app := NewWailsApp(rec.emit)
	app.Attach(context.Background(), c, dialogs)

	t.Cleanup(func() {
		app.Detach()
		c.Stop()
	})

	return &fixture{app: app, container: c, store: store, events: rec, dialogs: dialogs}
}

func TestToggleThemeEmitsThemeAndPage(t *testing.T) {
	f := newFixture(t)

	theme, err := f.app.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)

	changed, ok := f.events.last(common.EventThemeChanged)
	require.True(t, ok)
	assert.Equal(t, models.ThemeDark, changed.data[0])

	state, ok := f.events.last(common.EventPageState)
	require.True(t, ok)
	snapshot := state.data[0].(page.Snapshot)
	assert.Contains(t, snapshot.Elements[page.Body].Classes, "dark-mode")
}

func TestThemePickerFollowsToggle(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.ToggleTheme()
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, f.app.GetThemePicker())
}

func TestUpdatePreferencesAppliesToPage(t *testing.T) {
	f := newFixture(t)

	prefs, err := f.app.UpdatePreferences(map[string]interface{}{"accentColor": "#123456"})
	require.NoError(t, err)
	assert.Equal(t, "#123456", prefs.AccentColor)

	_, ok := f.events.last(common.EventPreferencesSaved)
	assert.True(t, ok)
	assert.Equal(t, "#123456", f.container.GetDocument().Style(page.Root, reconcile.AccentProperty))
}

func TestUpdatePreferencesRejectsInvalid(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.UpdatePreferences(map[string]interface{}{"layout": "diagonal"})
	require.Error(t, err)
	assert.Empty(t, f.events.named(common.EventPreferencesSaved))
}

func TestRegisterControlsReportsReady(t *testing.T) {
	f := newFixture(t)

	f.app.RegisterControls(bootstrap.RequiredControls[:5])
	f.app.RegisterControls(bootstrap.RequiredControls[5:])

	require.Eventually(t, func() bool {
		return len(f.events.named(common.EventPreferencesUI)) == 1
	}, time.Second, time.Millisecond)

	ui, _ := f.events.last(common.EventPreferencesUI)
	assert.Equal(t, UIState{Ready: true}, ui.data[0])
}

func TestRegisterControlsReportsMissing(t *testing.T) {
	f := newFixture(t)

	f.app.RegisterControls([]string{"preferences-btn"})

	require.Eventually(t, func() bool {
		return len(f.events.named(common.EventPreferencesUI)) == 1
	}, time.Second, time.Millisecond)

	ui, _ := f.events.last(common.EventPreferencesUI)
	state := ui.data[0].(UIState)
	assert.False(t, state.Ready)
	assert.NotEmpty(t, state.Error)
	assert.NotContains(t, state.Missing, "preferences-btn")
	assert.Contains(t, state.Missing, "blur-range")
}

func TestEditingSessionRoundTrip(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.OpenPreferences()
	require.NoError(t, err)
	require.NoError(t, f.app.SetCardStyle(models.CardRounded))

	draft, err := f.app.GetDraft()
	require.NoError(t, err)
	assert.Equal(t, models.CardRounded, draft.CardStyle)

	saved, err := f.app.SavePreferences()
	require.NoError(t, err)
	assert.Equal(t, models.CardRounded, saved.CardStyle)

	toast, ok := f.events.last(common.EventToast)
	require.True(t, ok)
	assert.Equal(t, events.ToastSuccess, toast.data[0].(events.Toast).Level)
}

func TestResetPreferencesAsksFirst(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.UpdatePreferences(map[string]interface{}{"blur": 8})
	require.NoError(t, err)

	reset, err := f.app.ResetPreferences()
	require.NoError(t, err)
	assert.False(t, reset)
	assert.Empty(t, f.events.named(common.EventPreferencesReset))

	f.dialogs.confirm = true
	reset, err = f.app.ResetPreferences()
	require.NoError(t, err)
	assert.True(t, reset)

	prefs, err := f.app.GetPreferences()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences().Blur, prefs.Blur)
	assert.Len(t, f.events.named(common.EventPreferencesReset), 1)
}

func TestResizeIsDebounced(t *testing.T) {
	f := newFixture(t)

	f.app.Resize(400)
	f.app.Resize(500)

	require.Eventually(t, func() bool {
		return f.app.GetPageState().Width == 500
	}, time.Second, time.Millisecond)
}

func TestSystemDarkModeFollowedWithoutExplicitTheme(t *testing.T) {
	f := newFixture(t)

	f.app.SetSystemDarkMode(true)
	assert.Equal(t, models.ThemeDark, f.app.GetTheme())
}

func TestSimpleModeToggleEmits(t *testing.T) {
	f := newFixture(t)

	on, err := f.app.ToggleSimpleMode()
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, f.app.IsSimpleMode())

	changed, ok := f.events.last(common.EventSimpleModeChanged)
	require.True(t, ok)
	assert.Equal(t, true, changed.data[0])

	_, err = f.app.ToggleSimpleMode()
	require.NoError(t, err)
}

func TestExportThenImportBookmarks(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "export.json")

	category, err := f.app.AddCategory("Tools")
	require.NoError(t, err)
	_, err = f.app.AddBookmark(BookmarkRequest{Name: "Go", URL: "https://go.dev", CategoryID: category.ID})
	require.NoError(t, err)

	f.dialogs.savePath = path
	written, err := f.app.ExportBookmarks()
	require.NoError(t, err)
	assert.Equal(t, path, written)

	require.NoError(t, f.app.DeleteCategory(category.ID))

	f.dialogs.openPath = path
	collection, err := f.app.ImportBookmarks()
	require.NoError(t, err)
	assert.Contains(t, collection.Categories, *category)
}

func TestImportRejectsInvalidFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"categories": []}`), 0o644))

	f.dialogs.openPath = path
	_, err := f.app.ImportBookmarks()
	require.ErrorIs(t, err, common.ErrInvalidImport)

	toast, ok := f.events.last(common.EventToast)
	require.True(t, ok)
	assert.Equal(t, events.ToastError, toast.data[0].(events.Toast).Level)
}

func TestDismissedDialogsDoNothing(t *testing.T) {
	f := newFixture(t)

	path, err := f.app.ExportBookmarks()
	require.NoError(t, err)
	assert.Empty(t, path)

	collection, err := f.app.ImportBookmarks()
	require.NoError(t, err)
	assert.Nil(t, collection)
}

func TestUpdateBookmarkPatch(t *testing.T) {
	f := newFixture(t)

	collection, err := f.app.GetBookmarks()
	require.NoError(t, err)
	require.NotEmpty(t, collection.Bookmarks)

	name := "Renamed"
	updated, err := f.app.UpdateBookmark(collection.Bookmarks[0].ID, BookmarkPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, collection.Bookmarks[0].URL, updated.URL)
}

func TestSearchOpensURL(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.app.SetSearchEngine("google"))
	assert.Equal(t, "google", f.app.GetSearchEngine().Key)

	url := f.app.Search("go lang")
	assert.Equal(t, "https://www.google.com/search?q=go%20lang", url)
	assert.Equal(t, []string{url}, f.dialogs.opened)

	assert.Empty(t, f.app.Search("   "))
	assert.Len(t, f.dialogs.opened, 1)
}

func TestDetachStopsForwarding(t *testing.T) {
	f := newFixture(t)
	f.app.Detach()

	f.container.GetBus().Publish(events.Toast{Message: "hidden"})
	assert.Empty(t, f.events.named(common.EventToast))
}
