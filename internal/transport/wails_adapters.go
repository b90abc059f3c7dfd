package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"startpage/internal/common"
	"startpage/internal/container"
	"startpage/internal/events"
	"startpage/internal/models"
	"startpage/internal/page"
	"startpage/internal/services"

	"github.com/bep/debounce"
	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const exportFilename = "bookmarks.json"

// WailsApp is the surface bound to the frontend
type WailsApp struct {
	ctx            context.Context
	container      *container.Container
	emit           Emitter
	dialogsHandler DialogHandler
	resize         func(func())
	detach         func()
	bootOnce       sync.Once
}

// NewWailsApp creates an unattached app. emit defaults to the Wails
// runtime; tests pass a recorder.
func NewWailsApp(emit Emitter) *WailsApp {
	if emit == nil {
		emit = wailsruntime.EventsEmit
	}
	return &WailsApp{emit: emit}
}

// Attach connects the bindings to a built container and starts forwarding
// bus messages. dialogs may be nil to use the native dialogs.
func (a *WailsApp) Attach(ctx context.Context, c *container.Container, dialogs DialogHandler) {
	if dialogs == nil {
		dialogs = NewDialogsHandler(ctx)
	}

	a.ctx = ctx
	a.container = c
	a.dialogsHandler = dialogs
	a.resize = debounce.New(c.GetConfig().Settings.ResizeDebounce)
	a.detach = NewBridge(ctx, a.emit, c.GetDocument()).Attach(c.GetBus())
}

// Detach stops forwarding bus messages
func (a *WailsApp) Detach() {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
}

// Page

func (a *WailsApp) GetPageState() page.Snapshot {
	return a.container.GetDocument().Snapshot()
}

// Resize reports the viewport width. Bursts are collapsed into one pass.
func (a *WailsApp) Resize(width int) {
	a.resize(func() {
		a.container.GetReconciler().Resize(width)
	})
}

// SetSystemDarkMode feeds the webview's prefers-color-scheme value
func (a *WailsApp) SetSystemDarkMode(dark bool) {
	a.container.GetAppearance().Set(dark)
}

// Theme

func (a *WailsApp) ToggleTheme() (models.Theme, error) {
	coordinator := a.container.GetTheme()
	err := coordinator.ToggleTheme()
	return coordinator.Current(), err
}

func (a *WailsApp) GetTheme() models.Theme {
	return a.container.GetTheme().Current()
}

// Preferences

func (a *WailsApp) GetPreferences() (*models.Preferences, error) {
	return a.container.GetPreferencesRepository().GetPreferences()
}

// UpdatePreferences merges data into the stored preferences and applies
// the result to the page
func (a *WailsApp) UpdatePreferences(data map[string]interface{}) (*models.Preferences, error) {
	prefs, err := a.container.GetPreferencesRepository().UpdatePreferences(data)
	if err != nil {
		return nil, err
	}

	a.container.GetBus().Publish(events.PreferencesSaved{Prefs: prefs.Clone()})
	return prefs, nil
}

// RegisterControls records the preference controls the frontend rendered.
// The first call starts waiting for the rest; preferences:ui is emitted
// once with the outcome.
func (a *WailsApp) RegisterControls(ids []string) {
	a.container.GetControls().Register(ids...)

	a.bootOnce.Do(func() {
		a.container.StartBootstrap(a.ctx)
		go a.reportUIState()
	})
}

func (a *WailsApp) reportUIState() {
	boot := a.container.GetBootstrapper()
	<-boot.Done()

	err := boot.Err()
	if errors.Is(err, context.Canceled) {
		return
	}

	state := UIState{Ready: err == nil}
	if err != nil {
		state.Error = err.Error()
		state.Missing = a.container.GetControls().Missing()
	}
	a.emit(a.ctx, common.EventPreferencesUI, state)
}

// Preference editing

func (a *WailsApp) OpenPreferences() (*models.Preferences, error) {
	return a.container.GetEditor().Open()
}

// GetThemePicker returns the theme the preferences picker should show
func (a *WailsApp) GetThemePicker() models.Theme {
	return a.container.GetEditor().ThemePicker()
}

func (a *WailsApp) GetDraft() (models.Preferences, error) {
	return a.container.GetEditor().Draft()
}

func (a *WailsApp) SetPreference(field string, value interface{}) error {
	return a.container.GetEditor().Set(field, value)
}

func (a *WailsApp) SetPreferenceDebounced(field string, value interface{}) error {
	return a.container.GetEditor().SetDebounced(field, value)
}

func (a *WailsApp) SetTheme(theme models.Theme) error {
	return a.container.GetEditor().SetTheme(theme)
}

func (a *WailsApp) SetAccentColor(color string) error {
	return a.container.GetEditor().SetAccentColor(color)
}

func (a *WailsApp) SetCardStyle(style models.CardStyle) error {
	return a.container.GetEditor().SetCardStyle(style)
}

func (a *WailsApp) SetAnimation(on bool) error {
	return a.container.GetEditor().SetAnimation(on)
}

func (a *WailsApp) SetLayout(layout models.Layout) error {
	return a.container.GetEditor().SetLayout(layout)
}

func (a *WailsApp) SetTileLayout(columns int) error {
	return a.container.GetEditor().SetTileLayout(columns)
}

func (a *WailsApp) SetBlur(px int) error {
	return a.container.GetEditor().SetBlur(px)
}

func (a *WailsApp) SetBackgroundType(kind models.BackgroundType) error {
	return a.container.GetEditor().SetBackgroundType(kind)
}

func (a *WailsApp) SetBackgroundColor(color string) error {
	return a.container.GetEditor().SetBackgroundColor(color)
}

func (a *WailsApp) SetGradient(gradient models.Gradient) error {
	return a.container.GetEditor().SetGradient(gradient)
}

func (a *WailsApp) SetBackgroundImageURL(src string) error {
	return a.container.GetEditor().SetBackgroundImageURL(a.ctx, src)
}

func (a *WailsApp) SetBackgroundUpload(upload UploadRequest) error {
	return a.container.GetEditor().SetBackgroundUpload(upload.Name, upload.ContentType, upload.Data)
}

func (a *WailsApp) SavePreferences() (*models.Preferences, error) {
	return a.container.GetEditor().Save()
}

func (a *WailsApp) CancelPreferences() error {
	return a.container.GetEditor().Cancel()
}

// ResetPreferences asks before restoring the defaults. It returns false
// when the user declined.
func (a *WailsApp) ResetPreferences() (bool, error) {
	var dialogErr error
	reset, err := a.container.GetEditor().Reset(func() bool {
		ok, err := a.dialogsHandler.Confirm("Reset preferences", "Restore every preference to its default?")
		dialogErr = err
		return ok
	})
	if dialogErr != nil {
		return false, dialogErr
	}
	return reset, err
}

// Screensaver and simple mode

func (a *WailsApp) ReportActivity() {
	a.container.GetScreensaver().Activity()
}

func (a *WailsApp) ShowScreensaver() {
	a.container.GetScreensaver().Show()
}

func (a *WailsApp) HideScreensaver() {
	a.container.GetScreensaver().Hide()
}

func (a *WailsApp) ToggleSimpleMode() (bool, error) {
	return a.container.GetSimpleMode().Toggle()
}

func (a *WailsApp) IsSimpleMode() bool {
	return a.container.GetSimpleMode().IsOn()
}

// Bookmarks

func (a *WailsApp) GetBookmarks() (*models.Collection, error) {
	return a.container.GetBookmarkService().GetCollection()
}

func (a *WailsApp) AddCategory(name string) (*models.Category, error) {
	return a.container.GetBookmarkService().AddCategory(name)
}

func (a *WailsApp) UpdateCategory(id, name string) (*models.Category, error) {
	return a.container.GetBookmarkService().UpdateCategory(id, name)
}

func (a *WailsApp) DeleteCategory(id string) error {
	return a.container.GetBookmarkService().DeleteCategory(id)
}

func (a *WailsApp) AddBookmark(request BookmarkRequest) (*models.Bookmark, error) {
	return a.container.GetBookmarkService().AddBookmark(request.Name, request.URL, request.Icon, request.CategoryID)
}

func (a *WailsApp) UpdateBookmark(id string, patch BookmarkPatch) (*models.Bookmark, error) {
	return a.container.GetBookmarkService().UpdateBookmark(id, patch.toUpdate())
}

func (a *WailsApp) DeleteBookmark(id string) error {
	return a.container.GetBookmarkService().DeleteBookmark(id)
}

// ExportBookmarks writes the collection to a user-chosen file and returns
// its path, or "" when the dialog was dismissed
func (a *WailsApp) ExportBookmarks() (string, error) {
	path, err := a.dialogsHandler.SaveJSONDialog("Export bookmarks", exportFilename)
	if err != nil || path == "" {
		return "", err
	}

	data, err := a.container.GetBookmarkService().Export()
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	a.container.GetBus().Publish(events.Toast{Message: "Bookmarks exported", Level: events.ToastSuccess})
	return path, nil
}

// ImportBookmarks replaces the collection with a user-chosen export. A
// dismissed dialog returns nil without error.
func (a *WailsApp) ImportBookmarks() (*models.Collection, error) {
	path, err := a.dialogsHandler.OpenJSONDialog("Import bookmarks")
	if err != nil || path == "" {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	collection, err := a.container.GetBookmarkService().Import(data)
	if err != nil {
		a.container.GetBus().Publish(events.Toast{Message: "Import failed: invalid file", Level: events.ToastError})
		return nil, err
	}

	a.container.GetBus().Publish(events.Toast{Message: "Bookmarks imported", Level: events.ToastSuccess})
	return collection, nil
}

// ResolveFavicons probes an icon for every bookmark without one
func (a *WailsApp) ResolveFavicons() (map[string]string, error) {
	bookmarks, err := a.container.GetBookmarkService().GetBookmarks()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(a.ctx, time.Minute)
	defer cancel()

	return a.container.GetFaviconProber().ResolveAll(ctx, bookmarks)
}

// Search

func (a *WailsApp) GetSearchEngines() []services.SearchEngine {
	return a.container.GetSearchService().Engines()
}

func (a *WailsApp) GetSearchEngine() services.SearchEngine {
	return a.container.GetSearchService().Current()
}

func (a *WailsApp) SetSearchEngine(key string) error {
	return a.container.GetSearchService().SetEngine(key)
}

// Search opens the results for query in the default browser
func (a *WailsApp) Search(query string) string {
	url := a.container.GetSearchService().URL(query)
	if url != "" {
		a.dialogsHandler.OpenURL(url)
	}
	return url
}
