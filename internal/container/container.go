package container

import (
	"context"
	"log/slog"

	"startpage/internal/appearance"
	"startpage/internal/bootstrap"
	"startpage/internal/config"
	preferencesDomain "startpage/internal/domain/preferences"
	"startpage/internal/editor"
	"startpage/internal/events"
	"startpage/internal/favicon"
	"startpage/internal/page"
	"startpage/internal/reconcile"
	"startpage/internal/screensaver"
	"startpage/internal/services"
	"startpage/internal/simplemode"
	"startpage/internal/storage"
	"startpage/internal/theme"
)

// Container holds all dependencies for the application
type Container struct {
	config *config.Config
	store  storage.Store
	logger *slog.Logger

	bus    *events.Bus
	doc    *page.Document
	system *appearance.Static

	// Services
	preferencesRepo preferencesDomain.Repository
	bookmarks       *services.BookmarkService
	search          *services.SearchService
	favicons        *favicon.Prober

	// Page components
	theme       *theme.Coordinator
	reconciler  *reconcile.Reconciler
	editor      *editor.Session
	controls    *bootstrap.Controls
	boot        *bootstrap.Bootstrapper
	screensaver *screensaver.Screensaver
	simpleMode  *simplemode.SimpleMode

	unsubscribe []func()
}

// New creates a new dependency injection container. Nothing runs until
// Start is called.
func New(cfg *config.Config, store storage.Store, prefersDark bool) *Container {
	c := &Container{
		config: cfg,
		store:  store,
		logger: cfg.Logger,
		bus:    events.NewBus(cfg.Logger),
		doc:    page.NewDocument(),
		system: appearance.NewStatic(prefersDark),
	}

	c.initServices()
	return c
}

// initServices initializes all services with their dependencies
func (c *Container) initServices() {
	settings := c.config.Settings

	c.preferencesRepo = services.NewPreferencesService(c.store, c.logger)
	c.bookmarks = services.NewBookmarkService(c.store, c.logger)
	c.search = services.NewSearchService(c.store)
	c.favicons = favicon.NewProber(settings.ProbeTimeout, settings.ProbeConcurrency, c.logger)

	c.theme = theme.NewCoordinator(c.doc, c.preferencesRepo, c.system, c.bus, c.logger)
	c.reconciler = reconcile.New(c.doc, c.theme, c.system, c.bus, c.logger)
	c.editor = editor.NewSession(
		c.preferencesRepo,
		c.reconciler,
		editor.NewHTTPProber(settings.ProbeTimeout),
		c.bus,
		editor.Options{
			DebounceDelay:  settings.DebounceDelay,
			MaxUploadBytes: settings.MaxUploadBytes,
		},
		c.logger,
	)

	c.controls = bootstrap.NewControls(bootstrap.RequiredControls)
	c.boot = bootstrap.New(c.controls, c.initEditor, bootstrap.Options{
		RetryDelay:  settings.RetryDelay,
		MaxAttempts: settings.MaxAttempts,
	}, c.logger)

	c.screensaver = screensaver.New(c.doc, c.bus, screensaver.Options{
		IdleTimeout: settings.IdleTimeout,
		Theme:       c.theme.Current,
	}, c.logger)
	c.simpleMode = simplemode.New(c.store, c.doc, c.bus, simplemode.Options{Theme: c.theme.Current}, c.logger)
}

// Start resolves the theme, applies the stored preferences and starts the
// passive page components. A failed preferences load leaves the page on
// its defaults.
func (c *Container) Start() {
	c.theme.Start()

	if _, err := c.reconciler.Load(c.preferencesRepo); err != nil {
		c.logger.Error("Failed to apply stored preferences", "error", err)
	}
	c.unsubscribe = append(c.unsubscribe, c.reconciler.Subscribe())

	c.screensaver.Start()
	c.simpleMode.Start()

	c.logger.Debug("Page components started", "subscribers", c.bus.Len())
}

// Stop releases timers, listeners and subscriptions
func (c *Container) Stop() {
	c.screensaver.Stop()
	c.simpleMode.Stop()
	c.editor.Detach()
	c.reconciler.Close()
	c.theme.Stop()

	for _, unsubscribe := range c.unsubscribe {
		unsubscribe()
	}
	c.unsubscribe = nil
}

// StartBootstrap begins waiting for the preferences controls
func (c *Container) StartBootstrap(ctx context.Context) {
	c.boot.Start(ctx)
}

// initEditor syncs the session's theme picker with the active theme once
// the controls exist. It is safe to run more than once.
func (c *Container) initEditor() error {
	if _, err := c.preferencesRepo.GetPreferences(); err != nil {
		return err
	}
	c.editor.SyncTheme(c.theme.Current())
	return nil
}

// GetConfig returns the application configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetBus returns the notification bus
func (c *Container) GetBus() *events.Bus {
	return c.bus
}

// GetDocument returns the page state
func (c *Container) GetDocument() *page.Document {
	return c.doc
}

// GetAppearance returns the OS dark-mode source fed by the frontend
func (c *Container) GetAppearance() *appearance.Static {
	return c.system
}

// GetPreferencesRepository returns the preferences repository
func (c *Container) GetPreferencesRepository() preferencesDomain.Repository {
	return c.preferencesRepo
}

func (c *Container) GetBookmarkService() *services.BookmarkService {
	return c.bookmarks
}

func (c *Container) GetSearchService() *services.SearchService {
	return c.search
}

func (c *Container) GetFaviconProber() *favicon.Prober {
	return c.favicons
}

func (c *Container) GetTheme() *theme.Coordinator {
	return c.theme
}

func (c *Container) GetReconciler() *reconcile.Reconciler {
	return c.reconciler
}

func (c *Container) GetEditor() *editor.Session {
	return c.editor
}

func (c *Container) GetControls() *bootstrap.Controls {
	return c.controls
}

func (c *Container) GetBootstrapper() *bootstrap.Bootstrapper {
	return c.boot
}

func (c *Container) GetScreensaver() *screensaver.Screensaver {
	return c.screensaver
}

func (c *Container) GetSimpleMode() *simplemode.SimpleMode {
	return c.simpleMode
}
