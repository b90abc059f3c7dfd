package application

import (
	"context"

	"startpage/internal/config"
	"startpage/internal/container"
	"startpage/internal/storage"
	"startpage/internal/transport"
)

type App struct {
	ctx       context.Context
	container *container.Container
	wailsApp  *transport.WailsApp
	config    *config.Config
	store     storage.Store
}

func NewApp() *App {
	return &App{
		wailsApp: transport.NewWailsApp(nil),
	}
}

// Bindings returns the object whose methods the frontend calls. It exists
// before startup so it can be handed to the Wails runner.
func (a *App) Bindings() *transport.WailsApp {
	return a.wailsApp
}

func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx

	// Initialize configuration
	cfg := config.New()
	a.config = cfg

	a.store = openStore(cfg)

	// Initialize dependency container
	a.container = container.New(cfg, a.store, false)

	// Forward bus messages before anything publishes
	a.wailsApp.Attach(ctx, a.container, nil)
	a.container.Start()

	cfg.Logger.Info("Wails app initialized successfully")
	cfg.Logger.Info("Application configuration",
		"app_data_dir", cfg.AppDataDir,
		"database_path", cfg.DatabasePath,
		"settings_path", cfg.SettingsPath)
}

func (a *App) OnShutdown(ctx context.Context) {
	if a.container == nil {
		return
	}

	a.wailsApp.Detach()
	a.container.Stop()

	if closer, ok := a.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.config.Logger.Error("Failed to close database", "error", err)
		}
	}
}

// openStore opens the SQLite store. The page stays usable for the session
// on an in-memory store when the database cannot be opened.
func openStore(cfg *config.Config) storage.Store {
	store, err := storage.NewSQLStore(cfg.DatabasePath)
	if err != nil {
		cfg.Logger.Error("Failed to initialize database, preferences will not persist",
			"path", cfg.DatabasePath,
			"error", err)
		return storage.NewMemoryStore()
	}
	return store
}
