package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"startpage/internal/common"

	"gopkg.in/yaml.v3"
)

const (
	appDirName       = "StartPage"
	databaseFileName = "database.sqlite3"
	settingsFileName = "settings.yaml"
)

// Config holds application configuration
type Config struct {
	AppDataDir   string
	DatabasePath string
	SettingsPath string
	Settings     Settings
	Logger       *slog.Logger
}

// Settings are the tunables read from settings.yaml. Zero values in the
// file fall back to the defaults.
type Settings struct {
	DatabasePath     string        `yaml:"database_path,omitempty"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
	MaxAttempts      int           `yaml:"max_attempts"`
	DebounceDelay    time.Duration `yaml:"debounce_delay"`
	ResizeDebounce   time.Duration `yaml:"resize_debounce"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	ProbeTimeout     time.Duration `yaml:"probe_timeout"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	ProbeConcurrency int           `yaml:"probe_concurrency"`
	LogLevel         string        `yaml:"log_level"`
}

// DefaultSettings returns the built-in settings
func DefaultSettings() Settings {
	return Settings{
		RetryDelay:       common.DefaultRetryDelay,
		MaxAttempts:      common.DefaultMaxAttempts,
		DebounceDelay:    common.DefaultDebounceDelay,
		ResizeDebounce:   common.DefaultResizeDebounce,
		IdleTimeout:      common.DefaultIdleTimeout,
		ProbeTimeout:     common.DefaultProbeTimeout,
		MaxUploadBytes:   common.MaxBackgroundUploadBytes,
		ProbeConcurrency: common.MaxConcurrencyLimit,
		LogLevel:         "info",
	}
}

// New creates a new configuration instance
func New() *Config {
	cfg := &Config{
		Logger:   slog.Default(),
		Settings: DefaultSettings(),
	}

	cfg.setupDirectories()

	settings, err := EnsureSettings(cfg.SettingsPath)
	if err != nil {
		cfg.Logger.Warn("Failed to load settings, using defaults", "path", cfg.SettingsPath, "error", err)
	} else {
		cfg.Settings = settings
	}

	if cfg.Settings.DatabasePath != "" {
		cfg.DatabasePath = cfg.Settings.DatabasePath
	}

	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Settings.LogLevel),
	}))

	return cfg
}

func (c *Config) setupDirectories() {
	c.AppDataDir = getAppDataDir()
	if err := os.MkdirAll(c.AppDataDir, common.DefaultFilePermissions); err != nil {
		c.Logger.Error("Failed to create app data directory", "path", c.AppDataDir, "error", err)
	}

	c.DatabasePath = filepath.Join(c.AppDataDir, databaseFileName)
	c.SettingsPath = filepath.Join(c.AppDataDir, settingsFileName)
}

// LoadSettings reads settings from path. A missing file yields defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parsing settings: %w", err)
	}

	settings.fillDefaults()
	return settings, nil
}

// EnsureSettings loads settings from path, writing the defaults there first
// when no file exists yet so users have something to edit.
func EnsureSettings(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveSettings(path, DefaultSettings()); err != nil {
			return DefaultSettings(), err
		}
	}
	return LoadSettings(path)
}

// SaveSettings writes settings to path
func SaveSettings(path string, settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), common.DefaultFilePermissions); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	return nil
}

func (s *Settings) fillDefaults() {
	d := DefaultSettings()
	if s.RetryDelay <= 0 {
		s.RetryDelay = d.RetryDelay
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = d.MaxAttempts
	}
	if s.DebounceDelay <= 0 {
		s.DebounceDelay = d.DebounceDelay
	}
	if s.ResizeDebounce <= 0 {
		s.ResizeDebounce = d.ResizeDebounce
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = d.IdleTimeout
	}
	if s.ProbeTimeout <= 0 {
		s.ProbeTimeout = d.ProbeTimeout
	}
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = d.MaxUploadBytes
	}
	if s.ProbeConcurrency <= 0 {
		s.ProbeConcurrency = d.ProbeConcurrency
	}
	if s.LogLevel == "" {
		s.LogLevel = d.LogLevel
	}
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func getAppDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(dir, appDirName)
}
