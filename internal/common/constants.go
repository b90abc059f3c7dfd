package common

import "time"

const (
	// Storage keys. The flat legacy keys are read independently of the
	// preferences blob and are never migrated into it.
	KeyPreferences           = "preferences"
	KeyTheme                 = "theme"
	KeyCategories            = "categories"
	KeyBookmarks             = "bookmarks"
	KeySimpleMode            = "simple_mode"
	KeyPreferredSearchEngine = "preferred_search_engine"

	// Frontend event names
	EventPageState         = "page:state"
	EventThemeChanged      = "theme:changed"
	EventPreferencesSaved  = "preferences:saved"
	EventPreferencesReset  = "preferences:reset"
	EventPreferencesUI     = "preferences:ui"
	EventSimpleModeChanged = "simple-mode:changed"
	EventToast             = "toast"

	// Timing defaults, overridable through settings.yaml
	DefaultRetryDelay     = 300 * time.Millisecond
	DefaultMaxAttempts    = 20
	DefaultDebounceDelay  = 500 * time.Millisecond
	DefaultResizeDebounce = 100 * time.Millisecond
	DefaultIdleTimeout    = 10 * time.Second
	DefaultProbeTimeout   = 5 * time.Second

	// Upload limit for background images (5 MiB)
	MaxBackgroundUploadBytes = 5 * 1024 * 1024

	MaxConcurrencyLimit = 8

	DefaultFilePermissions = 0755
)
