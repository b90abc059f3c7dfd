package preferences

import "startpage/internal/models"

// Repository is the preferences store as seen by the theme coordinator,
// the reconciler and the editing session.
type Repository interface {
	GetPreferences() (*models.Preferences, error)
	UpdatePreferences(data map[string]any) (*models.Preferences, error)
	ResetPreferences() (*models.Preferences, error)
	ExplicitTheme() (models.Theme, bool)
}
