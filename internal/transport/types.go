package transport

import (
	"context"

	"startpage/internal/services"
)

// Transport layer types for Wails API

// Emitter sends a named event to the frontend
type Emitter func(ctx context.Context, name string, data ...interface{})

type BookmarkRequest struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	Icon       string `json:"icon"`
	CategoryID string `json:"categoryId"`
}

type BookmarkPatch struct {
	Name       *string `json:"name,omitempty"`
	URL        *string `json:"url,omitempty"`
	Icon       *string `json:"icon,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

func (p BookmarkPatch) toUpdate() services.BookmarkUpdate {
	return services.BookmarkUpdate{
		Name:       p.Name,
		URL:        p.URL,
		Icon:       p.Icon,
		CategoryID: p.CategoryID,
	}
}

// UploadRequest is a background image picked from the user's disk
type UploadRequest struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// UIState is sent once the preference controls are wired or given up on
type UIState struct {
	Ready   bool     `json:"ready"`
	Missing []string `json:"missing,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Dialog interface for system dialogs
type DialogHandler interface {
	Confirm(title, message string) (bool, error)
	OpenJSONDialog(title string) (string, error)
	SaveJSONDialog(title, filename string) (string, error)
	OpenURL(url string)
}
