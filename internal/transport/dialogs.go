package transport

import (
	"context"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var jsonFilters = []wailsruntime.FileFilter{
	{
		DisplayName: "JSON Files (*.json)",
		Pattern:     "*.json",
	},
}

type dialogsHandler struct {
	ctx context.Context
}

func NewDialogsHandler(ctx context.Context) DialogHandler {
	return &dialogsHandler{
		ctx: ctx,
	}
}

func (h *dialogsHandler) Confirm(title, message string) (bool, error) {
	selection, err := wailsruntime.MessageDialog(h.ctx, wailsruntime.MessageDialogOptions{
		Type:          wailsruntime.QuestionDialog,
		Title:         title,
		Message:       message,
		Buttons:       []string{"Yes", "No"},
		DefaultButton: "No",
		CancelButton:  "No",
	})

	if err != nil {
		return false, err
	}

	return selection == "Yes", nil
}

func (h *dialogsHandler) OpenJSONDialog(title string) (string, error) {
	selection, err := wailsruntime.OpenFileDialog(h.ctx, wailsruntime.OpenDialogOptions{
		Title:   title,
		Filters: jsonFilters,
	})

	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) SaveJSONDialog(title, filename string) (string, error) {
	selection, err := wailsruntime.SaveFileDialog(h.ctx, wailsruntime.SaveDialogOptions{
		Title:           title,
		DefaultFilename: filename,
		Filters:         jsonFilters,
	})

	if err != nil {
		return "", err
	}

	return selection, nil
}

func (h *dialogsHandler) OpenURL(url string) {
	wailsruntime.BrowserOpenURL(h.ctx, url)
}
