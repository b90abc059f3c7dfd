package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestDialogsHandlerUsesAppContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "wails")

	handler, ok := NewDialogsHandler(ctx).(*dialogsHandler)
	require.True(t, ok)
	assert.Equal(t, "wails", handler.ctx.Value(ctxKey{}))
}

func TestBookmarkFilesAreJSON(t *testing.T) {
	require.Len(t, jsonFilters, 1)
	assert.Equal(t, "*.json", jsonFilters[0].Pattern)
	assert.Contains(t, jsonFilters[0].DisplayName, "JSON")
	assert.Equal(t, "bookmarks.json", exportFilename)
}
