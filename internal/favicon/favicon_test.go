package favicon

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"startpage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.baidu.com/s?wd=go", "www.baidu.com"},
		{"weibo.com", "weibo.com"},
		{"HTTP://Example.com:8080/path", "Example.com"},
		{"file:///tmp/index.html", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Domain(tt.raw), tt.raw)
	}
}

func TestResolve(t *testing.T) {
	c := Resolve("www.bilibili.com")

	assert.Equal(t, "https://www.bilibili.com/favicon.ico", c.Site)
	assert.Equal(t, "https://www.baidu.com/favicon.ico?domain=www.bilibili.com", c.Baidu)
	assert.Equal(t, "https://www.bing.com/favicon.ico?domain=www.bilibili.com", c.Bing)
	assert.Equal(t, DefaultIcon, c.Default)
	assert.Equal(t, []string{c.Site, c.Baidu, c.Bing, DefaultIcon}, c.Ordered())

	assert.Equal(t, []string{DefaultIcon}, Resolve("").Ordered())
}

func testProber(server *httptest.Server) *Prober {
	p := NewProber(time.Second, 4, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.resolve = func(raw string) Candidates {
		name := strings.TrimPrefix(raw, "https://")
		return Candidates{
			Site:    server.URL + "/site/" + name,
			Baidu:   server.URL + "/baidu/" + name,
			Bing:    server.URL + "/bing/" + name,
			Default: DefaultIcon,
		}
	}
	return p
}

func TestProber_ResolveAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/good", "/bing/bing-only":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	bookmarks := []models.Bookmark{
		{ID: "1", URL: "https://good"},
		{ID: "2", URL: "https://bing-only"},
		{ID: "3", URL: "https://nothing"},
		{ID: "4", URL: "https://custom", Icon: "custom.png"},
	}

	icons, err := testProber(server).ResolveAll(context.Background(), bookmarks)
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/site/good", icons["1"])
	assert.Equal(t, server.URL+"/bing/bing-only", icons["2"])
	assert.Equal(t, DefaultIcon, icons["3"])
	assert.Equal(t, "custom.png", icons["4"])
}

func TestProber_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	icons, err := testProber(server).ResolveAll(ctx, []models.Bookmark{{ID: "1", URL: "https://good"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, DefaultIcon, icons["1"])
}

func TestProber_Empty(t *testing.T) {
	icons, err := NewProber(0, 0, nil).ResolveAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, icons)
}
