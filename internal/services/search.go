package services

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"startpage/internal/common"
	"startpage/internal/storage"
)

// SearchEngine is one entry of the engine picker
type SearchEngine struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DefaultSearchEngine is used until the user picks another
const DefaultSearchEngine = "bing"

var searchEngines = map[string]SearchEngine{
	"baidu":  {Key: "baidu", Name: "百度", URL: "https://www.baidu.com/s?wd="},
	"google": {Key: "google", Name: "Google", URL: "https://www.google.com/search?q="},
	"bing":   {Key: "bing", Name: "必应", URL: "https://www.bing.com/search?q="},
	"sogou":  {Key: "sogou", Name: "神马搜索", URL: "https://m.sm.cn/s?q="},
}

// SearchService remembers the preferred engine and builds search URLs
type SearchService struct {
	store storage.Store
}

func NewSearchService(store storage.Store) *SearchService {
	return &SearchService{store: store}
}

// Engines lists the supported engines sorted by key
func (s *SearchService) Engines() []SearchEngine {
	out := make([]SearchEngine, 0, len(searchEngines))
	for _, engine := range searchEngines {
		out = append(out, engine)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Current returns the stored engine, or the default when none or an
// unknown one is stored
func (s *SearchService) Current() SearchEngine {
	key := storage.LoadString(s.store, common.KeyPreferredSearchEngine)
	if engine, ok := searchEngines[key]; ok {
		return engine
	}
	return searchEngines[DefaultSearchEngine]
}

func (s *SearchService) SetEngine(key string) error {
	if _, ok := searchEngines[key]; !ok {
		return fmt.Errorf("%w: %s", common.ErrUnknownEngine, key)
	}
	return s.store.Save(common.KeyPreferredSearchEngine, []byte(key))
}

// URL builds the search URL for query with the current engine. It returns
// "" for a blank query.
func (s *SearchService) URL(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	return s.Current().URL + escapeComponent(query)
}

// escapeComponent matches encodeURIComponent for spaces
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
