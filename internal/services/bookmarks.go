package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"startpage/internal/common"
	"startpage/internal/favicon"
	"startpage/internal/models"
	"startpage/internal/storage"
)

// BookmarkService manages categories and bookmarks. Both lists are stored
// as JSON arrays under their own keys.
type BookmarkService struct {
	store  storage.Store
	logger *slog.Logger
	mu     sync.Mutex
}

// BookmarkUpdate carries the fields to change; nil fields are kept
type BookmarkUpdate struct {
	Name       *string `json:"name,omitempty"`
	URL        *string `json:"url,omitempty"`
	Icon       *string `json:"icon,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// ExportData is the export file format
type ExportData struct {
	Categories []models.Category `json:"categories"`
	Bookmarks  []models.Bookmark `json:"bookmarks"`
	ExportDate time.Time         `json:"exportDate"`
}

func NewBookmarkService(store storage.Store, logger *slog.Logger) *BookmarkService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookmarkService{store: store, logger: logger}
}

// DefaultCollection is written on first read
func DefaultCollection() models.Collection {
	return models.Collection{
		Categories: []models.Category{
			{ID: "1", Name: "常用工具"},
			{ID: "2", Name: "社交媒体"},
		},
		Bookmarks: []models.Bookmark{
			{ID: "1", Name: "百度", URL: "https://www.baidu.com", Icon: "https://www.baidu.com/favicon.ico", CategoryID: "1"},
			{ID: "2", Name: "谷歌", URL: "https://www.google.com", Icon: "https://www.google.com/favicon.ico", CategoryID: "1"},
			{ID: "3", Name: "微博", URL: "https://weibo.com", Icon: "https://weibo.com/favicon.ico", CategoryID: "2"},
			{ID: "4", Name: "B站", URL: "https://www.bilibili.com", Icon: "https://www.bilibili.com/favicon.ico", CategoryID: "2"},
		},
	}
}

func (s *BookmarkService) GetCategories() ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}
	return c.Categories, nil
}

func (s *BookmarkService) GetBookmarks() ([]models.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}
	return c.Bookmarks, nil
}

// GetCollection returns categories and bookmarks together
func (s *BookmarkService) GetCollection() (*models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *BookmarkService) AddCategory(name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is empty", common.ErrInvalidBookmark)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}

	category := models.Category{ID: common.GenerateUUID(), Name: name}
	c.Categories = append(c.Categories, category)

	if err := storage.SaveJSON(s.store, common.KeyCategories, c.Categories); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *BookmarkService) UpdateCategory(id, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is empty", common.ErrInvalidBookmark)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range c.Categories {
		if c.Categories[i].ID == id {
			c.Categories[i].Name = name
			if err := storage.SaveJSON(s.store, common.KeyCategories, c.Categories); err != nil {
				return nil, err
			}
			updated := c.Categories[i]
			return &updated, nil
		}
	}

	return nil, fmt.Errorf("%w: category %s", common.ErrNotFound, id)
}

// DeleteCategory removes the category and every bookmark in it
func (s *BookmarkService) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}

	categories := c.Categories[:0]
	for _, category := range c.Categories {
		if category.ID != id {
			categories = append(categories, category)
		}
	}

	bookmarks := c.Bookmarks[:0]
	removed := 0
	for _, bookmark := range c.Bookmarks {
		if bookmark.CategoryID == id {
			removed++
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	if err := s.replace(categories, bookmarks); err != nil {
		return err
	}

	s.logger.Info("Category deleted", "id", id, "bookmarks_removed", removed)
	return nil
}

// AddBookmark appends a bookmark. An empty icon defaults to the site's
// own favicon.
func (s *BookmarkService) AddBookmark(name, url, icon, categoryID string) (*models.Bookmark, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" || url == "" {
		return nil, fmt.Errorf("%w: name and url are required", common.ErrInvalidBookmark)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}

	if !hasCategory(c.Categories, categoryID) {
		return nil, fmt.Errorf("%w: category %s", common.ErrNotFound, categoryID)
	}

	if icon == "" {
		icon = favicon.Resolve(url).Site
	}

	bookmark := models.Bookmark{
		ID:         common.GenerateUUID(),
		Name:       name,
		URL:        url,
		Icon:       icon,
		CategoryID: categoryID,
	}
	c.Bookmarks = append(c.Bookmarks, bookmark)

	if err := storage.SaveJSON(s.store, common.KeyBookmarks, c.Bookmarks); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (s *BookmarkService) UpdateBookmark(id string, update BookmarkUpdate) (*models.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range c.Bookmarks {
		b := &c.Bookmarks[i]
		if b.ID != id {
			continue
		}

		if update.Name != nil {
			b.Name = *update.Name
		}
		if update.URL != nil {
			b.URL = *update.URL
		}
		if update.Icon != nil {
			b.Icon = *update.Icon
		}
		if update.CategoryID != nil {
			if !hasCategory(c.Categories, *update.CategoryID) {
				return nil, fmt.Errorf("%w: category %s", common.ErrNotFound, *update.CategoryID)
			}
			b.CategoryID = *update.CategoryID
		}

		if err := storage.SaveJSON(s.store, common.KeyBookmarks, c.Bookmarks); err != nil {
			return nil, err
		}
		updated := *b
		return &updated, nil
	}

	return nil, fmt.Errorf("%w: bookmark %s", common.ErrNotFound, id)
}

func (s *BookmarkService) DeleteBookmark(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}

	bookmarks := c.Bookmarks[:0]
	for _, bookmark := range c.Bookmarks {
		if bookmark.ID != id {
			bookmarks = append(bookmarks, bookmark)
		}
	}

	return storage.SaveJSON(s.store, common.KeyBookmarks, bookmarks)
}

// Export serialises every category and bookmark
func (s *BookmarkService) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}

	return json.Marshal(ExportData{
		Categories: c.Categories,
		Bookmarks:  c.Bookmarks,
		ExportDate: time.Now().UTC(),
	})
}

// Import replaces all categories and bookmarks with the exported data
func (s *BookmarkService) Import(data []byte) (*models.Collection, error) {
	var raw struct {
		Categories *[]models.Category `json:"categories"`
		Bookmarks  *[]models.Bookmark `json:"bookmarks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidImport, err)
	}
	if raw.Categories == nil || raw.Bookmarks == nil {
		return nil, fmt.Errorf("%w: categories and bookmarks are required", common.ErrInvalidImport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.replace(*raw.Categories, *raw.Bookmarks); err != nil {
		return nil, err
	}

	return &models.Collection{Categories: *raw.Categories, Bookmarks: *raw.Bookmarks}, nil
}

// load seeds the defaults when either list has never been written. A
// corrupt list is reported instead of being overwritten.
func (s *BookmarkService) load() (models.Collection, error) {
	var c models.Collection

	catErr := storage.LoadJSON(s.store, common.KeyCategories, &c.Categories)
	bmErr := storage.LoadJSON(s.store, common.KeyBookmarks, &c.Bookmarks)

	for _, err := range []error{catErr, bmErr} {
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return models.Collection{}, err
		}
	}

	if catErr != nil || bmErr != nil {
		s.logger.Info("Seeding default bookmarks")
		return s.seed()
	}

	if c.Categories == nil {
		c.Categories = []models.Category{}
	}
	if c.Bookmarks == nil {
		c.Bookmarks = []models.Bookmark{}
	}
	return c, nil
}

func (s *BookmarkService) seed() (models.Collection, error) {
	defaults := DefaultCollection()
	if err := s.replace(defaults.Categories, defaults.Bookmarks); err != nil {
		return models.Collection{}, err
	}
	return defaults, nil
}

// replace writes both lists as one unit. Bookmarks go first and are put
// back if the categories write fails, so no bookmark outlives its category.
func (s *BookmarkService) replace(categories []models.Category, bookmarks []models.Bookmark) error {
	previous, loadErr := s.store.Load(common.KeyBookmarks)

	if err := storage.SaveJSON(s.store, common.KeyBookmarks, bookmarks); err != nil {
		return err
	}

	if err := storage.SaveJSON(s.store, common.KeyCategories, categories); err != nil {
		var rollbackErr error
		switch {
		case loadErr == nil:
			rollbackErr = s.store.Save(common.KeyBookmarks, previous)
		case common.IsMissing(loadErr):
			rollbackErr = s.store.Delete(common.KeyBookmarks)
		}
		if rollbackErr != nil {
			s.logger.Error("Failed to restore bookmarks", "error", rollbackErr)
		}
		return err
	}

	return nil
}

func hasCategory(categories []models.Category, id string) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
