package services

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"startpage/internal/common"
	"startpage/internal/storage"
)

func TestBookmarkService_SeedsDefaults(t *testing.T) {
	store := setupTestStore(t)
	service := NewBookmarkService(store, testLogger())

	categories, err := service.GetCategories()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := DefaultCollection()
	if !reflect.DeepEqual(categories, want.Categories) {
		t.Errorf("Expected default categories %+v, got %+v", want.Categories, categories)
	}

	if _, err := store.Load(common.KeyBookmarks); err != nil {
		t.Errorf("Expected bookmarks to be seeded, got %v", err)
	}
}

func TestBookmarkService_CorruptListReported(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Save(common.KeyCategories, []byte("not json"))
	service := NewBookmarkService(store, testLogger())

	if _, err := service.GetCategories(); !errors.Is(err, common.ErrCorrupt) {
		t.Fatalf("Expected ErrCorrupt, got %v", err)
	}

	// Nothing was overwritten
	if got := storage.LoadString(store, common.KeyCategories); got != "not json" {
		t.Errorf("Expected corrupt value to be left alone, got %q", got)
	}
}

func TestBookmarkService_CategoryCRUD(t *testing.T) {
	service := NewBookmarkService(storage.NewMemoryStore(), testLogger())

	category, err := service.AddCategory("  阅读  ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if category.Name != "阅读" || category.ID == "" {
		t.Errorf("Unexpected category %+v", category)
	}

	if _, err := service.AddCategory("   "); !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("Expected ErrInvalidBookmark for blank name, got %v", err)
	}

	updated, err := service.UpdateCategory(category.ID, "Reading")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Name != "Reading" {
		t.Errorf("Expected renamed category, got %+v", updated)
	}

	if _, err := service.UpdateCategory("missing", "x"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBookmarkService_DeleteCategoryCascades(t *testing.T) {
	service := NewBookmarkService(storage.NewMemoryStore(), testLogger())

	if err := service.DeleteCategory("1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	bookmarks, err := service.GetBookmarks()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, b := range bookmarks {
		if b.CategoryID == "1" {
			t.Errorf("Bookmark %s survived deletion of its category", b.ID)
		}
	}
	if len(bookmarks) != 2 {
		t.Errorf("Expected 2 remaining bookmarks, got %d", len(bookmarks))
	}

	categories, _ := service.GetCategories()
	if len(categories) != 1 || categories[0].ID != "2" {
		t.Errorf("Expected only category 2 to remain, got %+v", categories)
	}
}

// categoryWriteFails rejects writes to the categories list only
type categoryWriteFails struct {
	storage.Store
}

func (s categoryWriteFails) Save(key string, value []byte) error {
	if key == common.KeyCategories {
		return errors.New("disk full")
	}
	return s.Store.Save(key, value)
}

func TestBookmarkService_DeleteCategoryFailureKeepsBookmarks(t *testing.T) {
	store := storage.NewMemoryStore()
	if _, err := NewBookmarkService(store, testLogger()).GetCollection(); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	service := NewBookmarkService(categoryWriteFails{store}, testLogger())
	if err := service.DeleteCategory("1"); err == nil {
		t.Fatal("Expected delete to fail")
	}

	collection, err := service.GetCollection()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(*collection, DefaultCollection()) {
		t.Errorf("Expected untouched collection, got %+v", *collection)
	}
}

func TestBookmarkService_BookmarkCRUD(t *testing.T) {
	service := NewBookmarkService(storage.NewMemoryStore(), testLogger())

	bookmark, err := service.AddBookmark("Go", "go.dev", "", "1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if bookmark.Icon != "https://go.dev/favicon.ico" {
		t.Errorf("Expected site favicon default, got %q", bookmark.Icon)
	}

	if _, err := service.AddBookmark("Go", "go.dev", "", "404"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown category, got %v", err)
	}
	if _, err := service.AddBookmark("", "go.dev", "", "1"); !errors.Is(err, common.ErrInvalidBookmark) {
		t.Errorf("Expected ErrInvalidBookmark, got %v", err)
	}

	name := "The Go Programming Language"
	category := "2"
	updated, err := service.UpdateBookmark(bookmark.ID, BookmarkUpdate{Name: &name, CategoryID: &category})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Name != name || updated.CategoryID != "2" || updated.URL != "go.dev" {
		t.Errorf("Unexpected update result %+v", updated)
	}

	if err := service.DeleteBookmark(bookmark.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	bookmarks, _ := service.GetBookmarks()
	if len(bookmarks) != len(DefaultCollection().Bookmarks) {
		t.Errorf("Expected bookmark to be removed, got %d bookmarks", len(bookmarks))
	}

	if _, err := service.UpdateBookmark("missing", BookmarkUpdate{}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBookmarkService_ExportImport(t *testing.T) {
	source := NewBookmarkService(storage.NewMemoryStore(), testLogger())
	if _, err := source.AddCategory("News"); err != nil {
		t.Fatalf("Failed to add category: %v", err)
	}

	data, err := source.Export()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var exported ExportData
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if exported.ExportDate.IsZero() {
		t.Error("Expected export date to be set")
	}

	target := NewBookmarkService(storage.NewMemoryStore(), testLogger())
	imported, err := target.Import(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(imported.Categories) != 3 {
		t.Errorf("Expected 3 categories, got %d", len(imported.Categories))
	}

	collection, _ := target.GetCollection()
	if !reflect.DeepEqual(collection.Categories, imported.Categories) {
		t.Errorf("Imported categories were not persisted")
	}
}

func TestBookmarkService_ImportRejectsBadShape(t *testing.T) {
	service := NewBookmarkService(storage.NewMemoryStore(), testLogger())

	for _, input := range []string{`{`, `{"categories":[]}`, `{"bookmarks":[]}`, `[]`} {
		if _, err := service.Import([]byte(input)); !errors.Is(err, common.ErrInvalidImport) {
			t.Errorf("Import(%s): expected ErrInvalidImport, got %v", input, err)
		}
	}
}
