package models

// Category groups bookmarks on the page
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Bookmark is one tile on the page
type Bookmark struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Icon       string `json:"icon,omitempty"`
	CategoryID string `json:"categoryId"`
}

// Collection is the exported form of all categories and bookmarks
type Collection struct {
	Categories []Category `json:"categories"`
	Bookmarks  []Bookmark `json:"bookmarks"`
}
