// Package appearance tracks the operating system's dark-mode setting as
// reported by the webview's prefers-color-scheme media query.
package appearance

import (
	"sort"
	"sync"
)

// Source is a boolean subscription: read it at boot, get told on change
type Source interface {
	PrefersDark() bool
	// OnChange registers fn and returns a function that removes it
	OnChange(fn func(dark bool)) func()
}

// Static is a Source whose value is pushed in by the frontend
type Static struct {
	mu        sync.RWMutex
	dark      bool
	listeners map[int]func(bool)
	nextID    int
}

// NewStatic creates a source with an initial value
func NewStatic(dark bool) *Static {
	return &Static{
		dark:      dark,
		listeners: make(map[int]func(bool)),
	}
}

func (s *Static) PrefersDark() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dark
}

func (s *Static) OnChange(fn func(dark bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Set updates the value and notifies listeners when it changed. Listeners
// run without the lock held, in registration order.
func (s *Static) Set(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(bool), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// Listeners returns the number of registered listeners
func (s *Static) Listeners() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}
