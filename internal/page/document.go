// Package page models the parts of the start page that Go owns: class sets,
// inline styles and text of a fixed set of elements, plus the viewport
// width and live tile column count. The frontend mirrors snapshots of it
// onto the real DOM.
package page

import (
	"reflect"
	"sort"
	"sync"
)

// ElementID names an element the backend manipulates
type ElementID string

const (
	Root          ElementID = "root"
	Body          ElementID = "body"
	Container     ElementID = "container"
	ThemeToggle   ElementID = "theme-toggle"
	SimpleOverlay ElementID = "simple-mode-overlay"
	Screensaver   ElementID = "screensaver"
	Clock         ElementID = "screensaver-clock"
	Date          ElementID = "screensaver-date"
	SimpleClock   ElementID = "simple-mode-clock"
	SimpleDate    ElementID = "simple-mode-date"
)

// Elements lists every element in a Document
var Elements = []ElementID{
	Root, Body, Container, ThemeToggle,
	SimpleOverlay, SimpleClock, SimpleDate,
	Screensaver, Clock, Date,
}

// DefaultWidth is assumed until the frontend reports its viewport
const DefaultWidth = 1280

type element struct {
	classes map[string]struct{}
	styles  map[string]string
	text    string
}

func newElement() *element {
	return &element{
		classes: make(map[string]struct{}),
		styles:  make(map[string]string),
	}
}

// Document is safe for concurrent use. Class operations are set
// operations, so repeating them never accumulates duplicates.
type Document struct {
	mu       sync.RWMutex
	elements map[ElementID]*element
	width    int
	columns  int
}

// NewDocument creates a document with every element present and empty
func NewDocument() *Document {
	d := &Document{
		elements: make(map[ElementID]*element, len(Elements)),
		width:    DefaultWidth,
	}
	for _, id := range Elements {
		d.elements[id] = newElement()
	}
	return d
}

func (d *Document) get(id ElementID) *element {
	el, ok := d.elements[id]
	if !ok {
		el = newElement()
		d.elements[id] = el
	}
	return el
}

func (d *Document) AddClass(id ElementID, classes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el := d.get(id)
	for _, c := range classes {
		el.classes[c] = struct{}{}
	}
}

func (d *Document) RemoveClass(id ElementID, classes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el := d.get(id)
	for _, c := range classes {
		delete(el.classes, c)
	}
}

// ToggleClass adds class when on is true and removes it otherwise
func (d *Document) ToggleClass(id ElementID, class string, on bool) {
	if on {
		d.AddClass(id, class)
	} else {
		d.RemoveClass(id, class)
	}
}

// SwapClass removes every class in set, then adds active. An empty active
// leaves none of the set present.
func (d *Document) SwapClass(id ElementID, set []string, active string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el := d.get(id)
	for _, c := range set {
		delete(el.classes, c)
	}
	if active != "" {
		el.classes[active] = struct{}{}
	}
}

func (d *Document) HasClass(id ElementID, class string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	el, ok := d.elements[id]
	if !ok {
		return false
	}
	_, has := el.classes[class]
	return has
}

// Classes returns the sorted class list of id
func (d *Document) Classes(id ElementID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	el, ok := d.elements[id]
	if !ok {
		return []string{}
	}
	return sortedClasses(el)
}

func (d *Document) SetStyle(id ElementID, property, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.get(id).styles[property] = value
}

func (d *Document) RemoveStyle(id ElementID, properties ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el := d.get(id)
	for _, p := range properties {
		delete(el.styles, p)
	}
}

// Style returns the inline style value, or "" when unset
func (d *Document) Style(id ElementID, property string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	el, ok := d.elements[id]
	if !ok {
		return ""
	}
	return el.styles[property]
}

func (d *Document) SetText(id ElementID, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.get(id).text = text
}

func (d *Document) Text(id ElementID) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	el, ok := d.elements[id]
	if !ok {
		return ""
	}
	return el.text
}

// SetWidth records the viewport width. Non-positive widths are ignored.
func (d *Document) SetWidth(width int) {
	if width <= 0 {
		return
	}
	d.mu.Lock()
	d.width = width
	d.mu.Unlock()
}

func (d *Document) Width() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.width
}

// SetColumns sets the live tile column count; 0 means the stylesheet decides
func (d *Document) SetColumns(columns int) {
	d.mu.Lock()
	d.columns = columns
	d.mu.Unlock()
}

func (d *Document) Columns() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.columns
}

// ElementState is the serialisable state of one element
type ElementState struct {
	Classes []string          `json:"classes"`
	Styles  map[string]string `json:"styles,omitempty"`
	Text    string            `json:"text,omitempty"`
}

// Snapshot is a deep copy of a Document
type Snapshot struct {
	Elements map[ElementID]ElementState `json:"elements"`
	Width    int                        `json:"width"`
	Columns  int                        `json:"columns"`
}

// Snapshot copies the current state. Later mutations do not affect it.
func (d *Document) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{
		Elements: make(map[ElementID]ElementState, len(d.elements)),
		Width:    d.width,
		Columns:  d.columns,
	}

	for id, el := range d.elements {
		state := ElementState{
			Classes: sortedClasses(el),
			Text:    el.text,
		}
		if len(el.styles) > 0 {
			state.Styles = make(map[string]string, len(el.styles))
			for k, v := range el.styles {
				state.Styles[k] = v
			}
		}
		snap.Elements[id] = state
	}

	return snap
}

// Equal reports whether two snapshots describe the same page state
func (s Snapshot) Equal(other Snapshot) bool {
	return reflect.DeepEqual(s, other)
}

func sortedClasses(el *element) []string {
	out := make([]string, 0, len(el.classes))
	for c := range el.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
