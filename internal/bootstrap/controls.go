package bootstrap

import (
	"sort"
	"sync"
)

// RequiredControls are the preference editing controls the frontend must
// render before the editor can be attached.
var RequiredControls = []string{
	"preferences-btn",
	"preferences-modal",
	"save-preferences",
	"reset-preferences",
	"tab-btn",
	"tab-content",
	"theme-option",
	"accent-color",
	"card-style-option",
	"animation-toggle",
	"layout-option",
	"bg-type-option",
	"bg-option",
	"bg-color",
	"bg-image-url",
	"bg-image-upload",
	"bg-image-preview",
	"gradient-color-1",
	"gradient-color-2",
	"gradient-direction",
	"gradient-preview",
	"blur-range",
}

// Locator reports which required controls do not exist yet
type Locator interface {
	Missing() []string
}

// Controls records the control IDs the frontend has rendered
type Controls struct {
	mu       sync.RWMutex
	required []string
	present  map[string]struct{}
}

// NewControls tracks the given required IDs
func NewControls(required []string) *Controls {
	return &Controls{
		required: append([]string(nil), required...),
		present:  make(map[string]struct{}),
	}
}

// Register marks ids as rendered. Registering twice is harmless.
func (c *Controls) Register(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		c.present[id] = struct{}{}
	}
}

// Missing returns the required IDs not registered yet, sorted
func (c *Controls) Missing() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []string
	for _, id := range c.required {
		if _, ok := c.present[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}
