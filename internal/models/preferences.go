package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"

	"startpage/internal/common"
)

// Theme is the persisted colour scheme. The zero value means no explicit
// choice has been made and the OS setting decides.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	// ThemeAuto is only reachable by editing the stored object directly
	ThemeAuto Theme = "auto"
)

// IsExplicit reports whether t is a concrete user choice
func (t Theme) IsExplicit() bool {
	return t == ThemeLight || t == ThemeDark
}

// Opposite returns the other concrete theme
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeFor maps a dark-mode boolean to a concrete theme
func ThemeFor(dark bool) Theme {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

type CardStyle string

const (
	CardDefault  CardStyle = "default"
	CardRounded  CardStyle = "rounded"
	CardFlat     CardStyle = "flat"
	CardBordered CardStyle = "bordered"
)

// CardStyles lists every card style in display order
var CardStyles = []CardStyle{CardDefault, CardRounded, CardFlat, CardBordered}

type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

var Layouts = []Layout{LayoutGrid, LayoutList}

type BackgroundType string

const (
	BackgroundDefault  BackgroundType = "default"
	BackgroundColor    BackgroundType = "color"
	BackgroundImage    BackgroundType = "image"
	BackgroundGradient BackgroundType = "gradient"
)

var BackgroundTypes = []BackgroundType{BackgroundDefault, BackgroundColor, BackgroundImage, BackgroundGradient}

// DefaultAccentColor is the brand colour used until the user picks one
const DefaultAccentColor = "#4a6cf7"

// Preferences is the single persisted preferences record
type Preferences struct {
	Theme       Theme      `json:"theme,omitempty"`
	Background  Background `json:"background"`
	AccentColor string     `json:"accentColor"`
	CardStyle   CardStyle  `json:"cardStyle"`
	Animation   bool       `json:"animation"`
	Layout      Layout     `json:"layout"`
	TileLayout  *int       `json:"tileLayout,omitempty"`
	Blur        int        `json:"blur"`
}

// DefaultPreferences returns a fresh copy of the default values
func DefaultPreferences() Preferences {
	return Preferences{
		Background: Background{
			Type:  BackgroundDefault,
			Value: NullValue(),
		},
		AccentColor: DefaultAccentColor,
		CardStyle:   CardDefault,
		Animation:   true,
		Layout:      LayoutGrid,
		Blur:        0,
	}
}

// Clone returns a copy that shares no mutable state with p
func (p Preferences) Clone() Preferences {
	out := p
	if p.TileLayout != nil {
		n := *p.TileLayout
		out.TileLayout = &n
	}
	out.Background.Value = p.Background.Value.clone()
	return out
}

// Columns returns the configured tile column count, or 0 when unset
func (p Preferences) Columns() int {
	if p.TileLayout == nil {
		return 0
	}
	return *p.TileLayout
}

// Fields lists the top-level keys of the persisted object
var Fields = []string{"theme", "background", "accentColor", "cardStyle", "animation", "layout", "tileLayout", "blur"}

// Validate checks every enumerated and ranged field
func (p Preferences) Validate() error {
	return p.ValidateFields(Fields...)
}

// ValidateFields checks only the named top-level keys. Unknown keys pass.
func (p Preferences) ValidateFields(fields ...string) error {
	for _, field := range fields {
		if err := p.validateField(field); err != nil {
			return err
		}
	}
	return nil
}

func (p Preferences) validateField(field string) error {
	switch field {
	case "theme":
		switch p.Theme {
		case "", ThemeLight, ThemeDark, ThemeAuto:
		default:
			return invalidField("theme", p.Theme)
		}
	case "cardStyle":
		if !slices.Contains(CardStyles, p.CardStyle) {
			return invalidField("cardStyle", p.CardStyle)
		}
	case "layout":
		if !slices.Contains(Layouts, p.Layout) {
			return invalidField("layout", p.Layout)
		}
	case "background":
		if !slices.Contains(BackgroundTypes, p.Background.Type) {
			return invalidField("background.type", p.Background.Type)
		}
	case "accentColor":
		if p.AccentColor == "" {
			return invalidField("accentColor", p.AccentColor)
		}
	case "blur":
		if p.Blur < 0 {
			return invalidField("blur", p.Blur)
		}
	case "tileLayout":
		if p.TileLayout != nil && *p.TileLayout < 1 {
			return invalidField("tileLayout", *p.TileLayout)
		}
	}
	return nil
}

// Changed returns the keys among fields whose encoded value differs
// between before and after
func Changed(before, after Preferences, fields []string) []string {
	a, errA := encodeFields(before)
	b, errB := encodeFields(after)
	if errA != nil || errB != nil {
		return fields
	}

	var out []string
	for _, field := range fields {
		if !bytes.Equal(a[field], b[field]) {
			out = append(out, field)
		}
	}
	return out
}

func encodeFields(p Preferences) (map[string]json.RawMessage, error) {
	encoded, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Merge overlays patch onto base one top-level key at a time. Nested
// objects such as background are replaced wholesale, never merged field by
// field, so callers must pass the complete background object.
func Merge(base Preferences, patch map[string]json.RawMessage) (Preferences, error) {
	if len(patch) == 0 {
		return base.Clone(), nil
	}

	fields, err := encodeFields(base)
	if err != nil {
		return base, err
	}

	for key, value := range patch {
		fields[key] = value
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return base, err
	}

	// Decode into a zero value so that a null in the patch clears the field
	// instead of leaving the base value behind.
	var out Preferences
	if err := json.Unmarshal(merged, &out); err != nil {
		return base, fmt.Errorf("%w: %v", common.ErrInvalidPreference, err)
	}

	return out, nil
}

// MergeValues is Merge for loosely typed input such as frontend bindings
func MergeValues(base Preferences, patch map[string]any) (Preferences, error) {
	raw := make(map[string]json.RawMessage, len(patch))
	for key, value := range patch {
		data, err := json.Marshal(value)
		if err != nil {
			return base, fmt.Errorf("%w: %s: %v", common.ErrInvalidPreference, key, err)
		}
		raw[key] = data
	}
	return Merge(base, raw)
}

// ParseStored merges a persisted blob over the defaults one key at a time.
// A key whose value cannot be decoded keeps its default and is reported in
// dropped; the other stored keys still win. Only a blob that is not a JSON
// object is corrupt as a whole.
func ParseStored(data []byte) (prefs Preferences, dropped []string, err error) {
	patch := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &patch); err != nil {
		return DefaultPreferences(), nil, fmt.Errorf("%w: %v", common.ErrCorrupt, err)
	}

	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	prefs = DefaultPreferences()
	for _, key := range keys {
		next, err := Merge(prefs, map[string]json.RawMessage{key: patch[key]})
		if err != nil {
			dropped = append(dropped, key)
			continue
		}
		prefs = next
	}

	return prefs, dropped, nil
}

// ToMap converts p to the loosely typed form accepted by UpdatePreferences
func (p Preferences) ToMap() map[string]any {
	out := map[string]any{
		"background":  p.Background,
		"accentColor": p.AccentColor,
		"cardStyle":   p.CardStyle,
		"animation":   p.Animation,
		"layout":      p.Layout,
		"blur":        p.Blur,
	}
	if p.Theme != "" {
		out["theme"] = p.Theme
	}
	if p.TileLayout != nil {
		out["tileLayout"] = *p.TileLayout
	} else {
		out["tileLayout"] = nil
	}
	return out
}

func invalidField(field string, value any) error {
	return fmt.Errorf("%w: %s=%v", common.ErrInvalidPreference, field, value)
}
