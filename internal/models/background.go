package models

import (
	"bytes"
	"encoding/json"
)

// Background describes the page backdrop. The shape of Value depends on
// Type; a mismatched shape is kept as-is and ignored when applied.
type Background struct {
	Type  BackgroundType  `json:"type"`
	Value BackgroundValue `json:"value"`
}

// Gradient is the value shape for gradient backgrounds
type Gradient struct {
	Color1    string `json:"color1"`
	Color2    string `json:"color2"`
	Direction string `json:"direction"`
}

// RadialDirection selects a radial gradient instead of a linear one
const RadialDirection = "circle"

// BackgroundValue holds the raw JSON of background.value: null, a string
// (colour, URL or data URL) or a gradient object.
type BackgroundValue struct {
	raw json.RawMessage
}

var jsonNull = []byte("null")

func NullValue() BackgroundValue {
	return BackgroundValue{}
}

func StringValue(s string) BackgroundValue {
	data, _ := json.Marshal(s)
	return BackgroundValue{raw: data}
}

func GradientValue(g Gradient) BackgroundValue {
	data, _ := json.Marshal(g)
	return BackgroundValue{raw: data}
}

// IsNull reports whether no value is set
func (v BackgroundValue) IsNull() bool {
	trimmed := bytes.TrimSpace(v.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull)
}

// Text returns the value when it is a JSON string
func (v BackgroundValue) Text() (string, bool) {
	if v.IsNull() {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Gradient returns the value when it is a gradient object with both colours
func (v BackgroundValue) Gradient() (Gradient, bool) {
	if v.IsNull() {
		return Gradient{}, false
	}
	var g Gradient
	if err := json.Unmarshal(v.raw, &g); err != nil {
		return Gradient{}, false
	}
	if g.Color1 == "" || g.Color2 == "" {
		return Gradient{}, false
	}
	return g, true
}

// Equal compares the canonical JSON of both values
func (v BackgroundValue) Equal(other BackgroundValue) bool {
	a, _ := v.MarshalJSON()
	b, _ := other.MarshalJSON()
	return bytes.Equal(a, b)
}

func (v BackgroundValue) MarshalJSON() ([]byte, error) {
	if v.IsNull() {
		return jsonNull, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v.raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *BackgroundValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		v.raw = nil
		return nil
	}
	v.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (v BackgroundValue) clone() BackgroundValue {
	if v.raw == nil {
		return v
	}
	return BackgroundValue{raw: append(json.RawMessage(nil), v.raw...)}
}
