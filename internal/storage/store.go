// Package storage provides the key-value persistence every other component
// reads and writes through. Values are opaque byte blobs, usually JSON.
package storage

import (
	"encoding/json"
	"fmt"

	"startpage/internal/common"
)

// Store is a key-value blob store. Load returns common.ErrNotFound for
// absent keys. Save replaces the whole value in one step.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// LoadJSON decodes the value under key into v. A value that fails to decode
// is reported as common.ErrCorrupt.
func LoadJSON(s Store, key string, v any) error {
	data, err := s.Load(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: key %s: %v", common.ErrCorrupt, key, err)
	}

	return nil
}

// SaveJSON encodes v and stores it under key
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	return s.Save(key, data)
}

// LoadString returns the raw value under key, or "" when absent or on error.
// Legacy flat keys are plain strings, not JSON.
func LoadString(s Store, key string) string {
	data, err := s.Load(key)
	if err != nil {
		return ""
	}
	return string(data)
}
