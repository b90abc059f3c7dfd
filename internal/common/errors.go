package common

import (
	"errors"
	"fmt"
)

// Application error types
var (
	ErrNotFound          = errors.New("key not found")
	ErrCorrupt           = errors.New("stored value is corrupt")
	ErrInvalidPreference = errors.New("invalid preference value")
	ErrInvalidAsset      = errors.New("invalid background asset")
	ErrNotReady          = errors.New("required controls not ready")
	ErrNoSession         = errors.New("no open editing session")
	ErrUnknownEngine     = errors.New("unknown search engine")
	ErrInvalidImport     = errors.New("invalid import data")
	ErrInvalidBookmark   = errors.New("invalid bookmark")
)

// PreferencesError represents preferences-related errors
type PreferencesError struct {
	Operation string
	Err       error
}

func (e *PreferencesError) Error() string {
	return fmt.Sprintf("preferences %s failed: %v", e.Operation, e.Err)
}

func (e *PreferencesError) Unwrap() error {
	return e.Err
}

// NewPreferencesError creates a new preferences error
func NewPreferencesError(operation string, err error) *PreferencesError {
	return &PreferencesError{
		Operation: operation,
		Err:       err,
	}
}

// AssetError describes a rejected background image
type AssetError struct {
	Source string
	Reason string
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("background asset %s rejected: %s", e.Source, e.Reason)
}

func (e *AssetError) Unwrap() error {
	return ErrInvalidAsset
}

// IsMissing reports whether err means "nothing usable is stored", which
// callers treat the same as a value that was never set.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt)
}
