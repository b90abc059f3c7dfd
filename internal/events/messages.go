// Package events is the in-process notification bus. The message set is
// closed: every variant has a method on Handler, so adding one fails to
// compile until every subscriber handles it.
package events

import (
	"startpage/internal/models"
	"startpage/internal/page"
)

// Message is one of the variants declared in this file
type Message interface {
	Dispatch(h Handler)
	sealed()
}

// Handler receives every message variant
type Handler interface {
	OnThemeChanged(ThemeChanged)
	OnPreferencesSaved(PreferencesSaved)
	OnPreferencesReset(PreferencesReset)
	OnPageUpdated(PageUpdated)
	OnSimpleModeChanged(SimpleModeChanged)
	OnToast(Toast)
}

// ThemeChanged is published on every theme transition, including the
// boot-time resolution from the OS setting.
type ThemeChanged struct {
	Theme models.Theme `json:"theme"`
}

type PreferencesSaved struct {
	Prefs models.Preferences `json:"prefs"`
}

type PreferencesReset struct {
	Prefs models.Preferences `json:"prefs"`
}

// PageUpdated carries the page state after a mutation
type PageUpdated struct {
	Snapshot page.Snapshot `json:"snapshot"`
}

type SimpleModeChanged struct {
	On bool `json:"on"`
}

type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastInfo    ToastLevel = "info"
)

// Toast is a user-facing notification. Blocking toasts need dismissal.
type Toast struct {
	Message  string     `json:"message"`
	Level    ToastLevel `json:"level"`
	Blocking bool       `json:"blocking"`
}

func (m ThemeChanged) Dispatch(h Handler)      { h.OnThemeChanged(m) }
func (m PreferencesSaved) Dispatch(h Handler)  { h.OnPreferencesSaved(m) }
func (m PreferencesReset) Dispatch(h Handler)  { h.OnPreferencesReset(m) }
func (m PageUpdated) Dispatch(h Handler)       { h.OnPageUpdated(m) }
func (m SimpleModeChanged) Dispatch(h Handler) { h.OnSimpleModeChanged(m) }
func (m Toast) Dispatch(h Handler)             { h.OnToast(m) }

func (ThemeChanged) sealed()      {}
func (PreferencesSaved) sealed()  {}
func (PreferencesReset) sealed()  {}
func (PageUpdated) sealed()       {}
func (SimpleModeChanged) sealed() {}
func (Toast) sealed()             {}

// Funcs adapts optional callbacks to Handler. Nil callbacks ignore the
// corresponding message.
type Funcs struct {
	ThemeChanged      func(ThemeChanged)
	PreferencesSaved  func(PreferencesSaved)
	PreferencesReset  func(PreferencesReset)
	PageUpdated       func(PageUpdated)
	SimpleModeChanged func(SimpleModeChanged)
	Toast             func(Toast)
}

func (f Funcs) OnThemeChanged(m ThemeChanged) {
	if f.ThemeChanged != nil {
		f.ThemeChanged(m)
	}
}

func (f Funcs) OnPreferencesSaved(m PreferencesSaved) {
	if f.PreferencesSaved != nil {
		f.PreferencesSaved(m)
	}
}

func (f Funcs) OnPreferencesReset(m PreferencesReset) {
	if f.PreferencesReset != nil {
		f.PreferencesReset(m)
	}
}

func (f Funcs) OnPageUpdated(m PageUpdated) {
	if f.PageUpdated != nil {
		f.PageUpdated(m)
	}
}

func (f Funcs) OnSimpleModeChanged(m SimpleModeChanged) {
	if f.SimpleModeChanged != nil {
		f.SimpleModeChanged(m)
	}
}

func (f Funcs) OnToast(m Toast) {
	if f.Toast != nil {
		f.Toast(m)
	}
}
