package transport

import (
	"context"

	"startpage/internal/common"
	"startpage/internal/events"
	"startpage/internal/page"
)

// Bridge forwards bus messages to the frontend as Wails events
type Bridge struct {
	ctx  context.Context
	emit Emitter
	doc  *page.Document
}

func NewBridge(ctx context.Context, emit Emitter, doc *page.Document) *Bridge {
	return &Bridge{ctx: ctx, emit: emit, doc: doc}
}

// Attach subscribes the bridge to bus and returns the unsubscribe func
func (b *Bridge) Attach(bus *events.Bus) func() {
	return bus.Subscribe("transport", b)
}

func (b *Bridge) OnThemeChanged(m events.ThemeChanged) {
	b.emit(b.ctx, common.EventThemeChanged, m.Theme)
	// the coordinator mutates the page without publishing a snapshot
	b.emit(b.ctx, common.EventPageState, b.doc.Snapshot())
}

func (b *Bridge) OnPreferencesSaved(m events.PreferencesSaved) {
	b.emit(b.ctx, common.EventPreferencesSaved, m.Prefs)
}

func (b *Bridge) OnPreferencesReset(m events.PreferencesReset) {
	b.emit(b.ctx, common.EventPreferencesReset, m.Prefs)
}

func (b *Bridge) OnPageUpdated(m events.PageUpdated) {
	b.emit(b.ctx, common.EventPageState, m.Snapshot)
}

func (b *Bridge) OnSimpleModeChanged(m events.SimpleModeChanged) {
	b.emit(b.ctx, common.EventSimpleModeChanged, m.On)
}

func (b *Bridge) OnToast(m events.Toast) {
	b.emit(b.ctx, common.EventToast, m)
}
