package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"startpage/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stagedLocator reports controls missing for the first n calls
type stagedLocator struct {
	calls   atomic.Int32
	missFor int32
}

func (l *stagedLocator) Missing() []string {
	if l.calls.Add(1) <= l.missFor {
		return []string{"blur-range"}
	}
	return nil
}

func fastOptions(attempts int) Options {
	return Options{RetryDelay: time.Millisecond, MaxAttempts: attempts}
}

func TestWait_ReadyImmediately(t *testing.T) {
	inits := 0
	b := New(&stagedLocator{}, func() error { inits++; return nil }, fastOptions(5), testLogger())

	require.NoError(t, b.Wait(context.Background()))
	assert.Equal(t, 1, inits)
}

func TestWait_RetriesUntilControlsAppear(t *testing.T) {
	locator := &stagedLocator{missFor: 3}
	inits := 0
	b := New(locator, func() error { inits++; return nil }, fastOptions(10), testLogger())

	require.NoError(t, b.Wait(context.Background()))
	assert.Equal(t, int32(4), locator.calls.Load())
	assert.Equal(t, 1, inits)
}

func TestWait_CappedAttempts(t *testing.T) {
	locator := &stagedLocator{missFor: 100}
	called := false
	b := New(locator, func() error { called = true; return nil }, fastOptions(3), testLogger())

	err := b.Wait(context.Background())

	var notReady *NotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.True(t, errors.Is(err, common.ErrNotReady))
	assert.Equal(t, 3, notReady.Attempts)
	assert.Equal(t, []string{"blur-range"}, notReady.Missing)
	assert.False(t, called)
	assert.Equal(t, int32(3), locator.calls.Load())
}

func TestWait_InitRetriedFromScratch(t *testing.T) {
	attempts := 0
	b := New(&stagedLocator{}, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("modal not wired")
		}
		return nil
	}, fastOptions(5), testLogger())

	require.NoError(t, b.Wait(context.Background()))
	assert.Equal(t, 3, attempts)
}

func TestBootstrapper_ResolvesOnce(t *testing.T) {
	var inits atomic.Int32
	b := New(&stagedLocator{missFor: 1}, func() error { inits.Add(1); return nil }, fastOptions(5), testLogger())

	b.Start(context.Background())
	b.Start(context.Background())
	require.NoError(t, b.Wait(context.Background()))
	require.NoError(t, b.Wait(context.Background()))

	<-b.Done()
	assert.NoError(t, b.Err())
	assert.Equal(t, int32(1), inits.Load())
}

func TestBootstrapper_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := New(&stagedLocator{missFor: 1000}, func() error { return nil },
		Options{RetryDelay: time.Hour, MaxAttempts: 1000}, testLogger())

	b.Start(ctx)
	assert.Nil(t, b.Err())
	cancel()

	<-b.Done()
	assert.ErrorIs(t, b.Err(), context.Canceled)
}

func TestControls(t *testing.T) {
	controls := NewControls([]string{"save-preferences", "blur-range", "accent-color"})
	assert.Equal(t, []string{"accent-color", "blur-range", "save-preferences"}, controls.Missing())

	controls.Register("blur-range", "accent-color", "accent-color")
	assert.Equal(t, []string{"save-preferences"}, controls.Missing())

	controls.Register("save-preferences", "unrelated")
	assert.Empty(t, controls.Missing())
}

func TestWait_WithControlsRegistry(t *testing.T) {
	controls := NewControls(RequiredControls)
	b := New(controls, func() error { return nil }, fastOptions(1000), testLogger())

	b.Start(context.Background())
	controls.Register(RequiredControls...)

	select {
	case <-b.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("bootstrapper did not resolve")
	}
	assert.NoError(t, b.Err())
}
