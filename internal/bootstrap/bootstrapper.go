// Package bootstrap defers editor initialisation until the frontend has
// rendered every control it needs.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"startpage/internal/common"
)

// NotReadyError is returned when the controls never all appeared
type NotReadyError struct {
	Missing  []string
	Attempts int
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("controls still missing after %d attempts: %s", e.Attempts, strings.Join(e.Missing, ", "))
}

func (e *NotReadyError) Unwrap() error {
	return common.ErrNotReady
}

type Options struct {
	RetryDelay  time.Duration
	MaxAttempts int
}

// Bootstrapper runs an init function once all controls are present. The
// outcome is decided exactly once; Done is closed when it is.
type Bootstrapper struct {
	locator Locator
	init    func() error
	opts    Options
	logger  *slog.Logger

	once sync.Once
	done chan struct{}
	err  error
}

// New creates a bootstrapper. init is re-run from scratch on every
// attempt until it succeeds, so it must be idempotent.
func New(locator Locator, init func() error, opts Options, logger *slog.Logger) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = common.DefaultRetryDelay
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = common.DefaultMaxAttempts
	}

	return &Bootstrapper{
		locator: locator,
		init:    init,
		opts:    opts,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start begins the attempts in the background. Later calls do nothing.
func (b *Bootstrapper) Start(ctx context.Context) {
	b.once.Do(func() {
		go b.run(ctx)
	})
}

// Wait starts the attempts if needed and blocks until they finish or ctx
// is done.
func (b *Bootstrapper) Wait(ctx context.Context) error {
	b.Start(ctx)

	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the outcome is known
func (b *Bootstrapper) Done() <-chan struct{} {
	return b.done
}

// Err returns the outcome, or nil while still running
func (b *Bootstrapper) Err() error {
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

func (b *Bootstrapper) run(ctx context.Context) {
	defer close(b.done)

	timer := time.NewTimer(b.opts.RetryDelay)
	timer.Stop()
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		missing := b.locator.Missing()
		if len(missing) == 0 {
			err := b.init()
			if err == nil {
				b.logger.Info("Preference controls ready", "attempts", attempt)
				return
			}
			b.logger.Warn("Initialisation failed, retrying", "attempt", attempt, "error", err)
		} else {
			b.logger.Warn("Required controls missing, retrying",
				"attempt", attempt,
				"missing", strings.Join(missing, ","))
		}

		if attempt >= b.opts.MaxAttempts {
			b.err = &NotReadyError{Missing: missing, Attempts: attempt}
			b.logger.Error("Giving up on preference controls", "error", b.err)
			return
		}

		timer.Reset(b.opts.RetryDelay)
		select {
		case <-ctx.Done():
			b.err = fmt.Errorf("bootstrap cancelled: %w", ctx.Err())
			return
		case <-timer.C:
		}
	}
}
