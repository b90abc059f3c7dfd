package favicon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"time"

	"startpage/internal/common"
	"startpage/internal/models"

	"github.com/panjf2000/ants/v2"
)

// Prober picks the first reachable icon candidate for each bookmark
type Prober struct {
	client      *http.Client
	concurrency int
	logger      *slog.Logger
	resolve     func(string) Candidates
}

// NewProber creates a prober. concurrency is capped at
// common.MaxConcurrencyLimit.
func NewProber(timeout time.Duration, concurrency int, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = common.DefaultProbeTimeout
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > common.MaxConcurrencyLimit {
		concurrency = common.MaxConcurrencyLimit
	}

	return &Prober{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
		logger:      logger,
		resolve:     Resolve,
	}
}

// ResolveAll returns bookmark ID -> icon URL. Bookmarks with an explicit
// icon keep it. Unreachable sites fall back to DefaultIcon.
func (p *Prober) ResolveAll(ctx context.Context, bookmarks []models.Bookmark) (map[string]string, error) {
	icons := make(map[string]string, len(bookmarks))
	if len(bookmarks) == 0 {
		return icons, nil
	}

	pool, err := ants.NewPool(p.concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, bookmark := range bookmarks {
		if bookmark.Icon != "" {
			icons[bookmark.ID] = bookmark.Icon
			continue
		}

		wg.Add(1)
		b := bookmark

		err := pool.Submit(func() {
			defer wg.Done()

			icon := p.firstReachable(ctx, b.URL)
			mu.Lock()
			icons[b.ID] = icon
			mu.Unlock()
		})

		if err != nil {
			wg.Done()
			p.logger.Error("Failed to submit favicon probe", "url", b.URL, "error", err)
			mu.Lock()
			icons[b.ID] = DefaultIcon
			mu.Unlock()
		}
	}

	wg.Wait()
	return icons, ctx.Err()
}

func (p *Prober) firstReachable(ctx context.Context, raw string) string {
	for _, candidate := range p.resolve(raw).Ordered() {
		if candidate == DefaultIcon {
			break
		}

		select {
		case <-ctx.Done():
			return DefaultIcon
		default:
		}

		if p.reachable(ctx, candidate) {
			return candidate
		}
	}
	return DefaultIcon
}

func (p *Prober) reachable(ctx context.Context, candidate string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidate, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("Favicon candidate unreachable", "url", candidate, "error", err)
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}
