// Package clock formats the wall clock shown by the screensaver and simple
// mode, and drives its once-a-second refresh.
package clock

import (
	"sync"
	"time"
)

var weekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// FormatTime renders HH:MM:SS
func FormatTime(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatDate renders the long date, e.g. 2024年03月05日 星期二
func FormatDate(t time.Time) string {
	return t.Format("2006年01月02日") + " " + weekdays[t.Weekday()]
}

// Ticker calls fn immediately and then every interval until stopped
type Ticker struct {
	interval time.Duration
	fn       func(time.Time)
	now      func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewTicker(interval time.Duration, now func() time.Time, fn func(time.Time)) *Ticker {
	if now == nil {
		now = time.Now
	}
	return &Ticker{interval: interval, fn: fn, now: now}
}

// Start is a no-op while already running
func (t *Ticker) Start() {
	t.mu.Lock()
	if t.stop != nil {
		t.mu.Unlock()
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	t.stop, t.done = stop, done
	t.mu.Unlock()

	t.fn(t.now())
	go t.run(stop, done)
}

// Stop halts the ticker and waits for its goroutine to exit
func (t *Ticker) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the ticker goroutine is active
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *Ticker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.fn(t.now())
		}
	}
}
