// Package timer computes and formats elapsed time for active sessions.
package timer

import (
	"context"
	"fmt"
	"time"
)

// Elapsed returns now - start in whole seconds, floored, never negative.
func Elapsed(start, now time.Time) int64 {
	d := now.Sub(start) / time.Second
	if d < 0 {
		return 0
	}
	return int64(d)
}

// Format renders a raw counter: "H:MM:SS" from one hour up, "M:SS" below.
func Format(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatHuman renders a compact duration, dropping zero-valued larger
// units: "1h 5m", "2h", "45m", "30s".
func FormatHuman(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// Ticker invokes a callback with the current elapsed seconds once per
// interval while a session is being watched. Stop blocks until the
// goroutine exits, so no tick is delivered after Stop returns and a stale
// callback can never update a counter for a session that already ended
// or was switched away from.
type Ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Watch starts ticking against start. The callback runs on the ticker
// goroutine; interval is normally one second.
func Watch(start time.Time, interval time.Duration, onTick func(elapsedSeconds int64)) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &Ticker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		tick := time.NewTicker(interval)
		defer tick.Stop()

		onTick(Elapsed(start, time.Now()))
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tick.C:
				onTick(Elapsed(start, now))
			}
		}
	}()
	return t
}

// Stop cancels the ticker and waits for the goroutine to exit.
func (t *Ticker) Stop() {
	t.cancel()
	<-t.done
}
