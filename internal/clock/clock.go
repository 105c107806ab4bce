// Package clock abstracts timer scheduling so countdown and hold logic can
// be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. Stopping an already-fired or already-stopped
	// timer is a no-op.
	Stop()
}

// Clock creates timers and reports the current time.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn once after d.
	AfterFunc(d time.Duration, fn func()) Timer
	// TickerFunc runs fn every d until the returned timer is stopped.
	TickerFunc(d time.Duration, fn func()) Timer
}

// Real is the wall-clock implementation.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return &realTimer{t: time.AfterFunc(d, fn)}
}

func (Real) TickerFunc(d time.Duration, fn func()) Timer {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()
	return &realTicker{stop: stop}
}

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) Stop() { r.t.Stop() }

type realTicker struct {
	once sync.Once
	stop chan struct{}
}

func (r *realTicker) Stop() {
	r.once.Do(func() { close(r.stop) })
}
