package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually-advanced clock for tests. Callbacks fire synchronously
// inside Advance, in due order, so tests observe a deterministic interleaving.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

// NewFake returns a Fake starting at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	return f.schedule(d, fn, false)
}

func (f *Fake) TickerFunc(d time.Duration, fn func()) Timer {
	return f.schedule(d, fn, true)
}

func (f *Fake) schedule(d time.Duration, fn func(), repeat bool) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{
		clk:    f,
		at:     f.now.Add(d),
		period: d,
		fn:     fn,
		repeat: repeat,
		seq:    f.seq,
	}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every due callback in order.
// Callbacks may schedule or stop other timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		next := f.nextDueLocked(target)
		if next == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		if next.at.After(f.now) {
			f.now = next.at
		}
		if next.repeat {
			next.at = next.at.Add(next.period)
		} else {
			next.stopped = true
			f.removeLocked(next)
		}
		fn := next.fn
		f.mu.Unlock()

		fn()
	}
}

func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	var due []*fakeTimer
	for _, t := range f.timers {
		if !t.stopped && !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}

func (f *Fake) removeLocked(t *fakeTimer) {
	for i, cand := range f.timers {
		if cand == t {
			f.timers = append(f.timers[:i], f.timers[i+1:]...)
			return
		}
	}
}

type fakeTimer struct {
	clk     *Fake
	at      time.Time
	period  time.Duration
	fn      func()
	repeat  bool
	stopped bool
	seq     int
}

func (t *fakeTimer) Stop() {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	t.stopped = true
	t.clk.removeLocked(t)
}
