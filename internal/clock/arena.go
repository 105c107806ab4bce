package clock

import "time"

// Arena owns a set of named timer handles. Multiple resolution paths may
// race to cancel the same pending state, so Clear is idempotent and setting
// a name that is already live replaces the old timer.
type Arena struct {
	clk    Clock
	timers map[string]Timer
}

// NewArena returns an empty arena scheduling on clk.
func NewArena(clk Clock) *Arena {
	return &Arena{clk: clk, timers: make(map[string]Timer)}
}

// Set schedules fn once after d under name, replacing any live timer with
// the same name.
func (a *Arena) Set(name string, d time.Duration, fn func()) {
	a.Clear(name)
	a.timers[name] = a.clk.AfterFunc(d, fn)
}

// SetTicker schedules fn every d under name, replacing any live timer with
// the same name.
func (a *Arena) SetTicker(name string, d time.Duration, fn func()) {
	a.Clear(name)
	a.timers[name] = a.clk.TickerFunc(d, fn)
}

// Clear cancels the named timer. Clearing an unknown or already-cleared
// name is a no-op.
func (a *Arena) Clear(name string) {
	if t, ok := a.timers[name]; ok {
		t.Stop()
		delete(a.timers, name)
	}
}

// ClearAll cancels every live timer.
func (a *Arena) ClearAll() {
	for name, t := range a.timers {
		t.Stop()
		delete(a.timers, name)
	}
}

// Active reports whether a timer is live under name. A timer stays active
// until it is cleared, even after a one-shot callback has fired; owners
// clear names from inside their callbacks.
func (a *Arena) Active(name string) bool {
	_, ok := a.timers[name]
	return ok
}
