package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresInDueOrder(t *testing.T) {
	clk := NewFake()
	var order []string
	clk.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clk.AfterFunc(time.Second, func() { order = append(order, "a") })
	clk.AfterFunc(3*time.Second, func() { order = append(order, "c") })

	clk.Advance(2 * time.Second)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("expected [a b], got %v", order)
	}

	clk.Advance(time.Second)
	if len(order) != 3 || order[2] != "c" {
		t.Fatalf("expected c to fire, got %v", order)
	}
}

func TestFakeTickerRepeats(t *testing.T) {
	clk := NewFake()
	fired := 0
	ticker := clk.TickerFunc(time.Second, func() { fired++ })

	clk.Advance(3 * time.Second)
	if fired != 3 {
		t.Fatalf("expected 3 ticks, got %d", fired)
	}

	ticker.Stop()
	clk.Advance(3 * time.Second)
	if fired != 3 {
		t.Fatalf("expected no ticks after stop, got %d", fired)
	}
}

func TestFakeCallbackMayScheduleTimers(t *testing.T) {
	clk := NewFake()
	fired := false
	clk.AfterFunc(time.Second, func() {
		clk.AfterFunc(time.Second, func() { fired = true })
	})

	clk.Advance(2 * time.Second)
	if !fired {
		t.Fatal("expected nested timer to fire within the same advance")
	}
}

func TestFakeStopPreventsFiring(t *testing.T) {
	clk := NewFake()
	fired := false
	timer := clk.AfterFunc(time.Second, func() { fired = true })
	timer.Stop()

	clk.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer must not fire")
	}
}

func TestArenaSetReplacesLiveTimer(t *testing.T) {
	clk := NewFake()
	arena := NewArena(clk)
	var fired []string
	arena.Set("x", time.Second, func() { fired = append(fired, "first") })
	arena.Set("x", time.Second, func() { fired = append(fired, "second") })

	clk.Advance(time.Second)
	if len(fired) != 1 || fired[0] != "second" {
		t.Fatalf("expected only the replacement to fire, got %v", fired)
	}
}

func TestArenaClearIsIdempotent(t *testing.T) {
	clk := NewFake()
	arena := NewArena(clk)
	fired := false
	arena.Set("x", time.Second, func() { fired = true })

	arena.Clear("x")
	arena.Clear("x")
	arena.Clear("never-set")

	clk.Advance(2 * time.Second)
	if fired {
		t.Fatal("cleared timer must not fire")
	}
	if arena.Active("x") {
		t.Fatal("cleared name must not be active")
	}
}

func TestArenaClearAll(t *testing.T) {
	clk := NewFake()
	arena := NewArena(clk)
	fired := 0
	arena.Set("a", time.Second, func() { fired++ })
	arena.SetTicker("b", time.Second, func() { fired++ })

	arena.ClearAll()
	clk.Advance(5 * time.Second)
	if fired != 0 {
		t.Fatalf("expected no callbacks after ClearAll, got %d", fired)
	}
}
