package calmassist

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/types"
)

type fakeMessenger struct {
	message string
	calls   int
}

func (f *fakeMessenger) CalmingMessage(ctx context.Context, style types.CalmAssistStyle) string {
	f.calls++
	return f.message
}

type fakeStyle struct{}

func (fakeStyle) CalmAssistStyle() types.CalmAssistStyle { return types.CalmStyleSoothing }

type offerEvent struct {
	open    bool
	message string
}

type fakeSink struct {
	events []offerEvent
}

func (f *fakeSink) CalmAssistOffer(open bool, message string) {
	f.events = append(f.events, offerEvent{open: open, message: message})
}

func newWatcher(clk *clock.Fake) (*Watcher, *fakeMessenger, *fakeSink) {
	messenger := &fakeMessenger{message: "Breathe slowly."}
	sink := &fakeSink{}
	w := NewWatcher(clk, DefaultConfig(), messenger, fakeStyle{}, sink, zerolog.Nop())
	return w, messenger, sink
}

func agitatedState() types.EmotionState {
	return types.EmotionState{Emotion: types.EmotionAngry, Intensity: 75, Confidence: 0.8}
}

func TestOfferOpensAboveThreshold(t *testing.T) {
	w, messenger, sink := newWatcher(clock.NewFake())

	w.Observe(context.Background(), agitatedState(), false)

	if !w.Open() {
		t.Fatal("expected an open offer")
	}
	if len(sink.events) != 1 || !sink.events[0].open || sink.events[0].message != "Breathe slowly." {
		t.Fatalf("unexpected sink events %+v", sink.events)
	}
	if messenger.calls != 1 {
		t.Fatalf("expected one message generation, got %d", messenger.calls)
	}

	// Already open: no second offer.
	w.Observe(context.Background(), agitatedState(), false)
	if len(sink.events) != 1 {
		t.Fatalf("expected no re-offer while open, got %+v", sink.events)
	}
}

func TestNoOfferForMildOrOffTargetEmotion(t *testing.T) {
	w, _, sink := newWatcher(clock.NewFake())

	w.Observe(context.Background(), types.EmotionState{Emotion: types.EmotionAngry, Intensity: 59}, false)
	w.Observe(context.Background(), types.EmotionState{Emotion: types.EmotionSad, Intensity: 95}, false)

	if len(sink.events) != 0 {
		t.Fatalf("expected no offers, got %+v", sink.events)
	}
}

func TestSuppressedWhileSOSActive(t *testing.T) {
	w, _, sink := newWatcher(clock.NewFake())

	w.Observe(context.Background(), agitatedState(), true)

	if len(sink.events) != 0 {
		t.Fatalf("expected suppression during SOS, got %+v", sink.events)
	}
}

func TestCooldownGatesReoffer(t *testing.T) {
	clk := clock.NewFake()
	w, _, sink := newWatcher(clk)

	w.Observe(context.Background(), agitatedState(), false)
	w.Dismiss()
	w.Dismiss()

	if len(sink.events) != 2 || sink.events[1].open {
		t.Fatalf("expected open then close, got %+v", sink.events)
	}

	// Still cooling.
	w.Observe(context.Background(), agitatedState(), false)
	if len(sink.events) != 2 {
		t.Fatalf("expected cooldown to block re-offer, got %+v", sink.events)
	}

	clk.Advance(time.Minute)
	w.Observe(context.Background(), agitatedState(), false)
	if len(sink.events) != 3 || !sink.events[2].open {
		t.Fatalf("expected re-offer after cooldown, got %+v", sink.events)
	}
}

func TestCooldownRunsFromOfferOpen(t *testing.T) {
	clk := clock.NewFake()
	w, _, sink := newWatcher(clk)

	w.Observe(context.Background(), agitatedState(), false)

	// The offer stays up for a while before the user dismisses it. The
	// cooldown clock has been running since the offer opened.
	clk.Advance(30 * time.Second)
	w.Dismiss()

	w.Observe(context.Background(), agitatedState(), false)
	if len(sink.events) != 2 {
		t.Fatalf("expected cooldown still active, got %+v", sink.events)
	}

	// One minute after the open (30 seconds after the dismissal) the
	// cooldown has lapsed.
	clk.Advance(30 * time.Second)
	w.Observe(context.Background(), agitatedState(), false)
	if len(sink.events) != 3 || !sink.events[2].open {
		t.Fatalf("expected re-offer one minute after the open, got %+v", sink.events)
	}
}
