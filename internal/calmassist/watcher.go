// Package calmassist watches the emotion feed for sustained agitation and
// offers a generated calming message. It is advisory only and never feeds
// back into escalation decisions.
package calmassist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/types"
)

const timerCooldown = "calm_cooldown"

// Config tunes the watcher. Defaults preserve the deployed behavior.
type Config struct {
	Threshold int
	Cooldown  time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{Threshold: 60, Cooldown: time.Minute}
}

// Messenger generates the calming message shown with an offer.
type Messenger interface {
	CalmingMessage(ctx context.Context, style types.CalmAssistStyle) string
}

// StyleSource supplies the user's configured message tone.
type StyleSource interface {
	CalmAssistStyle() types.CalmAssistStyle
}

// Sink receives offer open/close transitions.
type Sink interface {
	CalmAssistOffer(open bool, message string)
}

// Watcher offers calm-assist when agitation crosses the threshold. Safe for
// concurrent use.
type Watcher struct {
	cfg      Config
	messages Messenger
	style    StyleSource
	sink     Sink
	log      zerolog.Logger

	mu      sync.Mutex
	timers  *clock.Arena
	open    bool
	cooling bool
}

// NewWatcher returns an idle Watcher.
func NewWatcher(clk clock.Clock, cfg Config, messages Messenger, style StyleSource, sink Sink, log zerolog.Logger) *Watcher {
	return &Watcher{
		cfg:      cfg,
		messages: messages,
		style:    style,
		sink:     sink,
		log:      log.With().Str("component", "calmassist").Logger(),
		timers:   clock.NewArena(clk),
	}
}

// Observe reacts to one emotion verdict. An offer opens only when agitation
// crosses the threshold while no offer is open, the cooldown has lapsed,
// and no SOS countdown is running. The cooldown is measured from the moment
// an offer opens, not from its dismissal.
func (w *Watcher) Observe(ctx context.Context, emotion types.EmotionState, sosActive bool) {
	w.mu.Lock()
	if w.open || w.cooling || sosActive || !agitated(emotion, w.cfg.Threshold) {
		w.mu.Unlock()
		return
	}
	w.open = true
	w.cooling = true
	w.timers.Set(timerCooldown, w.cfg.Cooldown, w.onCooldown)
	w.mu.Unlock()

	message := w.messages.CalmingMessage(ctx, w.style.CalmAssistStyle())

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		// Dismissed while the message was being generated.
		return
	}
	w.sink.CalmAssistOffer(true, message)
	w.log.Info().Str("emotion", string(emotion.Emotion)).Int("intensity", emotion.Intensity).Msg("calm-assist offered")
}

// Dismiss closes any open offer. The cooldown started when the offer
// opened and keeps running. Idempotent.
func (w *Watcher) Dismiss() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.open {
		return
	}
	w.open = false
	w.sink.CalmAssistOffer(false, "")
}

// Open reports whether an offer is currently showing.
func (w *Watcher) Open() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

func (w *Watcher) onCooldown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timers.Clear(timerCooldown)
	w.cooling = false
}

func agitated(emotion types.EmotionState, threshold int) bool {
	switch emotion.Emotion {
	case types.EmotionAngry, types.EmotionStressed, types.EmotionFearful:
		return emotion.Intensity >= threshold
	default:
		return false
	}
}
