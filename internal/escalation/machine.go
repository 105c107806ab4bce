// Package escalation owns the layered alarm protocol: the SOS countdown,
// the covert safe-code path, the moderate-confidence hold, and the
// de-escalation offer. All state lives behind one mutex and every timer
// callback re-validates live state before acting, so resolution paths that
// race to cancel the same pending state stay safe.
package escalation

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/fusion"
	"github.com/mphakathi/guardian/internal/types"
)

// Timer handle names owned by the machine. At most one timer is live per
// name; the arena guarantees idempotent clearing.
const (
	timerSOS          = "sos"
	timerTick         = "sos_tick"
	timerModerate     = "moderate_hold"
	timerDeEscalation = "deescalation"
	timerOffer        = "offer_timeout"
	timerSilentCool   = "silent_cooldown"
)

// Timing holds the escalation delays. Defaults preserve the deployed
// behavior; they are configurable rather than hardcoded.
type Timing struct {
	CountdownSeconds  int
	ModerateHold      time.Duration
	DeEscalationDelay time.Duration
	OfferTimeout      time.Duration
	SilentCooldown    time.Duration
	ClipDuration      time.Duration
}

// DefaultTiming returns the production delays.
func DefaultTiming() Timing {
	return Timing{
		CountdownSeconds:  15,
		ModerateHold:      3 * time.Second,
		DeEscalationDelay: 20 * time.Second,
		OfferTimeout:      10 * time.Second,
		SilentCooldown:    10 * time.Second,
		ClipDuration:      15 * time.Second,
	}
}

// Hold is the pending moderate-confidence display state.
type Hold struct {
	Confidence float64
	Trigger    types.Trigger
}

// OfferResolution is the outcome of a de-escalation offer.
type OfferResolution int

const (
	ResolutionCancel OfferResolution = iota
	ResolutionKeepMonitoring
	ResolutionSendAnyway
)

// Dispatcher sends emergency alerts to configured contacts.
type Dispatcher interface {
	Dispatch(trigger types.Trigger, silent bool)
}

// Recorder starts best-effort evidentiary captures.
type Recorder interface {
	StartClip(d time.Duration, silent bool)
}

// Logbook appends entries to the append-only security log.
type Logbook interface {
	AppendTrigger(trigger types.Trigger, confidence float64)
}

// EmotionSource exposes the live emotion snapshot. Delayed callbacks read
// it at fire time instead of trusting the state captured at schedule time.
type EmotionSource interface {
	CurrentEmotion() types.EmotionState
}

// SessionControl lets the covert path spin up a listening session when the
// safe code is heard while idle.
type SessionControl interface {
	Listening() bool
	StartListening(record bool) error
}

// CalmAssist is dismissed when a high-confidence trigger supersedes it.
type CalmAssist interface {
	Dismiss()
}

// Device provides best-effort haptic feedback.
type Device interface {
	Vibrate(patternMs ...int)
}

// Sink receives escalation state changes for display.
type Sink interface {
	Alert(alert types.Alert)
	Countdown(remaining int, active bool)
	ModerateHold(hold *Hold)
	DeEscalationOffer(open bool)
	Status(text string)
}

// Machine is the escalation state machine. It exclusively owns its state;
// the fusion policy only classifies evidence and the machine interprets it.
type Machine struct {
	timing Timing
	policy fusion.Policy
	log    zerolog.Logger

	dispatcher Dispatcher
	recorder   Recorder
	logbook    Logbook
	emotions   EmotionSource
	sessions   SessionControl
	calm       CalmAssist
	device     Device
	sink       Sink

	mu     sync.Mutex
	timers *clock.Arena

	countdownActive bool
	countdown       int
	armedTrigger    types.Trigger
	hold            *Hold
	offerOpen       bool
	silentLatch     bool
}

// Deps bundles the machine's collaborators.
type Deps struct {
	Clock      clock.Clock
	Dispatcher Dispatcher
	Recorder   Recorder
	Logbook    Logbook
	Emotions   EmotionSource
	Sessions   SessionControl
	CalmAssist CalmAssist
	Device     Device
	Sink       Sink
	Log        zerolog.Logger
}

// New returns an idle Machine.
func New(timing Timing, policy fusion.Policy, deps Deps) *Machine {
	return &Machine{
		timing:     timing,
		policy:     policy,
		log:        deps.Log.With().Str("component", "escalation").Logger(),
		dispatcher: deps.Dispatcher,
		recorder:   deps.Recorder,
		logbook:    deps.Logbook,
		emotions:   deps.Emotions,
		sessions:   deps.Sessions,
		calm:       deps.CalmAssist,
		device:     deps.Device,
		sink:       deps.Sink,
		timers:     clock.NewArena(deps.Clock),
	}
}

// Apply reacts to one fused assessment. Called once per fusion evaluation.
func (m *Machine) Apply(a fusion.Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch a.Tier {
	case fusion.TierHigh:
		m.clearHoldLocked()

		if a.Trigger.Kind == types.TriggerSafeCode {
			// Covert path: never opens the countdown, never touches the
			// calm/de-escalation machinery.
			m.silentPathLocked(a.OverallConfidence)
			return
		}

		if m.calm != nil {
			m.calm.Dismiss()
		}
		m.timers.Clear(timerDeEscalation)
		if m.offerOpen {
			m.offerOpen = false
			m.sink.DeEscalationOffer(false)
			m.timers.Clear(timerOffer)
		}
		m.armLocked(a.Trigger, a.OverallConfidence)

	case fusion.TierModerate:
		if m.hold == nil {
			m.hold = &Hold{Confidence: a.OverallConfidence, Trigger: a.Trigger}
			m.sink.ModerateHold(m.hold)
			m.timers.Set(timerModerate, m.timing.ModerateHold, m.onModerateTimeout)
			m.log.Debug().Float64("confidence", a.OverallConfidence).Str("trigger", a.Trigger.Label()).Msg("moderate hold opened")
		}

	case fusion.TierLow:
		m.clearHoldLocked()
		m.timers.Clear(timerModerate)
	}

	if a.IsCalm && m.countdownActive {
		if !m.timers.Active(timerDeEscalation) {
			m.timers.Set(timerDeEscalation, m.timing.DeEscalationDelay, m.onDeEscalationTimeout)
			m.log.Debug().Msg("sustained calm while armed, de-escalation timer started")
		}
	} else if !a.IsCalm {
		// Distress resumed, abort the de-escalation path.
		m.timers.Clear(timerDeEscalation)
	}
}

// CountdownActive reports whether an SOS countdown is running.
func (m *Machine) CountdownActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countdownActive
}

// CancelSOS clears the countdown and every dependent timer. Safe to call
// repeatedly or when nothing is armed. PIN verification happens upstream.
func (m *Machine) CancelSOS() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetSOSLocked()
}

// ResolveOffer settles an open de-escalation offer. The auto-timeout
// resolves to ResolutionKeepMonitoring.
func (m *Machine) ResolveOffer(r OfferResolution) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.offerOpen {
		return
	}
	m.offerOpen = false
	m.sink.DeEscalationOffer(false)
	m.timers.Clear(timerOffer)

	switch r {
	case ResolutionCancel:
		m.resetSOSLocked()
		m.sink.Alert(types.Alert{Level: types.AlertWarning, Message: "SOS Alert has been cancelled."})
	case ResolutionKeepMonitoring:
		m.resetSOSLocked()
		m.sink.Alert(types.Alert{Level: types.AlertWarning, Message: "SOS countdown paused. Continuing to monitor."})
	case ResolutionSendAnyway:
		m.dispatcher.Dispatch(types.Trigger{Kind: types.TriggerEscalated}, false)
		m.resetSOSLocked()
	}
}

// Reset clears all escalation state. Called when the session stops.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetSOSLocked()
	m.clearHoldLocked()
	m.timers.Clear(timerModerate)
}

func (m *Machine) armLocked(trigger types.Trigger, confidence float64) {
	if m.countdownActive {
		// No re-arming mid-countdown.
		return
	}

	if m.device != nil {
		m.device.Vibrate(200, 100, 200)
	}
	m.logbook.AppendTrigger(trigger, confidence)
	m.dispatcher.Dispatch(trigger, false)

	m.armedTrigger = trigger
	m.countdownActive = true
	m.countdown = m.timing.CountdownSeconds
	m.sink.Countdown(m.countdown, true)
	m.timers.SetTicker(timerTick, time.Second, m.onTick)
	m.timers.Set(timerSOS, time.Duration(m.timing.CountdownSeconds)*time.Second, m.onAutoSOS)

	m.recorder.StartClip(m.timing.ClipDuration, false)
	m.log.Info().Str("trigger", trigger.Label()).Float64("confidence", confidence).Msg("armed, SOS countdown started")
}

func (m *Machine) silentPathLocked(confidence float64) {
	if m.silentLatch {
		return
	}

	if m.sessions != nil && !m.sessions.Listening() {
		m.sink.Status("Voice Secret Code detected. Activating protection...")
		if err := m.sessions.StartListening(true); err != nil {
			m.log.Warn().Err(err).Msg("could not start session for silent activation")
			return
		}
	}
	m.silentTriggerLocked(confidence)
}

func (m *Machine) silentTriggerLocked(confidence float64) {
	m.silentLatch = true

	if m.device != nil {
		m.device.Vibrate(200)
	}
	trigger := types.Trigger{Kind: types.TriggerSafeCode}
	m.logbook.AppendTrigger(trigger, confidence)
	m.dispatcher.Dispatch(trigger, true)
	m.recorder.StartClip(m.timing.ClipDuration, true)

	m.timers.Set(timerSilentCool, m.timing.SilentCooldown, m.onSilentCooldown)
	m.log.Info().Float64("confidence", confidence).Msg("silent emergency triggered")
}

func (m *Machine) onTick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.countdownActive {
		// Stale tick after a racing cancellation.
		return
	}
	if m.countdown > 0 {
		m.countdown--
	}
	m.sink.Countdown(m.countdown, true)
}

func (m *Machine) onAutoSOS() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers.Clear(timerSOS)
	if !m.countdownActive {
		return
	}
	// Countdown expired uncancelled: resend as confirmation, then reset.
	m.dispatcher.Dispatch(m.armedTrigger, false)
	m.resetSOSLocked()
	m.log.Info().Str("trigger", m.armedTrigger.Label()).Msg("countdown expired, alert confirmed")
}

func (m *Machine) onModerateTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers.Clear(timerModerate)
	if m.hold == nil {
		return
	}

	// Re-validate against the live emotion, not the 3-second-old snapshot.
	latest := m.emotions.CurrentEmotion()
	latestConfidence := 0.0
	if latest.Emotion == types.EmotionDanger {
		latestConfidence = latest.Confidence
	}
	if latestConfidence >= m.policy.ModerateConfidence {
		m.armLocked(types.Trigger{Kind: types.TriggerDangerKeyword}, latestConfidence)
	} else {
		m.log.Debug().Float64("confidence", latestConfidence).Msg("moderate hold lapsed, distress not sustained")
	}
	m.clearHoldLocked()
}

func (m *Machine) onDeEscalationTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers.Clear(timerDeEscalation)
	if !m.countdownActive {
		return
	}

	latest := m.emotions.CurrentEmotion()
	stillCalm := latest.Intensity < m.policy.CalmIntensity &&
		latest.Emotion != types.EmotionDanger &&
		latest.Emotion != types.EmotionAngry &&
		latest.Emotion != types.EmotionFearful
	if !stillCalm {
		return
	}

	// Calm held for the full window: stop the countdown and ask the user.
	m.timers.Clear(timerSOS)
	m.timers.Clear(timerTick)
	m.countdownActive = false
	m.countdown = 0
	m.sink.Countdown(0, false)

	m.offerOpen = true
	m.sink.DeEscalationOffer(true)
	m.timers.Set(timerOffer, m.timing.OfferTimeout, func() {
		m.ResolveOffer(ResolutionKeepMonitoring)
	})
	m.log.Info().Msg("countdown suspended, de-escalation offer opened")
}

func (m *Machine) onSilentCooldown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers.Clear(timerSilentCool)
	m.silentLatch = false
}

func (m *Machine) resetSOSLocked() {
	m.timers.Clear(timerSOS)
	m.timers.Clear(timerTick)
	m.timers.Clear(timerDeEscalation)
	m.timers.Clear(timerOffer)
	if m.countdownActive || m.countdown != 0 {
		m.countdownActive = false
		m.countdown = 0
		m.sink.Countdown(0, false)
	}
	if m.offerOpen {
		m.offerOpen = false
		m.sink.DeEscalationOffer(false)
	}
}

func (m *Machine) clearHoldLocked() {
	if m.hold != nil {
		m.hold = nil
		m.sink.ModerateHold(nil)
	}
}
