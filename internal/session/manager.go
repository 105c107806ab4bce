// Package session owns the listening-session lifecycle: opening capture,
// classifying each finalized utterance, fusing the evidence, and feeding
// the escalation machine. Utterances are processed strictly in order.
package session

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/fusion"
	"github.com/mphakathi/guardian/internal/recording"
	"github.com/mphakathi/guardian/internal/types"
)

const (
	timerCheckIn  = "checkin"
	timerReminder = "safe_code_reminder"
)

// Settings supplies the user configuration read at session time.
type Settings interface {
	SafeWord() string
	VoiceSafeCode() *types.VoiceSafeCode
	GeneralSensitivity() types.SensitivityLevel
	SafeCodeSensitivity() types.SensitivityLevel
	CheckInInterval() types.CheckInInterval
	ReminderInterval() types.ReminderInterval
	Gender() types.Gender
	IsSurvivor() bool
}

// Classifier issues the per-utterance analysis calls.
type Classifier interface {
	AnalyzeEmotion(ctx context.Context, text string) (types.EmotionState, error)
	AnalyzeAcoustic(ctx context.Context, text string) (types.AcousticAnalysis, error)
	SuggestSafetyAction(ctx context.Context, emotion types.EmotionState, acoustic types.AcousticAnalysis) (*types.SafetyAction, error)
	SafetyTip(ctx context.Context, gender types.Gender, isSurvivor bool) string
}

// Machine is the escalation state machine surface the session drives.
type Machine interface {
	Apply(a fusion.Assessment)
	CancelSOS()
	CountdownActive() bool
	Reset()
}

// CalmWatcher observes the emotion feed for advisory calm-assist offers.
type CalmWatcher interface {
	Observe(ctx context.Context, emotion types.EmotionState, sosActive bool)
}

// TranscriptStore persists finalized utterances.
type TranscriptStore interface {
	AppendTranscript(entry types.TranscriptionEntry) error
}

// Sink receives session-level display events.
type Sink interface {
	Alert(alert types.Alert)
	Status(text string)
	SafetyAction(action *types.SafetyAction)
	Transcript(entry types.TranscriptionEntry)
	CheckInPrompt()
	SafeCodeReminder(phrase string)
	Tip(text string)
}

// Manager runs listening sessions. Safe for concurrent use; utterance
// handling is serialized by the stream loop.
type Manager struct {
	base        context.Context
	capture     CaptureSource
	locator     Locator
	classify    Classifier
	machine     Machine
	calm        CalmWatcher
	recorder    *recording.Recorder
	settings    Settings
	transcripts TranscriptStore
	policy      fusion.Policy
	sink        Sink
	clk         clock.Clock
	log         zerolog.Logger

	mu        sync.Mutex
	timers    *clock.Arena
	listening bool
	cancel    context.CancelFunc
	stream    Stream
	location  *types.Location
	emotion   types.EmotionState
	acoustic  *types.AcousticAnalysis
}

// Deps bundles the manager's collaborators.
type Deps struct {
	Capture     CaptureSource
	Locator     Locator
	Classifier  Classifier
	Machine     Machine
	CalmWatcher CalmWatcher
	Recorder    *recording.Recorder
	Settings    Settings
	Transcripts TranscriptStore
	Policy      fusion.Policy
	Sink        Sink
	Clock       clock.Clock
	Log         zerolog.Logger
}

// NewManager returns an idle Manager. base bounds the lifetime of every
// session it starts.
func NewManager(base context.Context, deps Deps) *Manager {
	return &Manager{
		base:        base,
		capture:     deps.Capture,
		locator:     deps.Locator,
		classify:    deps.Classifier,
		machine:     deps.Machine,
		calm:        deps.CalmWatcher,
		recorder:    deps.Recorder,
		settings:    deps.Settings,
		transcripts: deps.Transcripts,
		policy:      deps.Policy,
		sink:        deps.Sink,
		clk:         deps.Clock,
		log:         deps.Log.With().Str("component", "session").Logger(),
		timers:      clock.NewArena(deps.Clock),
	}
}

// Start opens a listening session. No-op when one is already running. With
// record set, the rolling record starts alongside.
func (m *Manager) Start(record bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listening {
		return nil
	}

	ctx, cancel := context.WithCancel(m.base)
	stream, audio, err := m.capture.Open(ctx)
	if err != nil {
		cancel()
		m.sink.Alert(types.Alert{Level: types.AlertCritical, Message: "Microphone access denied."})
		m.log.Error().Err(err).Msg("capture open failed")
		return err
	}

	m.listening = true
	m.cancel = cancel
	m.stream = stream
	m.location = nil

	m.recorder.Attach(audio)
	if record {
		m.recorder.StartRolling()
	}

	if d, ok := m.settings.CheckInInterval().Duration(); ok {
		m.timers.SetTicker(timerCheckIn, d, m.sink.CheckInPrompt)
	}
	if code := m.settings.VoiceSafeCode(); code != nil && code.Phrase != "" {
		if d, ok := m.settings.ReminderInterval().Duration(); ok {
			phrase := code.Phrase
			m.timers.SetTicker(timerReminder, d, func() {
				m.sink.SafeCodeReminder(phrase)
			})
		}
	}

	go m.resolveLocation(ctx)
	go m.deliverTip(ctx)
	go m.run(ctx, stream)

	m.sink.Status("Protection active. Listening...")
	m.log.Info().Bool("record", record).Msg("session started")
	return nil
}

// Stop ends the current session: capture closes, the rolling record
// flushes its partial segment, and escalation state resets. Idempotent.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.listening {
		m.mu.Unlock()
		return
	}
	m.listening = false
	m.cancel()
	stream := m.stream
	m.stream = nil
	m.timers.ClearAll()
	m.mu.Unlock()

	if stream != nil {
		if err := stream.Close(); err != nil {
			m.log.Warn().Err(err).Msg("stream close failed")
		}
	}
	m.recorder.StopRolling(true)
	m.recorder.Detach()
	m.machine.Reset()
	m.sink.Status("Protection stopped.")
	m.log.Info().Msg("session stopped")
}

// Listening reports whether a session is running.
func (m *Manager) Listening() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listening
}

// StartListening implements the escalation machine's session control.
func (m *Manager) StartListening(record bool) error {
	return m.Start(record)
}

// CurrentEmotion returns the live emotion snapshot.
func (m *Manager) CurrentEmotion() types.EmotionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.emotion
}

// Location returns the best-effort session fix, nil when unresolved.
func (m *Manager) Location() *types.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.location
}

// ConfirmCheckIn acknowledges a check-in prompt, restarting the interval.
func (m *Manager) ConfirmCheckIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.listening {
		return
	}
	if d, ok := m.settings.CheckInInterval().Duration(); ok {
		m.timers.SetTicker(timerCheckIn, d, m.sink.CheckInPrompt)
	}
	m.sink.Status("Check-in confirmed. Protection active.")
}

// HandleUtterance processes one finalized utterance: cancellation phrases
// first, then concurrent classification, then fusion and escalation. A
// safe-code match short-circuits before classification so the covert
// trigger is not delayed and the secret phrase never reaches the
// transcript history.
func (m *Manager) HandleUtterance(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if word := m.settings.SafeWord(); word != "" && m.machine.CountdownActive() && containsFold(text, word) {
		m.machine.CancelSOS()
		m.sink.Alert(types.Alert{Level: types.AlertSuccess, Message: "SOS Alert cancelled by safe word."})
		m.log.Info().Msg("SOS cancelled by safe word")
		return
	}

	if code := m.settings.VoiceSafeCode(); code != nil && code.Phrase != "" && containsFold(text, code.Phrase) {
		m.log.Info().Msg("voice safe code matched")
		m.mu.Lock()
		input := fusion.Input{
			Emotion:             m.emotion,
			Acoustic:            m.acoustic,
			SafeCodeMatch:       &types.VoiceSafeCodeMatch{Probability: 0.9},
			GeneralSensitivity:  m.settings.GeneralSensitivity(),
			SafeCodeSensitivity: m.settings.SafeCodeSensitivity(),
		}
		m.mu.Unlock()
		m.machine.Apply(m.policy.Evaluate(input))
		return
	}

	var (
		wg       sync.WaitGroup
		emotion  types.EmotionState
		acoustic types.AcousticAnalysis
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		emotion, _ = m.classify.AnalyzeEmotion(ctx, text)
	}()
	go func() {
		defer wg.Done()
		acoustic, _ = m.classify.AnalyzeAcoustic(ctx, text)
	}()
	wg.Wait()

	entry := types.TranscriptionEntry{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: m.clk.Now(),
		Emotion:   &emotion,
	}
	if err := m.transcripts.AppendTranscript(entry); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist transcript entry")
	}
	m.sink.Transcript(entry)

	m.mu.Lock()
	m.emotion = emotion
	m.acoustic = &acoustic
	input := fusion.Input{
		Emotion:             emotion,
		Acoustic:            &acoustic,
		GeneralSensitivity:  m.settings.GeneralSensitivity(),
		SafeCodeSensitivity: m.settings.SafeCodeSensitivity(),
	}
	m.mu.Unlock()

	assessment := m.policy.Evaluate(input)
	m.log.Debug().
		Float64("confidence", assessment.OverallConfidence).
		Str("tier", assessment.Tier.String()).
		Str("trigger", assessment.Trigger.Label()).
		Bool("calm", assessment.IsCalm).
		Msg("utterance evaluated")

	m.machine.Apply(assessment)
	m.calm.Observe(ctx, emotion, m.machine.CountdownActive())

	if action, err := m.classify.SuggestSafetyAction(ctx, emotion, acoustic); err == nil && action != nil {
		m.sink.SafetyAction(action)
	}
}

func (m *Manager) run(ctx context.Context, stream Stream) {
	for {
		select {
		case <-ctx.Done():
			return
		case text, ok := <-stream.Utterances():
			if !ok {
				return
			}
			// Both cases can be ready at once; a queued utterance must
			// not be admitted after the session was stopped.
			if ctx.Err() != nil {
				return
			}
			m.HandleUtterance(ctx, text)
		}
	}
}

func (m *Manager) deliverTip(ctx context.Context) {
	if tip := m.classify.SafetyTip(ctx, m.settings.Gender(), m.settings.IsSurvivor()); tip != "" {
		m.sink.Tip(tip)
	}
}

func (m *Manager) resolveLocation(ctx context.Context) {
	loc, err := m.locator.Current(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("location unavailable")
		return
	}
	m.mu.Lock()
	m.location = loc
	m.mu.Unlock()
}

func containsFold(text, phrase string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}
