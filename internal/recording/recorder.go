// Package recording captures evidentiary audio: a continuously segmented
// rolling record plus short emergency clips cut when an escalation fires.
// Capture is best effort; a missing audio stream never blocks escalation.
package recording

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/types"
)

const timerRolling = "rolling_segment"

// DefaultSegment is the rolling-record segment length.
const DefaultSegment = 30 * time.Minute

// AudioStream is an append-only capture buffer. Consumers track their own
// byte offsets so overlapping clips and the rolling record never interfere.
type AudioStream interface {
	Len() int
	ReadFrom(offset int) []byte
}

// Store persists completed recordings.
type Store interface {
	SaveRecording(rec types.CompletedRecording) error
}

// Notifier receives the saved-recording banners.
type Notifier interface {
	Alert(alert types.Alert)
}

// Recorder manages the rolling record and emergency clips for the attached
// stream. Safe for concurrent use.
type Recorder struct {
	store   Store
	notify  Notifier
	log     zerolog.Logger
	segment time.Duration

	mu      sync.Mutex
	clk     clock.Clock
	timers  *clock.Arena
	stream  AudioStream
	rolling bool
	mark    int
}

// New returns an idle Recorder cutting rolling segments of segment length.
func New(clk clock.Clock, store Store, notify Notifier, segment time.Duration, log zerolog.Logger) *Recorder {
	if segment <= 0 {
		segment = DefaultSegment
	}
	return &Recorder{
		store:   store,
		notify:  notify,
		log:     log.With().Str("component", "recording").Logger(),
		segment: segment,
		clk:     clk,
		timers:  clock.NewArena(clk),
	}
}

// Attach binds the live capture stream. Must be called before StartRolling;
// clips requested with no stream attached are dropped with a log entry.
func (r *Recorder) Attach(stream AudioStream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stream = stream
}

// Detach unbinds the stream, stopping the rolling record without a flush.
func (r *Recorder) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers.Clear(timerRolling)
	r.rolling = false
	r.stream = nil
}

// StartRolling begins the segmented rolling record. No-op while already
// rolling or with no stream attached.
func (r *Recorder) StartRolling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rolling || r.stream == nil {
		return
	}
	r.rolling = true
	r.mark = r.stream.Len()
	r.timers.SetTicker(timerRolling, r.segment, r.onSegment)
	r.log.Info().Dur("segment", r.segment).Msg("rolling record started")
}

// StopRolling ends the rolling record. With flush set, the partial final
// segment is saved if it holds any audio.
func (r *Recorder) StopRolling(flush bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rolling {
		return
	}
	r.timers.Clear(timerRolling)
	r.rolling = false
	if flush && r.stream != nil {
		r.saveSegmentLocked()
	}
}

// StartClip cuts a d-long clip starting now. Best effort: with no stream
// attached the request is logged and dropped, never surfaced as an error.
func (r *Recorder) StartClip(d time.Duration, silent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		r.log.Warn().Bool("silent", silent).Msg("clip requested with no audio stream attached")
		return
	}

	kind := types.RecordingEmergency
	prefix := "emergency"
	if silent {
		kind = types.RecordingSilentEmergency
		prefix = "silent_emergency"
	}
	id := prefix + "_" + uuid.NewString()
	start := r.stream.Len()
	stream := r.stream

	name := "clip_" + id
	r.timers.Set(name, d, func() {
		r.finishClip(name, id, kind, stream, start, d, silent)
	})
	r.log.Info().Str("id", id).Dur("duration", d).Msg("emergency clip started")
}

func (r *Recorder) finishClip(name, id string, kind types.RecordingKind, stream AudioStream, start int, d time.Duration, silent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers.Clear(name)

	rec := types.CompletedRecording{
		ID:        id,
		Kind:      kind,
		Data:      stream.ReadFrom(start),
		Timestamp: r.clk.Now(),
	}
	if err := r.store.SaveRecording(rec); err != nil {
		r.log.Error().Err(err).Str("id", id).Msg("failed to persist emergency clip")
		return
	}
	if !silent {
		r.notify.Alert(types.Alert{
			Level:   types.AlertSuccess,
			Message: fmt.Sprintf("A %d-second emergency clip has been saved.", int(d.Seconds())),
		})
	}
	r.log.Info().Str("id", id).Int("bytes", len(rec.Data)).Msg("emergency clip saved")
}

func (r *Recorder) onSegment() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.rolling || r.stream == nil {
		return
	}
	r.saveSegmentLocked()
}

func (r *Recorder) saveSegmentLocked() {
	data := r.stream.ReadFrom(r.mark)
	r.mark = r.stream.Len()
	if len(data) == 0 {
		return
	}

	rec := types.CompletedRecording{
		ID:        "rolling_" + uuid.NewString(),
		Kind:      types.RecordingRolling,
		Data:      data,
		Timestamp: r.clk.Now(),
	}
	if err := r.store.SaveRecording(rec); err != nil {
		r.log.Error().Err(err).Msg("failed to persist rolling segment")
		return
	}
	r.notify.Alert(types.Alert{
		Level:   types.AlertSuccess,
		Message: fmt.Sprintf("A %d-minute audio segment has been saved.", int(r.segment.Minutes())),
	})
	r.log.Info().Int("bytes", len(data)).Msg("rolling segment saved")
}
