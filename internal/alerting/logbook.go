package alerting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/types"
)

// SecurityLogStore persists security log entries.
type SecurityLogStore interface {
	AppendSecurityLog(entry types.SecurityLogEntry) error
}

// Logbook writes escalation triggers to the append-only security log,
// stamping each entry with the location available at write time.
type Logbook struct {
	clk      clock.Clock
	contacts ContactSource
	store    SecurityLogStore
	log      zerolog.Logger
}

// NewLogbook returns a Logbook writing to store.
func NewLogbook(clk clock.Clock, contacts ContactSource, store SecurityLogStore, log zerolog.Logger) *Logbook {
	return &Logbook{
		clk:      clk,
		contacts: contacts,
		store:    store,
		log:      log.With().Str("component", "logbook").Logger(),
	}
}

// AppendTrigger records one escalation trigger. Persistence failures are
// logged and swallowed; escalation never blocks on storage.
func (b *Logbook) AppendTrigger(trigger types.Trigger, confidence float64) {
	details := "Location unavailable"
	if loc := b.contacts.Location(); loc != nil {
		details = fmt.Sprintf("Location: %.4f, %.4f", loc.Latitude, loc.Longitude)
	}

	entry := types.SecurityLogEntry{
		ID:          uuid.NewString(),
		Timestamp:   b.clk.Now(),
		TriggerType: trigger.Label(),
		Details:     details,
		Confidence:  confidence,
	}
	if err := b.store.AppendSecurityLog(entry); err != nil {
		b.log.Error().Err(err).Str("trigger", entry.TriggerType).Msg("failed to persist security log entry")
		return
	}
	b.log.Info().Str("trigger", entry.TriggerType).Float64("confidence", confidence).Msg("security log entry recorded")
}
