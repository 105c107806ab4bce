// Package alerting composes and delivers emergency alerts to the user's
// configured contacts, and mirrors each dispatch into the safety inbox.
// Outbound delivery is simulated: each send is logged, never transmitted.
package alerting

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/types"
)

// ContactSource supplies the settings and live fix needed to compose an
// alert at dispatch time.
type ContactSource interface {
	Contacts() []types.EmergencyContact
	UserName() string
	Location() *types.Location
}

// Notifier receives the user-facing banner for each dispatch outcome.
type Notifier interface {
	Alert(alert types.Alert)
}

// Inbox receives the synthesized peer-network thread for each dispatch.
type Inbox interface {
	AddThread(thread types.InboxThread)
}

var defaultPeers = []types.SimulatedUser{
	{ID: "peer_thandi", Name: "Thandi M.", Avatar: "🧕🏾"},
	{ID: "peer_lerato", Name: "Lerato K.", Avatar: "👩🏾"},
	{ID: "peer_sipho", Name: "Sipho N.", Avatar: "👨🏿"},
	{ID: "peer_ayanda", Name: "Ayanda P.", Avatar: "👩🏽"},
}

// Dispatcher sends emergency alerts. Safe for concurrent use.
type Dispatcher struct {
	clk      clock.Clock
	contacts ContactSource
	notify   Notifier
	inbox    Inbox
	log      zerolog.Logger

	mu    sync.Mutex
	peers []types.SimulatedUser
	next  int
}

// NewDispatcher returns a Dispatcher. inbox may be nil to skip thread
// synthesis.
func NewDispatcher(clk clock.Clock, contacts ContactSource, notify Notifier, inbox Inbox, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		clk:      clk,
		contacts: contacts,
		notify:   notify,
		inbox:    inbox,
		log:      log.With().Str("component", "alerting").Logger(),
		peers:    defaultPeers,
	}
}

// Dispatch composes and sends an emergency alert for trigger. With zero
// configured contacts nothing is sent and a critical banner is raised
// instead, even on the silent path.
func (d *Dispatcher) Dispatch(trigger types.Trigger, silent bool) {
	recipients := d.contacts.Contacts()
	if len(recipients) == 0 {
		d.notify.Alert(types.Alert{
			Level:   types.AlertCritical,
			Message: "DANGER! No emergency contacts set. Please add contacts in settings.",
		})
		d.log.Warn().Str("trigger", trigger.Label()).Msg("dispatch skipped, no emergency contacts configured")
		return
	}

	loc := d.contacts.Location()
	message := d.composeMessage(trigger, loc)
	for _, contact := range recipients {
		// Simulated SMS delivery.
		d.log.Info().
			Str("contact", contact.Name).
			Str("tel", contact.Tel).
			Bool("silent", silent).
			Str("message", message).
			Msg("emergency alert sent")
	}

	banner := fmt.Sprintf("Emergency alert sent to %d contact(s)%s.", len(recipients), locationNote(loc))
	level := types.AlertCritical
	if silent {
		level = types.AlertWarning
	}
	d.notify.Alert(types.Alert{Level: level, Message: banner})

	if d.inbox != nil {
		d.inbox.AddThread(d.synthesizeThread(trigger, loc))
	}
}

// SendTest delivers a harmless test alert so the user can verify their
// contact configuration.
func (d *Dispatcher) SendTest() {
	recipients := d.contacts.Contacts()
	if len(recipients) == 0 {
		d.notify.Alert(types.Alert{
			Level:   types.AlertCritical,
			Message: "DANGER! No emergency contacts set. Please add contacts in settings.",
		})
		return
	}

	name := d.userName()
	for _, contact := range recipients {
		d.log.Info().
			Str("contact", contact.Name).
			Str("tel", contact.Tel).
			Msgf("test alert sent: This is a TEST alert from %s's safety app. No action is needed.", name)
	}
	d.notify.Alert(types.Alert{
		Level:   types.AlertSuccess,
		Message: fmt.Sprintf("Test alert sent to %d contact(s).", len(recipients)),
	})
}

func (d *Dispatcher) composeMessage(trigger types.Trigger, loc *types.Location) string {
	locLine := "Location unavailable."
	if loc != nil {
		locLine = fmt.Sprintf("Location: https://www.google.com/maps?q=%f,%f", loc.Latitude, loc.Longitude)
	}
	return fmt.Sprintf("EMERGENCY ALERT from %s. Trigger: %s. Time: %s. %s",
		d.userName(), trigger.Label(), d.clk.Now().Format("15:04:05"), locLine)
}

func (d *Dispatcher) userName() string {
	if name := d.contacts.UserName(); name != "" {
		return name
	}
	return "A Guardian user"
}

// synthesizeThread fabricates an inbound distress thread from a rotating
// simulated peer. Peer locations are jittered so threads never reveal the
// user's own fix.
func (d *Dispatcher) synthesizeThread(trigger types.Trigger, loc *types.Location) types.InboxThread {
	d.mu.Lock()
	peer := d.peers[d.next%len(d.peers)]
	d.next++
	d.mu.Unlock()

	now := d.clk.Now()
	var peerLoc *types.Location
	if loc != nil {
		peerLoc = &types.Location{
			Latitude:  loc.Latitude + (rand.Float64()-0.5)*0.1,
			Longitude: loc.Longitude + (rand.Float64()-0.5)*0.1,
		}
	}

	return types.InboxThread{
		ID:        uuid.NewString(),
		UserName:  peer.Name,
		Avatar:    peer.Avatar,
		Location:  peerLoc,
		Timestamp: now,
		Status:    types.InboxActiveDanger,
		Messages: []types.InboxMessage{{
			ID:        uuid.NewString(),
			Sender:    "contact",
			Type:      "text",
			Content:   fmt.Sprintf("Automated distress alert: %s detected near your area.", trigger.Label()),
			Timestamp: now,
		}},
	}
}

func locationNote(loc *types.Location) string {
	if loc != nil {
		return " with your location"
	}
	return ""
}
