package alerting

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/types"
)

type fakeContacts struct {
	contacts []types.EmergencyContact
	name     string
	loc      *types.Location
}

func (f *fakeContacts) Contacts() []types.EmergencyContact { return f.contacts }
func (f *fakeContacts) UserName() string                   { return f.name }
func (f *fakeContacts) Location() *types.Location          { return f.loc }

type fakeNotify struct {
	alerts []types.Alert
}

func (f *fakeNotify) Alert(alert types.Alert) {
	f.alerts = append(f.alerts, alert)
}

type fakeInbox struct {
	threads []types.InboxThread
}

func (f *fakeInbox) AddThread(thread types.InboxThread) {
	f.threads = append(f.threads, thread)
}

func twoContacts() []types.EmergencyContact {
	return []types.EmergencyContact{
		{Name: "Naledi", Tel: "+27821230001"},
		{Name: "Bongani", Tel: "+27821230002"},
	}
}

func TestDispatchWithNoContacts(t *testing.T) {
	notify := &fakeNotify{}
	inbox := &fakeInbox{}
	d := NewDispatcher(clock.NewFake(), &fakeContacts{}, notify, inbox, zerolog.Nop())

	d.Dispatch(types.Trigger{Kind: types.TriggerDangerKeyword}, false)

	if len(notify.alerts) != 1 || notify.alerts[0].Level != types.AlertCritical {
		t.Fatalf("expected one critical banner, got %+v", notify.alerts)
	}
	if notify.alerts[0].Message != "DANGER! No emergency contacts set. Please add contacts in settings." {
		t.Fatalf("unexpected banner %q", notify.alerts[0].Message)
	}
	if len(inbox.threads) != 0 {
		t.Fatal("no dispatch means no inbox thread")
	}
}

func TestDispatchLoudWithLocation(t *testing.T) {
	notify := &fakeNotify{}
	inbox := &fakeInbox{}
	contacts := &fakeContacts{
		contacts: twoContacts(),
		name:     "Zanele",
		loc:      &types.Location{Latitude: -26.2041, Longitude: 28.0473},
	}
	d := NewDispatcher(clock.NewFake(), contacts, notify, inbox, zerolog.Nop())

	d.Dispatch(types.Trigger{Kind: types.TriggerDangerKeyword}, false)

	if len(notify.alerts) != 1 || notify.alerts[0].Level != types.AlertCritical {
		t.Fatalf("expected one critical banner, got %+v", notify.alerts)
	}
	if notify.alerts[0].Message != "Emergency alert sent to 2 contact(s) with your location." {
		t.Fatalf("unexpected banner %q", notify.alerts[0].Message)
	}

	if len(inbox.threads) != 1 {
		t.Fatalf("expected one synthesized thread, got %d", len(inbox.threads))
	}
	thread := inbox.threads[0]
	if thread.Status != types.InboxActiveDanger {
		t.Fatalf("unexpected thread status %s", thread.Status)
	}
	if thread.Location == nil {
		t.Fatal("expected a jittered thread location")
	}
	if len(thread.Messages) != 1 || thread.Messages[0].Sender != "contact" {
		t.Fatalf("unexpected thread messages %+v", thread.Messages)
	}
}

func TestDispatchSilentUsesWarning(t *testing.T) {
	notify := &fakeNotify{}
	d := NewDispatcher(clock.NewFake(), &fakeContacts{contacts: twoContacts()}, notify, nil, zerolog.Nop())

	d.Dispatch(types.Trigger{Kind: types.TriggerSafeCode}, true)

	if len(notify.alerts) != 1 || notify.alerts[0].Level != types.AlertWarning {
		t.Fatalf("expected a warning banner for silent dispatch, got %+v", notify.alerts)
	}
}

func TestDispatchWithoutLocation(t *testing.T) {
	notify := &fakeNotify{}
	d := NewDispatcher(clock.NewFake(), &fakeContacts{contacts: twoContacts()}, notify, nil, zerolog.Nop())

	d.Dispatch(types.Trigger{Kind: types.TriggerAcoustic, Distress: types.DistressScream}, false)

	if notify.alerts[0].Message != "Emergency alert sent to 2 contact(s)." {
		t.Fatalf("unexpected banner %q", notify.alerts[0].Message)
	}
}

func TestSendTest(t *testing.T) {
	notify := &fakeNotify{}
	d := NewDispatcher(clock.NewFake(), &fakeContacts{contacts: twoContacts(), name: "Zanele"}, notify, nil, zerolog.Nop())

	d.SendTest()

	if len(notify.alerts) != 1 || notify.alerts[0].Level != types.AlertSuccess {
		t.Fatalf("expected a success banner, got %+v", notify.alerts)
	}
	if notify.alerts[0].Message != "Test alert sent to 2 contact(s)." {
		t.Fatalf("unexpected banner %q", notify.alerts[0].Message)
	}
}

func TestSendTestWithNoContacts(t *testing.T) {
	notify := &fakeNotify{}
	d := NewDispatcher(clock.NewFake(), &fakeContacts{}, notify, nil, zerolog.Nop())

	d.SendTest()

	if len(notify.alerts) != 1 || notify.alerts[0].Level != types.AlertCritical {
		t.Fatalf("expected a critical banner, got %+v", notify.alerts)
	}
}

type fakeLogStore struct {
	entries []types.SecurityLogEntry
	err     error
}

func (f *fakeLogStore) AppendSecurityLog(entry types.SecurityLogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func TestLogbookAppendsTrigger(t *testing.T) {
	store := &fakeLogStore{}
	contacts := &fakeContacts{loc: &types.Location{Latitude: -26.2041, Longitude: 28.0473}}
	b := NewLogbook(clock.NewFake(), contacts, store, zerolog.Nop())

	b.AppendTrigger(types.Trigger{Kind: types.TriggerSafeCode}, 0.9)

	if len(store.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(store.entries))
	}
	entry := store.entries[0]
	if entry.TriggerType != "Voice Secret Code" {
		t.Fatalf("unexpected trigger type %q", entry.TriggerType)
	}
	if entry.Details != "Location: -26.2041, 28.0473" {
		t.Fatalf("unexpected details %q", entry.Details)
	}
	if entry.Confidence != 0.9 || entry.ID == "" {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestLogbookWithoutLocation(t *testing.T) {
	store := &fakeLogStore{}
	b := NewLogbook(clock.NewFake(), &fakeContacts{}, store, zerolog.Nop())

	b.AppendTrigger(types.Trigger{Kind: types.TriggerDangerKeyword}, 0.8)

	if store.entries[0].Details != "Location unavailable" {
		t.Fatalf("unexpected details %q", store.entries[0].Details)
	}
}

func TestLogbookSwallowsStoreErrors(t *testing.T) {
	store := &fakeLogStore{err: fmt.Errorf("db down")}
	b := NewLogbook(clock.NewFake(), &fakeContacts{}, store, zerolog.Nop())

	// Must not panic or propagate.
	b.AppendTrigger(types.Trigger{Kind: types.TriggerDangerKeyword}, 0.8)
}
