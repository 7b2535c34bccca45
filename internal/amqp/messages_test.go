package amqp

import (
	"testing"

	"tally/internal/core"
)

func TestEntryEventRoundTrip(t *testing.T) {
	entry := core.IncomeEntry{
		ID:         1710000000000,
		Occupation: "gardener",
		Amount:     core.Money{Cents: 120_00},
		Date:       core.NewDate(2024, 3, 10),
		Type:       core.Wages,
	}

	ev, err := NewEntryEvent(KindIncome, ActionCreated, entry.ID, entry)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}

	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := EntryEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Kind != KindIncome || decoded.Action != ActionCreated || decoded.ID != entry.ID {
		t.Fatalf("unexpected event: %+v", decoded)
	}
	if len(decoded.Payload) == 0 {
		t.Fatal("payload must carry the entry")
	}
}

func TestDeletionEventHasNoPayload(t *testing.T) {
	ev, err := NewEntryEvent(KindExpense, ActionDeleted, 42, nil)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if ev.Payload != nil {
		t.Fatal("deletion events must not carry a payload")
	}
}
