package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds and actions carried on the wire.
const (
	KindIncome  = "income"
	KindExpense = "expense"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntryEvent announces a ledger mutation. The payload carries the full
// entry as recorded, so consumers can mirror it without reading the
// application's store. Deletion events carry no payload.
type EntryEvent struct {
	Kind      string          `json:"kind"`
	Action    string          `json:"action"`
	ID        int64           `json:"id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEntryEvent builds an event, marshaling the entry into the payload.
// A nil entry produces a payload-less event.
func NewEntryEvent(kind, action string, id int64, entry any) (*EntryEvent, error) {
	ev := &EntryEvent{
		Kind:      kind,
		Action:    action,
		ID:        id,
		Timestamp: time.Now(),
	}
	if entry != nil {
		payload, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		ev.Payload = payload
	}
	return ev, nil
}

// ToJSON converts the event to JSON bytes
func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EntryEventFromJSON creates an event from JSON bytes
func EntryEventFromJSON(data []byte) (*EntryEvent, error) {
	var ev EntryEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
