package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionDeleted EventKind = "transaction.deleted"
)

// TransactionEvent carries only the transaction id; consumers fetch the full
// record from storage.
type TransactionEvent struct {
	Kind      EventKind `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(kind EventKind, id string) *TransactionEvent {
	return &TransactionEvent{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes an event and rejects unknown kinds or an
// empty id.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind != TransactionCreated && msg.Kind != TransactionDeleted {
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("event %s without transaction id", msg.Kind)
	}
	return &msg, nil
}
