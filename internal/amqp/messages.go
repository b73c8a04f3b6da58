package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a ledger mutation.
type EventType string

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
)

// LedgerEvent is a lightweight notification about a transaction mutation.
// It carries identifiers only; consumers read current state from storage.
// AccountID is the account the transaction references after the mutation
// (for deletes, the one it referenced before).
type LedgerEvent struct {
	Event         EventType `json:"event"`
	TransactionID string    `json:"transaction_id"`
	AccountID     string    `json:"account_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewLedgerEvent(event EventType, transactionID, accountID string) *LedgerEvent {
	return &LedgerEvent{
		Event:         event,
		TransactionID: transactionID,
		AccountID:     accountID,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and sanity-checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Event {
	case TransactionCreated, TransactionUpdated, TransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown event %q", msg.Event)
	}
	if msg.TransactionID == "" {
		return nil, fmt.Errorf("event %s without transaction id", msg.Event)
	}
	return &msg, nil
}
