package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by transaction event messages.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEventMessage tells the worker that a transaction changed and
// which budget period it lands in. The worker re-reads everything else from
// the database, so the message stays small and stale-proof.
type TransactionEventMessage struct {
	UserID        int64     `json:"userId"`
	TransactionID int64     `json:"transactionId"`
	Action        string    `json:"action"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEventMessage builds an event for one transaction mutation.
func NewTransactionEventMessage(userID, transactionID int64, action string, month, year int) *TransactionEventMessage {
	return &TransactionEventMessage{
		UserID:        userID,
		TransactionID: transactionID,
		Action:        action,
		Month:         month,
		Year:          year,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON parses a message from JSON bytes.
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
