package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finsight/internal/core"
)

// TransactionRecordedMessage notifies the alert worker that a transaction
// was committed to the ledger. It carries enough to evaluate the affected
// category; the worker re-reads spend from the store, never from here.
type TransactionRecordedMessage struct {
	EventID       string    `json:"event_id"`
	TransactionID int64     `json:"transaction_id"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionRecordedMessage creates a message for a committed transaction.
func NewTransactionRecordedMessage(t core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		EventID:       uuid.NewString(),
		TransactionID: t.ID,
		Category:      t.Category,
		Amount:        t.Amount.StringFixed(2),
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON creates a message from JSON bytes
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
