package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"finlens/internal/core"
)

// RecordSyncMessage announces a committed record. It carries only the
// identifiers; the worker loads the record from the database.
type RecordSyncMessage struct {
	ID        string    `json:"id"`
	Kind      core.Kind `json:"kind"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

var ErrMalformedMessage = errors.New("malformed record sync message")

func NewRecordSyncMessage(id string, kind core.Kind, userID string) *RecordSyncMessage {
	return &RecordSyncMessage{
		ID:        id,
		Kind:      kind,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes and checks a message body.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || !msg.Kind.IsValid() {
		return nil, ErrMalformedMessage
	}
	return &msg, nil
}
