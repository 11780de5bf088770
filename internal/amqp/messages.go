package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"gastos/internal/core"
)

const ImportCompletedType = "import.completed"

// ImportCompletedMessage announces a finished import. It carries only the
// import metadata, never the transactions.
type ImportCompletedMessage struct {
	Type      string            `json:"type"`
	Import    core.ImportRecord `json:"import"`
	Timestamp time.Time         `json:"timestamp"`
}

func NewImportCompletedMessage(rec core.ImportRecord) *ImportCompletedMessage {
	return &ImportCompletedMessage{
		Type:      ImportCompletedType,
		Import:    rec,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ImportCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportCompletedMessageFromJSON decodes and validates a message body.
func ImportCompletedMessageFromJSON(data []byte) (*ImportCompletedMessage, error) {
	var msg ImportCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != ImportCompletedType {
		return nil, errors.New("unexpected message type " + msg.Type)
	}
	if msg.Import.ID == "" {
		return nil, errors.New("missing import id")
	}
	return &msg, nil
}
