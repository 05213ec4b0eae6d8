package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// DocumentChangedMessage announces that a new document version was saved.
// It carries no payload; consumers read the document from the store.
type DocumentChangedMessage struct {
	Key       string    `json:"key"`
	Version   uint64    `json:"version"`
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDocumentChangedMessage(key string, version uint64, command string) *DocumentChangedMessage {
	return &DocumentChangedMessage{
		Key:       key,
		Version:   version,
		Command:   command,
		Timestamp: time.Now().UTC(),
	}
}

func (m *DocumentChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DocumentChangedMessageFromJSON decodes a message; the key is required.
func DocumentChangedMessageFromJSON(data []byte) (*DocumentChangedMessage, error) {
	var msg DocumentChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, errors.New("message has no document key")
	}
	return &msg, nil
}
