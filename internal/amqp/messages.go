package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Reasons carried by DatasetChangedMessage.
const (
	ReasonImport = "import"
	ReasonReset  = "reset"
)

// DatasetChangedMessage tells every replica that the stored transactions
// changed and cached snapshots are stale.
type DatasetChangedMessage struct {
	ID        string    `json:"id"`
	Reason    string    `json:"reason"`
	Rows      int       `json:"rows"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetChangedMessage stamps a new event from the given instance.
func NewDatasetChangedMessage(origin, reason string, rows int) *DatasetChangedMessage {
	return &DatasetChangedMessage{
		ID:        uuid.NewString(),
		Reason:    reason,
		Rows:      rows,
		Origin:    origin,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetChangedMessageFromJSON decodes a message body.
func DatasetChangedMessageFromJSON(data []byte) (*DatasetChangedMessage, error) {
	var msg DatasetChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
