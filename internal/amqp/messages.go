package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finboard/internal/core"
)

// Op says what the mirror should do with the record.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// RecordSyncMessage is a lightweight pointer to a changed record. The worker
// loads the current row itself, so the message never carries record data.
type RecordSyncMessage struct {
	Kind      core.Kind `json:"kind"`
	ID        int64     `json:"id"`
	Op        Op        `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(kind core.Kind, id int64, op Op) *RecordSyncMessage {
	return &RecordSyncMessage{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes and checks a message body.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidKind, msg.Kind)
	}
	if msg.Op != OpUpsert && msg.Op != OpDelete {
		return nil, fmt.Errorf("unknown sync op %q", msg.Op)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid record id %d", msg.ID)
	}
	return &msg, nil
}
