package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotMessage announces a freshly stored balance snapshot. It carries
// the snapshot itself so consumers need no read access to the archive.
type SnapshotMessage struct {
	Account   string    `json:"account"`
	Cents     int64     `json:"cents"`
	Currency  string    `json:"currency"`
	TakenAt   time.Time `json:"taken_at"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSnapshotMessage creates a snapshot announcement.
func NewSnapshotMessage(account string, cents int64, currency string, takenAt time.Time) *SnapshotMessage {
	return &SnapshotMessage{
		Account:   account,
		Cents:     cents,
		Currency:  currency,
		TakenAt:   takenAt,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SnapshotMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotMessageFromJSON creates a message from JSON bytes
func SnapshotMessageFromJSON(data []byte) (*SnapshotMessage, error) {
	var msg SnapshotMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
