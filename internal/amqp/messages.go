package amqp

import (
	"encoding/json"
	"time"
)

// RecomputeMessage asks the worker to recompute derived savings for one user
// and day. It carries only identifiers; the worker reads the current budgets
// and expenses from the database, so a stale message still produces a correct
// result.
type RecomputeMessage struct {
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
}

// NewRecomputeMessage creates a recompute message for the given user and day.
func NewRecomputeMessage(userID int64, date string) *RecomputeMessage {
	return &RecomputeMessage{
		UserID:    userID,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecomputeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecomputeMessageFromJSON creates a message from JSON bytes
func RecomputeMessageFromJSON(data []byte) (*RecomputeMessage, error) {
	var msg RecomputeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
