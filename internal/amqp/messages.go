package amqp

import (
	"encoding/json"
	"time"
)

// PeriodClosedMessage announces that a monthly rollover closed a period. The
// export worker fetches the archived ledger from the database by period, so
// the message only carries identifiers and counters.
type PeriodClosedMessage struct {
	Period    string    `json:"period"`
	Advanced  int64     `json:"advanced"`
	Archived  int64     `json:"archived"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPeriodClosedMessage creates a period-closed message stamped with now.
func NewPeriodClosedMessage(period string, advanced, archived int64) *PeriodClosedMessage {
	return &PeriodClosedMessage{
		Period:    period,
		Advanced:  advanced,
		Archived:  archived,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PeriodClosedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodClosedMessageFromJSON creates a message from JSON bytes
func PeriodClosedMessageFromJSON(data []byte) (*PeriodClosedMessage, error) {
	var msg PeriodClosedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
