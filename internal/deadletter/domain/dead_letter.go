// Package domain defines the record kept for deliveries rejected without requeue.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DeadLetter is a copy of a delivery the consumer rejected. The broker has already
// dropped the message; this row only exists for inspection.
type DeadLetter struct {
	ID         uuid.UUID `json:"id"`
	Queue      string    `json:"queue"`
	RoutingKey string    `json:"routingKey"`
	EventType  string    `json:"eventType"`
	Payload    []byte    `json:"-"`
	Error      string    `json:"error"`
	CreatedAt  time.Time `json:"createdAt"`
}

// EventTypeOf extracts the "type" discriminant of a payload, or "" when the payload
// is not a JSON object carrying one.
func EventTypeOf(payload []byte) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return ""
	}
	return head.Type
}
