package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Record-lifecycle event types published by the outbox processor.
const (
	EventPatientCreated = "PATIENT_CREATED"
	EventPatientUpdated = "PATIENT_UPDATED"
	EventPatientDeleted = "PATIENT_DELETED"
	EventSadtIssued     = "SADT_ISSUED"
	EventSadtCancelled  = "SADT_CANCELLED"
	EventSadtPerformed  = "SADT_PERFORMED"
)

type OutboxEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	EventType   string          `db:"event_type" json:"event_type"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      OutboxStatus    `db:"status" json:"status"`
	Error       *string         `db:"error" json:"error,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// NewOutboxEvent marshals payload; a marshal failure is a programming error
// and yields an event with a null payload rather than dropping the record.
func NewOutboxEvent(eventType string, payload interface{}) *OutboxEvent {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("null")
	}
	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   data,
		Status:    OutboxStatusPending,
		CreatedAt: time.Now(),
	}
}
