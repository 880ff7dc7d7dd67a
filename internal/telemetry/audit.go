package telemetry

import (
	"context"
	"log"
	"time"
)

// Publisher is the slice of the event publisher the emitter needs.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter publishes audit records for security-relevant actions:
// logins, password resets, message writes. A nil emitter or publisher
// silently drops records, so handlers never guard their Emit calls.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type AuditRecord struct {
	SchemaVersion int     `json:"schemaVersion"`
	Service       string  `json:"service"`
	Environment   string  `json:"environment"`
	OccurredAt    string  `json:"occurredAt"`
	RequestID     string  `json:"requestId,omitempty"`
	UserID        *string `json:"userId,omitempty"`
	Level         string  `json:"level"`
	Message       string  `json:"message"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, userID *string) {
	if e == nil || e.publisher == nil {
		return
	}

	record := AuditRecord{
		SchemaVersion: 1,
		Service:       e.service,
		Environment:   e.environment,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:     requestID,
		UserID:        userID,
		Level:         level,
		Message:       text,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, record); err != nil {
		log.Printf("audit publish failed: %v", err)
	}
}
