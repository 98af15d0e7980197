// Package events defines the messages the API publishes after state changes
// and the worker consumes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types double as RabbitMQ routing keys
const (
	TypeJobCreated               = "job.created"
	TypeJobUpdated               = "job.updated"
	TypeJobDeleted               = "job.deleted"
	TypeApplicationSubmitted     = "application.submitted"
	TypeApplicationStatusChanged = "application.status_changed"
	TypeApplicationWithdrawn     = "application.withdrawn"
)

const contentTypeJSON = "application/json"

// Event is the envelope every message is wrapped in
type Event struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// JobPayload accompanies job.* events
type JobPayload struct {
	JobID        string   `json:"job_id"`
	EmployerID   string   `json:"employer_id"`
	JobTitle     string   `json:"job_title"`
	ApplicantIDs []string `json:"applicant_ids,omitempty"`
}

// ApplicationPayload accompanies application.* events
type ApplicationPayload struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	JobTitle      string `json:"job_title"`
	EmployerID    string `json:"employer_id"`
	JobSeekerID   string `json:"job_seeker_id"`
	SeekerName    string `json:"seeker_name,omitempty"`
	Status        string `json:"status"`
}

// New wraps payload in an envelope with a fresh event id
func New(eventType string, payload interface{}) (*Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Broker is the slice of the RabbitMQ client the publisher needs
type Broker interface {
	PublishWithRetry(ctx context.Context, routingKey, messageID string, body []byte, contentType string) error
}

// RabbitPublisher publishes events to the configured exchange
type RabbitPublisher struct {
	broker Broker
	logger *slog.Logger
}

// NewRabbitPublisher creates a publisher on top of broker
func NewRabbitPublisher(broker Broker, logger *slog.Logger) *RabbitPublisher {
	return &RabbitPublisher{broker: broker, logger: logger}
}

// Publish serializes the envelope and sends it with the event type as routing key
func (p *RabbitPublisher) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.broker.PublishWithRetry(ctx, event.Type, event.EventID, body, contentTypeJSON); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published",
		slog.String("event_id", event.EventID),
		slog.String("type", event.Type),
	)
	return nil
}
