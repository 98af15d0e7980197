package domain

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Recipient types match the user types the API stores in sessions
const (
	RecipientJobSeeker = "jobSeeker"
	RecipientEmployer  = "employer"
)

// EventMessage is a delivery routed to the worker pool
type EventMessage struct {
	EventID  string
	Type     string
	Payload  []byte
	Delivery amqp.Delivery
}

// Notification is a row written for one recipient of one event
type Notification struct {
	NotificationID string    `db:"notification_id"`
	EventID        string    `db:"event_id"`
	RecipientID    string    `db:"recipient_id"`
	RecipientType  string    `db:"recipient_type"`
	Kind           string    `db:"kind"`
	Message        string    `db:"message"`
	ReferenceID    string    `db:"reference_id"`
	CreatedAt      time.Time `db:"created_at"`
}
