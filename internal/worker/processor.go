package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cuongbtq/jobsnearby/internal/events"
	"github.com/cuongbtq/jobsnearby/internal/worker/domain"
	"github.com/google/uuid"
)

// processEvent runs the handler for msg.Type under the per-event timeout.
// Transient failures come back as RetryableError on first delivery and as
// ErrMaxRetriesExceeded once the broker has already redelivered the message.
func (w *Worker) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	w.logger.Info("Processing event",
		slog.String("event_id", msg.EventID),
		slog.String("type", msg.Type),
		slog.Bool("redelivered", msg.Delivery.Redelivered),
	)

	eventCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		eventCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	var err error
	switch msg.Type {
	case events.TypeJobCreated, events.TypeJobUpdated:
		err = w.handleJobChanged(eventCtx, msg)
	case events.TypeJobDeleted:
		err = w.handleJobDeleted(eventCtx, msg)
	case events.TypeApplicationSubmitted,
		events.TypeApplicationWithdrawn,
		events.TypeApplicationStatusChanged:
		err = w.handleApplicationEvent(eventCtx, msg)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownEventType, msg.Type)
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidEvent) {
		return err
	}
	if msg.Delivery.Redelivered {
		return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, err)
	}
	return domain.NewRetryableError(err)
}

func decodeJobPayload(msg *domain.EventMessage) (*events.JobPayload, error) {
	var payload events.JobPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}
	if payload.JobID == "" {
		return nil, fmt.Errorf("%w: job_id is required", domain.ErrInvalidEvent)
	}
	return &payload, nil
}

func decodeApplicationPayload(msg *domain.EventMessage) (*events.ApplicationPayload, error) {
	var payload events.ApplicationPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidEvent, err)
	}
	if payload.ApplicationID == "" || payload.EmployerID == "" || payload.JobSeekerID == "" {
		return nil, fmt.Errorf("%w: application_id, employer_id and job_seeker_id are required", domain.ErrInvalidEvent)
	}
	return &payload, nil
}

func (w *Worker) handleJobChanged(ctx context.Context, msg *domain.EventMessage) error {
	if _, err := decodeJobPayload(msg); err != nil {
		return err
	}
	return w.invalidateSearchCache(ctx, msg)
}

func (w *Worker) handleJobDeleted(ctx context.Context, msg *domain.EventMessage) error {
	payload, err := decodeJobPayload(msg)
	if err != nil {
		return err
	}

	if err := w.invalidateSearchCache(ctx, msg); err != nil {
		return err
	}

	notifications := make([]domain.Notification, 0, len(payload.ApplicantIDs))
	for _, seekerID := range payload.ApplicantIDs {
		notifications = append(notifications, w.newNotification(msg,
			seekerID, domain.RecipientJobSeeker, payload.JobID,
			fmt.Sprintf("The job %q you applied to has been removed", payload.JobTitle),
		))
	}

	return w.notify(ctx, msg, notifications)
}

func (w *Worker) handleApplicationEvent(ctx context.Context, msg *domain.EventMessage) error {
	payload, err := decodeApplicationPayload(msg)
	if err != nil {
		return err
	}

	var n domain.Notification
	switch msg.Type {
	case events.TypeApplicationSubmitted:
		n = w.newNotification(msg, payload.EmployerID, domain.RecipientEmployer, payload.ApplicationID,
			fmt.Sprintf("%s applied to %q", seekerLabel(payload.SeekerName), payload.JobTitle))
	case events.TypeApplicationWithdrawn:
		n = w.newNotification(msg, payload.EmployerID, domain.RecipientEmployer, payload.JobID,
			fmt.Sprintf("%s withdrew their application to %q", seekerLabel(payload.SeekerName), payload.JobTitle))
	case events.TypeApplicationStatusChanged:
		if payload.Status == "" {
			return fmt.Errorf("%w: status is required", domain.ErrInvalidEvent)
		}
		n = w.newNotification(msg, payload.JobSeekerID, domain.RecipientJobSeeker, payload.ApplicationID,
			fmt.Sprintf("Your application to %q is now %s", payload.JobTitle, statusLabel(payload.Status)))
	}

	return w.notify(ctx, msg, []domain.Notification{n})
}

func (w *Worker) invalidateSearchCache(ctx context.Context, msg *domain.EventMessage) error {
	if w.cache == nil {
		return nil
	}

	removed, err := w.cache.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("failed to invalidate search cache: %w", err)
	}

	w.logger.Info("Search cache invalidated",
		slog.String("event_id", msg.EventID),
		slog.Int("keys_removed", removed),
	)
	return nil
}

func (w *Worker) notify(ctx context.Context, msg *domain.EventMessage, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	inserted, err := w.store.InsertNotifications(ctx, notifications)
	if err != nil {
		return fmt.Errorf("failed to write notifications: %w", err)
	}

	w.logger.Info("Notifications written",
		slog.String("event_id", msg.EventID),
		slog.Int("inserted", inserted),
	)
	return nil
}

func (w *Worker) newNotification(msg *domain.EventMessage, recipientID, recipientType, referenceID, message string) domain.Notification {
	return domain.Notification{
		NotificationID: uuid.NewString(),
		EventID:        msg.EventID,
		RecipientID:    recipientID,
		RecipientType:  recipientType,
		Kind:           msg.Type,
		Message:        message,
		ReferenceID:    referenceID,
		CreatedAt:      w.now().UTC(),
	}
}

func seekerLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return "A job seeker"
	}
	return name
}

func statusLabel(status string) string {
	return strings.ReplaceAll(status, "_", " ")
}
