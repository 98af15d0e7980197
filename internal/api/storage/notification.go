package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/model"
)

func (s *Storage) ListNotifications(ctx context.Context, recipientID string, limit int) ([]model.Notification, error) {
	query := `
		SELECT
			notification_id, event_id, recipient_id, recipient_type,
			kind, message, reference_id, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, notification_id DESC
		LIMIT $2
	`

	notifications := []model.Notification{}
	if err := s.db.SelectContext(ctx, &notifications, query, recipientID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

func (s *Storage) MarkNotificationRead(ctx context.Context, notificationID, recipientID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1 AND recipient_id = $2`

	res, err := s.db.ExecContext(ctx, query, notificationID, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	ok, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
