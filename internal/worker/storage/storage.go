package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/jobsnearby/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

const insertNotificationQuery = `
	INSERT INTO notifications (
		notification_id, event_id, recipient_id, recipient_type,
		kind, message, reference_id, created_at
	) VALUES (
		:notification_id, :event_id, :recipient_id, :recipient_type,
		:kind, :message, :reference_id, :created_at
	)
	ON CONFLICT (event_id, recipient_id) DO NOTHING
`

// InsertNotifications writes all rows in one transaction and returns how many
// were new. Rows already written for the same event and recipient are skipped,
// so a redelivered event never notifies anyone twice.
func (s *Storage) InsertNotifications(ctx context.Context, notifications []domain.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, n := range notifications {
		res, err := tx.NamedExecContext(ctx, insertNotificationQuery, n)
		if err != nil {
			return 0, fmt.Errorf("failed to insert notification: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit notifications: %w", err)
	}

	if inserted < len(notifications) {
		s.logger.Info("Skipped notifications already written",
			slog.String("event_id", notifications[0].EventID),
			slog.Int("skipped", len(notifications)-inserted),
		)
	}

	return inserted, nil
}

// PurgeReadNotifications deletes read notifications created before olderThan
func (s *Storage) PurgeReadNotifications(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		DELETE FROM notifications
		WHERE is_read = TRUE AND created_at < $1
	`

	result, err := s.db.ExecContext(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
