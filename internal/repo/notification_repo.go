package repo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crewbooks/crewbooks/internal/model/notification"
)

type NotificationRepository struct {
	DB
}

func NewNotificationRepository(pool connectionPool, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	createLogic := func() (struct{}, error) {
		const query = `
INSERT INTO notifications (id, worker_id, type, transaction_id, message, is_read, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

		_, err := r.pool.Exec(ctx, query,
			n.ID, n.WorkerID, string(n.Type), n.TransactionID, n.Message, n.IsRead, n.CreatedAt)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to create notification in DB: %w", err)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](createLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, workerID string,
) ([]notification.Notification, error) {
	listLogic := func() ([]notification.Notification, error) {
		const query = `
SELECT id, worker_id, type, transaction_id, message, is_read, created_at
  FROM notifications
 WHERE worker_id = $1
 ORDER BY created_at DESC`

		rows, err := r.pool.Query(ctx, query, workerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list notifications: %w", err)
		}
		defer rows.Close()

		ns := make([]notification.Notification, 0)
		for rows.Next() {
			var (
				n  notification.Notification
				tp string
			)
			if err := rows.Scan(&n.ID, &n.WorkerID, &tp, &n.TransactionID,
				&n.Message, &n.IsRead, &n.CreatedAt); err != nil {
				return nil, fmt.Errorf("failed to read notification row: %w", err)
			}
			n.Type = notification.Type(tp)
			ns = append(ns, n)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read notification rows: %w", err)
		}
		return ns, nil
	}

	return WithRetry[[]notification.Notification](listLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func (r *NotificationRepository) CountUnread(ctx context.Context, workerID string) (int64, error) {
	countLogic := func() (int64, error) {
		var count int64
		err := r.pool.QueryRow(ctx,
			`SELECT count(*) FROM notifications WHERE worker_id = $1 AND NOT is_read`,
			workerID).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("failed to count unread notifications: %w", err)
		}
		return count, nil
	}

	return WithRetry[int64](countLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// MarkRead is idempotent: marking a read or unknown notification is a no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	markLogic := func() (struct{}, error) {
		_, err := r.pool.Exec(ctx,
			`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to mark notification read: %w", err)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](markLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

// MarkAllRead flips every unread notification for the recipient in one
// statement, so callers never observe a partial application.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, workerID string) error {
	markLogic := func() (struct{}, error) {
		_, err := r.pool.Exec(ctx,
			`UPDATE notifications SET is_read = TRUE WHERE worker_id = $1 AND NOT is_read`,
			workerID)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to mark all notifications read: %w", err)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](markLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}
