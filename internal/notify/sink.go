package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/notification"
	"github.com/crewbooks/crewbooks/internal/model/user"
)

type NotificationStore interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListByRecipient(ctx context.Context, workerID string) ([]notification.Notification, error)
	CountUnread(ctx context.Context, workerID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, workerID string) error
}

type RecipientResolver interface {
	FindByID(ctx context.Context, id string) (user.User, error)
}

// Sink is the per-user queue of lifecycle events, consumed by polling
// clients.
type Sink struct {
	store NotificationStore
	users RecipientResolver
	log   *slog.Logger
	now   func() time.Time
}

func NewSink(store NotificationStore, users RecipientResolver, log *slog.Logger) *Sink {
	return &Sink{
		store: store,
		users: users,
		log:   log,
		now:   time.Now,
	}
}

// Enqueue is best-effort: an unresolvable recipient is an expected condition
// (e.g. a worker without an assigned manager), not an error path. Store
// failures are logged and swallowed for the same reason — the transaction
// state commit must not depend on the notification write.
func (s *Sink) Enqueue(ctx context.Context,
	recipientID string, nType notification.Type, transactionID, message string,
) {
	if _, err := s.users.FindByID(ctx, recipientID); err != nil {
		s.log.LogAttrs(ctx,
			slog.LevelDebug,
			"notification dropped: recipient does not resolve",
			slog.String("recipient", recipientID),
		)
		return
	}

	n := notification.Notification{
		ID:            uuid.NewString(),
		WorkerID:      recipientID,
		Type:          nType,
		TransactionID: transactionID,
		Message:       message,
		IsRead:        false,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Create(ctx, &n); err != nil {
		s.log.LogAttrs(ctx,
			slog.LevelError,
			"failed to enqueue notification",
			slog.String("recipient", recipientID),
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

// ListFor returns every notification ever created for the recipient,
// newest first.
func (s *Sink) ListFor(ctx context.Context, recipientID string,
) ([]notification.Notification, error) {
	ns, err := s.store.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", recipientID, err)
	}
	return ns, nil
}

func (s *Sink) UnreadCountFor(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.store.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread for %s: %w", recipientID, err)
	}
	return count, nil
}

func (s *Sink) MarkRead(ctx context.Context, notificationID string) error {
	if err := s.store.MarkRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	return nil
}

func (s *Sink) MarkAllRead(ctx context.Context, recipientID string) error {
	if err := s.store.MarkAllRead(ctx, recipientID); err != nil {
		return fmt.Errorf("failed to mark all read for %s: %w", recipientID, err)
	}
	return nil
}
