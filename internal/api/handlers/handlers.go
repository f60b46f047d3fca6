package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/notification"
	"github.com/crewbooks/crewbooks/internal/model/statistic"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/repo"
	"github.com/crewbooks/crewbooks/internal/review"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
	"github.com/crewbooks/crewbooks/internal/statscache"
)

type ReviewEngine interface {
	Submit(ctx context.Context,
		workerID string, req review.SubmitRequest) (transaction.Transaction, error)
	Review(ctx context.Context,
		transactionID, reviewerID, action, comment string) (transaction.Transaction, error)
}

type NotificationService interface {
	ListFor(ctx context.Context, recipientID string) ([]notification.Notification, error)
	UnreadCountFor(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context, recipientID string) error
}

type Statistics interface {
	CurrentTotals(ctx context.Context) (statistic.Totals, error)
	HistoricalTotals(ctx context.Context, days int) ([]statistic.Totals, error)
	HourlyGrowth(ctx context.Context) ([]statistic.HourlyBucket, error)
}

type TransactionQueries interface {
	ListByWorker(ctx context.Context,
		workerID string, status *transaction.Status) ([]transaction.Transaction, error)
	ListByManager(ctx context.Context,
		managerID string, status *transaction.Status) ([]transaction.Transaction, error)
	ListByStatus(ctx context.Context,
		status transaction.Status) ([]transaction.Transaction, error)
	ListByStatusPaged(ctx context.Context,
		status transaction.Status, page, size int) (repo.PagedTransactions, error)
	ListFiltered(ctx context.Context, status *transaction.Status,
		workerUsername string, page, size int) (repo.PagedTransactions, error)
	CountByStatus(ctx context.Context, status transaction.Status) (int64, error)
}

type UserDirectory interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id string) (user.User, error)
	FindByUsername(ctx context.Context, username string) (user.User, error)
	List(ctx context.Context, role *user.Role) ([]user.User, error)
	AssignManager(ctx context.Context, workerID, managerID string) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	engine ReviewEngine
	sink   NotificationService
	stats  Statistics
	txs    TransactionQueries
	users  UserDirectory
	cache  *statscache.Cache
	db     Pinger
	log    *slog.Logger
	secret []byte
}

func New(engine ReviewEngine, sink NotificationService, stats Statistics,
	txs TransactionQueries, users UserDirectory, cache *statscache.Cache,
	db Pinger, secret []byte, log *slog.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		engine: engine,
		sink:   sink,
		stats:  stats,
		txs:    txs,
		users:  users,
		cache:  cache,
		db:     db,
		log:    log,
		secret: secret,
	}
}

func (h *HTTPHandler) Ping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), model.DefaultTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, r *http.Request,
	code int, payload any,
) {
	w.Header().Set(model.HeaderContentType, "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.LogAttrs(r.Context(),
			slog.LevelError,
			"failed to encode response",
			slog.Any(model.KeyLoggerError, err),
		)
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *serviceerrs.ValidationError

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, serviceerrs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, serviceerrs.ErrInvalidAction),
		errors.As(err, &validationErr):
		code = http.StatusBadRequest
	case errors.Is(err, serviceerrs.ErrAlreadyReviewed),
		errors.Is(err, serviceerrs.ErrUserExists):
		code = http.StatusConflict
	case errors.Is(err, serviceerrs.ErrWrongPassword),
		errors.Is(err, serviceerrs.ErrUserInactive),
		errors.Is(err, serviceerrs.ErrTokenExpired):
		code = http.StatusUnauthorized
	}

	if code == http.StatusInternalServerError {
		h.log.LogAttrs(r.Context(),
			slog.LevelError,
			"request failed",
			slog.String("path", r.URL.Path),
			slog.Any(model.KeyLoggerError, err),
		)
		http.Error(w, http.StatusText(code), code)
		return
	}
	http.Error(w, err.Error(), code)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return serviceerrs.NewValidation("body", "malformed JSON")
	}
	return nil
}
