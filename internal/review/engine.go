package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/notification"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

const (
	msgAccepted = "Your transaction has been accepted"
	msgRejected = "Your transaction has been rejected"
	msgComment  = "Manager left a comment: "
)

type TransactionStore interface {
	Create(ctx context.Context, t *transaction.Transaction) error
	FindByID(ctx context.Context, id string) (transaction.Transaction, error)
	ApplyReview(ctx context.Context, t *transaction.Transaction) error
}

type UserResolver interface {
	FindByID(ctx context.Context, id string) (user.User, error)
}

type NotificationSink interface {
	Enqueue(ctx context.Context,
		recipientID string, nType notification.Type, transactionID, message string)
}

// Engine owns the transaction state machine: PENDING is the sole initial
// state, ACCEPTED, REJECTED and COMMENTED are terminal.
type Engine struct {
	txs    TransactionStore
	users  UserResolver
	sink   NotificationSink
	now    func() time.Time
	strict bool
}

// New builds an Engine. With strict enabled, reviewing an already-terminal
// transaction fails with ErrAlreadyReviewed; otherwise the review overwrites
// the previous one and notifies again.
func New(txs TransactionStore, users UserResolver, sink NotificationSink, strict bool) *Engine {
	return &Engine{
		txs:    txs,
		users:  users,
		sink:   sink,
		now:    time.Now,
		strict: strict,
	}
}

// WithClock overrides the engine's time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// SubmitRequest carries the submission payload. Amount and WeightKg are
// decimal-formatted strings, never binary floats.
type SubmitRequest struct {
	Type        string
	Amount      string
	Currency    string
	Product     string
	Source      string
	Description string
	WeightKg    string
}

func (e *Engine) Submit(ctx context.Context,
	workerID string, req SubmitRequest,
) (transaction.Transaction, error) {
	tp, err := transaction.ParseType(req.Type)
	if err != nil {
		return transaction.Transaction{}, serviceerrs.NewValidation("type", err.Error())
	}
	amount, err := model.ParseAmount(req.Amount)
	if err != nil {
		return transaction.Transaction{}, serviceerrs.NewValidation("amount", err.Error())
	}
	weight, err := model.ParseAmount(req.WeightKg)
	if err != nil {
		return transaction.Transaction{}, serviceerrs.NewValidation("weightKg", err.Error())
	}

	worker, err := e.users.FindByID(ctx, workerID)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("failed to resolve worker: %w", err)
	}

	t := transaction.Transaction{
		ID:          uuid.NewString(),
		WorkerID:    worker.ID,
		WorkerName:  worker.FullName,
		ManagerID:   worker.AssignedManagerID,
		Type:        tp,
		Status:      transaction.StatusPending,
		Amount:      amount,
		Currency:    req.Currency,
		Product:     req.Product,
		Source:      req.Source,
		Description: req.Description,
		WeightKg:    weight,
		CreatedAt:   e.now().UTC(),
	}
	if err := e.txs.Create(ctx, &t); err != nil {
		return transaction.Transaction{}, fmt.Errorf("failed to persist submission: %w", err)
	}

	if t.ManagerID != nil {
		e.sink.Enqueue(ctx, *t.ManagerID, notification.TypeNewTransaction, t.ID,
			"New transaction from "+worker.FullName)
	}

	return t, nil
}

// Review transitions the transaction and makes the reviewer the
// manager-of-record, regardless of the original assignment. State, manager,
// comment and review time commit as one unit; the worker notification is a
// best-effort side effect enqueued after the commit.
func (e *Engine) Review(ctx context.Context,
	transactionID, reviewerID, action, comment string,
) (transaction.Transaction, error) {
	act, err := transaction.ParseAction(action)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("%w: %q", serviceerrs.ErrInvalidAction, action)
	}

	t, err := e.txs.FindByID(ctx, transactionID)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("failed to resolve transaction: %w", err)
	}
	if e.strict && t.Status.Terminal() {
		return transaction.Transaction{},
			fmt.Errorf("transaction %s is %s: %w", t.ID, t.Status, serviceerrs.ErrAlreadyReviewed)
	}

	reviewer, err := e.users.FindByID(ctx, reviewerID)
	if err != nil {
		return transaction.Transaction{}, fmt.Errorf("failed to resolve reviewer: %w", err)
	}

	reviewedAt := e.now().UTC()
	t.Status = act.Status()
	t.ManagerID = &reviewer.ID
	t.ManagerName = &reviewer.FullName
	t.ManagerComment = &comment
	t.ReviewedAt = &reviewedAt
	if err := e.txs.ApplyReview(ctx, &t); err != nil {
		return transaction.Transaction{}, fmt.Errorf("failed to apply review: %w", err)
	}

	e.sink.Enqueue(ctx, t.WorkerID, notification.Type(act), t.ID,
		reviewMessage(act, comment))

	return t, nil
}

func reviewMessage(act transaction.Action, comment string) string {
	switch act {
	case transaction.ActionAccept:
		return msgAccepted
	case transaction.ActionReject:
		return msgRejected
	case transaction.ActionComment:
		return msgComment + comment
	}
	return ""
}
