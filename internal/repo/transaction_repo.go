package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

const txSelect = `
SELECT t.id, t.worker_id, w.full_name, t.manager_id, m.full_name,
       t.type, t.status, t.amount, t.currency, t.product, t.source,
       t.description, t.weight_kg, t.manager_comment, t.created_at, t.reviewed_at
  FROM transactions t
  JOIN users w ON w.id = t.worker_id
  LEFT JOIN users m ON m.id = t.manager_id`

type TransactionRepository struct {
	DB
}

func NewTransactionRepository(pool connectionPool, log *slog.Logger) *TransactionRepository {
	return &TransactionRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	createLogic := func() (struct{}, error) {
		const query = `
INSERT INTO transactions
       (id, worker_id, manager_id, type, status, amount, currency,
        product, source, description, weight_kg, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

		_, err := r.pool.Exec(ctx, query,
			t.ID, t.WorkerID, t.ManagerID, string(t.Type), string(t.Status),
			model.ToPGNumeric(t.Amount), t.Currency, t.Product, t.Source,
			t.Description, model.ToPGNumeric(t.WeightKg), t.CreatedAt)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to create transaction in DB: %w", err)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](createLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string,
) (transaction.Transaction, error) {
	findLogic := func() (transaction.Transaction, error) {
		row := r.pool.QueryRow(ctx, txSelect+` WHERE t.id = $1`, id)
		t, err := scanTransaction(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return transaction.Transaction{},
				fmt.Errorf("transaction %s: %w", id, serviceerrs.ErrNotFound)
		}
		if err != nil {
			return transaction.Transaction{},
				fmt.Errorf("failed to find transaction %s: %w", id, err)
		}
		return t, nil
	}

	return WithRetry[transaction.Transaction](findLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// ApplyReview commits status, manager, comment and review time as one unit.
func (r *TransactionRepository) ApplyReview(ctx context.Context, t *transaction.Transaction) error {
	reviewLogic := func() (struct{}, error) {
		const query = `
UPDATE transactions
   SET status = $1, manager_id = $2, manager_comment = $3, reviewed_at = $4
 WHERE id = $5`

		res, err := r.pool.Exec(ctx, query,
			string(t.Status), t.ManagerID, t.ManagerComment, t.ReviewedAt, t.ID)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to review transaction %s: %w", t.ID, err)
		}
		if res.RowsAffected() == 0 {
			return struct{}{}, fmt.Errorf("transaction %s: %w", t.ID, serviceerrs.ErrNotFound)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](reviewLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

func (r *TransactionRepository) ListByWorker(ctx context.Context,
	workerID string, status *transaction.Status,
) ([]transaction.Transaction, error) {
	query := txSelect + ` WHERE t.worker_id = $1 ORDER BY t.created_at DESC`
	args := []any{workerID}
	if status != nil {
		query = txSelect + ` WHERE t.worker_id = $1 AND t.status = $2 ORDER BY t.created_at DESC`
		args = append(args, string(*status))
	}
	return r.list(ctx, query, args...)
}

func (r *TransactionRepository) ListByManager(ctx context.Context,
	managerID string, status *transaction.Status,
) ([]transaction.Transaction, error) {
	query := txSelect + ` WHERE t.manager_id = $1 ORDER BY t.created_at DESC`
	args := []any{managerID}
	if status != nil {
		query = txSelect + ` WHERE t.manager_id = $1 AND t.status = $2 ORDER BY t.created_at DESC`
		args = append(args, string(*status))
	}
	return r.list(ctx, query, args...)
}

func (r *TransactionRepository) ListByStatus(ctx context.Context,
	status transaction.Status,
) ([]transaction.Transaction, error) {
	return r.list(ctx,
		txSelect+` WHERE t.status = $1 ORDER BY t.created_at DESC`,
		string(status))
}

// ListAcceptedInRange returns accepted transactions created within
// [from, to], oldest first.
func (r *TransactionRepository) ListAcceptedInRange(ctx context.Context,
	from, to time.Time,
) ([]transaction.Transaction, error) {
	return r.list(ctx,
		txSelect+` WHERE t.status = $1 AND t.created_at BETWEEN $2 AND $3
 ORDER BY t.created_at ASC`,
		string(transaction.StatusAccepted), from, to)
}

func (r *TransactionRepository) CountByStatus(ctx context.Context,
	status transaction.Status,
) (int64, error) {
	countLogic := func() (int64, error) {
		var count int64
		err := r.pool.QueryRow(ctx,
			`SELECT count(*) FROM transactions WHERE status = $1`,
			string(status)).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("failed to count transactions by status: %w", err)
		}
		return count, nil
	}

	return WithRetry[int64](countLogic, 0) //nolint: wrapcheck // error from wrapped function
}

type PagedTransactions struct {
	Content    []transaction.Transaction
	TotalCount int64
}

// ListByStatusPaged pages newest first; page is zero-based.
func (r *TransactionRepository) ListByStatusPaged(ctx context.Context,
	status transaction.Status, page, size int,
) (PagedTransactions, error) {
	return r.listPaged(ctx,
		` WHERE t.status = $1`,
		[]any{string(status)},
		page, size)
}

// ListFiltered serves the director view: optional status and worker-username
// filters, newest first.
func (r *TransactionRepository) ListFiltered(ctx context.Context,
	status *transaction.Status, workerUsername string, page, size int,
) (PagedTransactions, error) {
	where := ""
	args := make([]any, 0, 2)
	appendCond := func(cond string, arg any) {
		args = append(args, arg)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}

	if status != nil {
		appendCond("t.status = $%d", string(*status))
	}
	if workerUsername != "" {
		appendCond("w.username = $%d", workerUsername)
	}

	return r.listPaged(ctx, where, args, page, size)
}

func (r *TransactionRepository) listPaged(ctx context.Context,
	where string, args []any, page, size int,
) (PagedTransactions, error) {
	pagedLogic := func(ctx context.Context, tx connectionPool) (any, error) {
		var total int64
		countQuery := `SELECT count(*) FROM transactions t JOIN users w ON w.id = t.worker_id` + where
		if err := tx.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return PagedTransactions{}, fmt.Errorf("failed to count transactions: %w", err)
		}

		pageQuery := fmt.Sprintf(
			"%s%s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d",
			txSelect, where, len(args)+1, len(args)+2)
		pageArgs := append(append([]any{}, args...), size, page*size)

		rows, err := tx.Query(ctx, pageQuery, pageArgs...)
		if err != nil {
			return PagedTransactions{}, fmt.Errorf("failed to list transactions page: %w", err)
		}
		content, err := collectTransactions(rows)
		if err != nil {
			return PagedTransactions{}, err
		}
		return PagedTransactions{Content: content, TotalCount: total}, nil
	}

	runWithTX := func() (PagedTransactions, error) {
		return WithTX[PagedTransactions](ctx, r.pool, r.log, pagedLogic)
	}

	return WithRetry[PagedTransactions](runWithTX, 0) //nolint: wrapcheck // error from wrapped function
}

func (r *TransactionRepository) list(ctx context.Context,
	query string, args ...any,
) ([]transaction.Transaction, error) {
	listLogic := func() ([]transaction.Transaction, error) {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list transactions: %w", err)
		}
		return collectTransactions(rows)
	}

	return WithRetry[[]transaction.Transaction](listLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func collectTransactions(rows pgx.Rows) ([]transaction.Transaction, error) {
	defer rows.Close()

	ts := make([]transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction rows: %w", err)
	}
	return ts, nil
}

func scanTransaction(row pgx.Row) (transaction.Transaction, error) {
	var (
		t          transaction.Transaction
		tp, status string
		amount     pgtype.Numeric
		weight     pgtype.Numeric
	)
	err := row.Scan(&t.ID, &t.WorkerID, &t.WorkerName, &t.ManagerID, &t.ManagerName,
		&tp, &status, &amount, &t.Currency, &t.Product, &t.Source,
		&t.Description, &weight, &t.ManagerComment, &t.CreatedAt, &t.ReviewedAt)
	if err != nil {
		return transaction.Transaction{}, err //nolint: wrapcheck // callers wrap with query context
	}

	t.Type = transaction.Type(tp)
	t.Status = transaction.Status(status)
	if t.Amount, err = model.FromPGNumeric(amount); err != nil {
		return transaction.Transaction{}, fmt.Errorf("invalid amount from DB: %w", err)
	}
	if t.WeightKg, err = model.FromPGNumeric(weight); err != nil {
		return transaction.Transaction{}, fmt.Errorf("invalid weight from DB: %w", err)
	}
	return t, nil
}
