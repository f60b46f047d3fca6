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
	"github.com/crewbooks/crewbooks/internal/model/statistic"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

const snapshotSelect = `
SELECT id, snapshot_date, total_income, total_spending, net_profit,
       transaction_count, created_at
  FROM statistic_snapshots`

type SnapshotRepository struct {
	DB
}

func NewSnapshotRepository(pool connectionPool, log *slog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		DB{
			pool: pool,
			log:  log,
		},
	}
}

// Insert writes a snapshot once per date. The unique date constraint is the
// sole concurrency guard: a losing writer gets ErrSnapshotExists, never an
// overwrite.
func (r *SnapshotRepository) Insert(ctx context.Context, s *statistic.Snapshot) error {
	insertLogic := func() (struct{}, error) {
		const query = `
INSERT INTO statistic_snapshots
       (id, snapshot_date, total_income, total_spending, net_profit, transaction_count)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (snapshot_date) DO NOTHING`

		res, err := r.pool.Exec(ctx, query,
			s.ID, s.SnapshotDate,
			model.ToPGNumeric(s.TotalIncome), model.ToPGNumeric(s.TotalSpending),
			model.ToPGNumeric(s.NetProfit), s.TransactionCount)
		if isUniqueViolation(err) {
			return struct{}{}, fmt.Errorf("snapshot for %s: %w",
				s.SnapshotDate.Format(statistic.DateLayout), serviceerrs.ErrSnapshotExists)
		}
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to insert snapshot in DB: %w", err)
		}
		if res.RowsAffected() == 0 {
			return struct{}{}, fmt.Errorf("snapshot for %s: %w",
				s.SnapshotDate.Format(statistic.DateLayout), serviceerrs.ErrSnapshotExists)
		}
		return struct{}{}, nil
	}

	_, err := WithRetry[struct{}](insertLogic, 0)
	return err //nolint: wrapcheck // error from wrapped function
}

func (r *SnapshotRepository) FindByDate(ctx context.Context, date time.Time,
) (statistic.Snapshot, error) {
	findLogic := func() (statistic.Snapshot, error) {
		row := r.pool.QueryRow(ctx, snapshotSelect+` WHERE snapshot_date = $1`, date)
		s, err := scanSnapshot(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return statistic.Snapshot{}, fmt.Errorf("snapshot for %s: %w",
				date.Format(statistic.DateLayout), serviceerrs.ErrNotFound)
		}
		if err != nil {
			return statistic.Snapshot{}, fmt.Errorf("failed to find snapshot: %w", err)
		}
		return s, nil
	}

	return WithRetry[statistic.Snapshot](findLogic, 0) //nolint: wrapcheck // error from wrapped function
}

// ListRange returns snapshots with dates in [from, to], oldest first.
func (r *SnapshotRepository) ListRange(ctx context.Context, from, to time.Time,
) ([]statistic.Snapshot, error) {
	listLogic := func() ([]statistic.Snapshot, error) {
		rows, err := r.pool.Query(ctx,
			snapshotSelect+` WHERE snapshot_date BETWEEN $1 AND $2 ORDER BY snapshot_date ASC`,
			from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		defer rows.Close()

		ss := make([]statistic.Snapshot, 0)
		for rows.Next() {
			s, err := scanSnapshot(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to read snapshot row: %w", err)
			}
			ss = append(ss, s)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
		}
		return ss, nil
	}

	return WithRetry[[]statistic.Snapshot](listLogic, 0) //nolint: wrapcheck // error from wrapped function
}

func scanSnapshot(row pgx.Row) (statistic.Snapshot, error) {
	var (
		s                        statistic.Snapshot
		income, spending, profit pgtype.Numeric
	)
	err := row.Scan(&s.ID, &s.SnapshotDate, &income, &spending, &profit,
		&s.TransactionCount, &s.CreatedAt)
	if err != nil {
		return statistic.Snapshot{}, err //nolint: wrapcheck // callers wrap with query context
	}

	if s.TotalIncome, err = model.FromPGNumeric(income); err != nil {
		return statistic.Snapshot{}, fmt.Errorf("invalid income from DB: %w", err)
	}
	if s.TotalSpending, err = model.FromPGNumeric(spending); err != nil {
		return statistic.Snapshot{}, fmt.Errorf("invalid spending from DB: %w", err)
	}
	if s.NetProfit, err = model.FromPGNumeric(profit); err != nil {
		return statistic.Snapshot{}, fmt.Errorf("invalid profit from DB: %w", err)
	}
	return s, nil
}
