package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/crewbooks/crewbooks/internal/model"
	"github.com/crewbooks/crewbooks/internal/model/statistic"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

type SnapshotStore interface {
	FindByDate(ctx context.Context, date time.Time) (statistic.Snapshot, error)
	Insert(ctx context.Context, s *statistic.Snapshot) error
}

// Compactor materializes yesterday's aggregate into a permanent snapshot
// once per calendar day. Snapshots are write-once: reruns and racing
// instances are absorbed by the date-uniqueness check.
type Compactor struct {
	txs         TransactionSource
	snaps       SnapshotStore
	log         *slog.Logger
	now         func() time.Time
	triggerHour int
}

func NewCompactor(txs TransactionSource, snaps SnapshotStore,
	triggerHour int, log *slog.Logger,
) *Compactor {
	return &Compactor{
		txs:         txs,
		snaps:       snaps,
		log:         log,
		now:         time.Now,
		triggerHour: triggerHour,
	}
}

// WithClock overrides the compactor's time source.
func (c *Compactor) WithClock(now func() time.Time) *Compactor {
	c.now = now
	return c
}

// Run fires RunOnce at every trigger hour until the context is done. It also
// fires once at startup so a restart never skips a day.
func (c *Compactor) Run(ctx context.Context) {
	for {
		if err := c.RunOnce(ctx); err != nil {
			c.log.LogAttrs(ctx,
				slog.LevelError,
				"snapshot compaction failed",
				slog.Any(model.KeyLoggerError, err),
			)
		}

		timer := time.NewTimer(c.untilNextTrigger())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (c *Compactor) untilNextTrigger() time.Duration {
	now := c.now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(),
		c.triggerHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// RunOnce compacts yesterday. Safe to re-trigger: an existing snapshot for
// the date makes it a no-op, and losing an insert race is not an error.
func (c *Compactor) RunOnce(ctx context.Context) error {
	yesterday := dateOf(c.now().UTC()).AddDate(0, 0, -1)

	_, err := c.snaps.FindByDate(ctx, yesterday)
	if err == nil {
		return nil
	}
	if !errors.Is(err, serviceerrs.ErrNotFound) {
		return fmt.Errorf("failed to check snapshot for %s: %w",
			yesterday.Format(statistic.DateLayout), err)
	}

	dayTransactions, err := c.txs.ListAcceptedInRange(ctx, yesterday, endOfDay(yesterday))
	if err != nil {
		return fmt.Errorf("failed to scan transactions for %s: %w",
			yesterday.Format(statistic.DateLayout), err)
	}

	totals := sumTransactions(dayTransactions)
	snapshot := statistic.Snapshot{
		ID:               uuid.NewString(),
		SnapshotDate:     yesterday,
		TotalIncome:      totals.TotalIncome,
		TotalSpending:    totals.TotalSpending,
		NetProfit:        totals.NetProfit,
		TransactionCount: totals.TransactionCount,
	}
	if err := c.snaps.Insert(ctx, &snapshot); err != nil {
		if errors.Is(err, serviceerrs.ErrSnapshotExists) {
			return nil
		}
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	c.log.LogAttrs(ctx,
		slog.LevelInfo,
		"daily snapshot created",
		slog.String("date", yesterday.Format(statistic.DateLayout)),
		slog.Int64("transactions", snapshot.TransactionCount),
	)
	return nil
}
