package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crewbooks/crewbooks/internal/model/statistic"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
)

type TransactionSource interface {
	ListByStatus(ctx context.Context, status transaction.Status) ([]transaction.Transaction, error)
	ListAcceptedInRange(ctx context.Context, from, to time.Time) ([]transaction.Transaction, error)
}

type SnapshotSource interface {
	ListRange(ctx context.Context, from, to time.Time) ([]statistic.Snapshot, error)
}

// TotalsCache is optional; a nil cache degrades to direct scans.
type TotalsCache interface {
	GetCurrentTotals(ctx context.Context) (statistic.Totals, bool)
	SetCurrentTotals(ctx context.Context, t statistic.Totals)
}

// Aggregator computes point-in-time totals over accepted transactions.
// All sums are exact decimal arithmetic; floats never appear here.
type Aggregator struct {
	txs   TransactionSource
	snaps SnapshotSource
	cache TotalsCache
	now   func() time.Time
}

func NewAggregator(txs TransactionSource, snaps SnapshotSource, cache TotalsCache) *Aggregator {
	return &Aggregator{
		txs:   txs,
		snaps: snaps,
		cache: cache,
		now:   time.Now,
	}
}

// WithClock overrides the aggregator's time source.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// CurrentTotals sums every accepted transaction ever recorded.
func (a *Aggregator) CurrentTotals(ctx context.Context) (statistic.Totals, error) {
	if a.cache != nil {
		if cached, ok := a.cache.GetCurrentTotals(ctx); ok {
			return cached, nil
		}
	}

	accepted, err := a.txs.ListByStatus(ctx, transaction.StatusAccepted)
	if err != nil {
		return statistic.Totals{}, fmt.Errorf("failed to scan accepted transactions: %w", err)
	}

	totals := sumTransactions(accepted)
	totals.AsOfDate = dateOf(a.now().UTC())

	if a.cache != nil {
		a.cache.SetCurrentTotals(ctx, totals)
	}
	return totals, nil
}

// HistoricalTotals returns one entry per calendar date in
// [today-days, today], oldest first. Each date uses its snapshot when one
// exists and falls back to a direct scan of that day's accepted transactions
// otherwise.
func (a *Aggregator) HistoricalTotals(ctx context.Context, days int) ([]statistic.Totals, error) {
	end := dateOf(a.now().UTC())
	start := end.AddDate(0, 0, -days)

	snapshots, err := a.snaps.ListRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	byDate := make(map[string]statistic.Snapshot, len(snapshots))
	for _, s := range snapshots {
		byDate[s.SnapshotDate.Format(statistic.DateLayout)] = s
	}

	scanned, err := a.txs.ListAcceptedInRange(ctx, start, endOfDay(end))
	if err != nil {
		return nil, fmt.Errorf("failed to scan accepted transactions: %w", err)
	}
	scannedByDate := make(map[string][]transaction.Transaction)
	for _, t := range scanned {
		key := dateOf(t.CreatedAt.UTC()).Format(statistic.DateLayout)
		scannedByDate[key] = append(scannedByDate[key], t)
	}

	history := make([]statistic.Totals, 0, days+1)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		key := date.Format(statistic.DateLayout)
		if s, ok := byDate[key]; ok {
			history = append(history, statistic.Totals{
				AsOfDate:         s.SnapshotDate,
				TotalIncome:      s.TotalIncome,
				TotalSpending:    s.TotalSpending,
				NetProfit:        s.NetProfit,
				TransactionCount: s.TransactionCount,
			})
			continue
		}

		totals := sumTransactions(scannedByDate[key])
		totals.AsOfDate = date
		history = append(history, totals)
	}

	return history, nil
}

// HourlyGrowth buckets accepted transactions from the trailing 24-hour
// window by their absolute hour of day. Buckets run from hour 0 up to the
// later of the last populated hour and the current hour, capped at 23.
func (a *Aggregator) HourlyGrowth(ctx context.Context) ([]statistic.HourlyBucket, error) {
	now := a.now().UTC()
	from := now.Add(-23 * time.Hour)

	windowed, err := a.txs.ListAcceptedInRange(ctx, from, now)
	if err != nil {
		return nil, fmt.Errorf("failed to scan accepted transactions: %w", err)
	}

	const hoursPerDay = 24
	income := make([]decimal.Decimal, hoursPerDay)
	spending := make([]decimal.Decimal, hoursPerDay)
	for i := range income {
		income[i] = decimal.Zero
		spending[i] = decimal.Zero
	}

	maxPopulated := -1
	for _, t := range windowed {
		hour := t.CreatedAt.UTC().Hour()
		switch t.Type {
		case transaction.TypeIncome:
			income[hour] = income[hour].Add(t.Amount)
		case transaction.TypeSpending:
			spending[hour] = spending[hour].Add(t.Amount)
		}
		if hour > maxPopulated {
			maxPopulated = hour
		}
	}

	maxHour := max(maxPopulated, now.Hour())
	maxHour = min(maxHour, hoursPerDay-1)

	buckets := make([]statistic.HourlyBucket, 0, maxHour+1)
	for h := 0; h <= maxHour; h++ {
		buckets = append(buckets, statistic.HourlyBucket{
			Hour:      h,
			Income:    income[h],
			Spending:  spending[h],
			NetProfit: income[h].Sub(spending[h]),
		})
	}
	return buckets, nil
}

func sumTransactions(ts []transaction.Transaction) statistic.Totals {
	totalIncome := decimal.Zero
	totalSpending := decimal.Zero
	for _, t := range ts {
		switch t.Type {
		case transaction.TypeIncome:
			totalIncome = totalIncome.Add(t.Amount)
		case transaction.TypeSpending:
			totalSpending = totalSpending.Add(t.Amount)
		}
	}

	return statistic.Totals{
		TotalIncome:      totalIncome,
		TotalSpending:    totalSpending,
		NetProfit:        totalIncome.Sub(totalSpending),
		TransactionCount: int64(len(ts)),
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(date time.Time) time.Time {
	return date.Add(24*time.Hour - time.Second)
}
