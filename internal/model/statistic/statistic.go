package statistic

import (
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Totals is a point-in-time aggregate over accepted transactions.
type Totals struct {
	AsOfDate         time.Time       `json:"as_of_date"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalSpending    decimal.Decimal `json:"total_spending"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	TransactionCount int64           `json:"transaction_count"`
}

// Snapshot is a frozen daily aggregate, one per calendar date.
// Once written it is immutable history.
type Snapshot struct {
	CreatedAt        time.Time       `json:"created_at"`
	SnapshotDate     time.Time       `json:"snapshot_date"`
	ID               string          `json:"id"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalSpending    decimal.Decimal `json:"total_spending"`
	NetProfit        decimal.Decimal `json:"net_profit"`
	TransactionCount int64           `json:"transaction_count"`
}

// HourlyBucket is an hour-of-day keyed partial sum for intraday growth.
type HourlyBucket struct {
	Hour      int             `json:"hour"`
	Income    decimal.Decimal `json:"income"`
	Spending  decimal.Decimal `json:"spending"`
	NetProfit decimal.Decimal `json:"net_profit"`
}
