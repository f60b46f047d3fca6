package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome   Type = "INCOME"
	TypeSpending Type = "SPENDING"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeIncome, TypeSpending:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCommented Status = "COMMENTED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusRejected, StatusCommented:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// Terminal reports whether no transition leaves the status.
func (s Status) Terminal() bool {
	return s != StatusPending
}

type Action string

const (
	ActionAccept  Action = "ACCEPT"
	ActionReject  Action = "REJECT"
	ActionComment Action = "COMMENT"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAccept, ActionReject, ActionComment:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown review action %q", s)
}

func (a Action) Status() Status {
	switch a {
	case ActionAccept:
		return StatusAccepted
	case ActionReject:
		return StatusRejected
	case ActionComment:
		return StatusCommented
	}
	return StatusPending
}

// Transaction carries snapshot-at-read identities: worker and manager are
// referenced by id, display names are denormalized at query time.
type Transaction struct {
	CreatedAt      time.Time       `json:"created_at"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	ID             string          `json:"id"`
	WorkerID       string          `json:"worker_id"`
	WorkerName     string          `json:"worker_name"`
	ManagerID      *string         `json:"manager_id,omitempty"`
	ManagerName    *string         `json:"manager_name,omitempty"`
	Type           Type            `json:"type"`
	Status         Status          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Product        string          `json:"product"`
	Source         string          `json:"source"`
	Description    string          `json:"description"`
	WeightKg       decimal.Decimal `json:"weight_kg"`
	ManagerComment *string         `json:"manager_comment,omitempty"`
}
