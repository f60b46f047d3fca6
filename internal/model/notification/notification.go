package notification

import "time"

type Type string

const (
	TypeNewTransaction Type = "NEW_TRANSACTION"
	TypeAccept         Type = "ACCEPT"
	TypeReject         Type = "REJECT"
	TypeComment        Type = "COMMENT"
)

// Notification is an immutable lifecycle event addressed to a single user.
// WorkerID is the addressed user, managers included.
type Notification struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	WorkerID      string    `json:"worker_id"`
	Type          Type      `json:"type"`
	TransactionID string    `json:"transaction_id"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
}
