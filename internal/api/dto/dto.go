package dto

import (
	"errors"
	"fmt"
	"time"

	passwordvalidator "github.com/wagslane/go-password-validator"

	"github.com/crewbooks/crewbooks/internal/model/notification"
	"github.com/crewbooks/crewbooks/internal/model/statistic"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
	"github.com/crewbooks/crewbooks/internal/model/user"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

// SubmitTransactionRequest carries amounts as decimal strings, never
// binary floats.
type SubmitTransactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Product     string `json:"product"`
	Source      string `json:"source"`
	Description string `json:"description"`
	WeightKg    string `json:"weight_kg"`
}

type ReviewRequest struct {
	Action  string `json:"action"`
	Comment string `json:"comment"`
}

type TransactionResponse struct {
	CreatedAt      time.Time  `json:"created_at"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ID             string     `json:"id"`
	WorkerID       string     `json:"worker_id"`
	WorkerName     string     `json:"worker_name"`
	ManagerID      *string    `json:"manager_id,omitempty"`
	ManagerName    *string    `json:"manager_name,omitempty"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Amount         string     `json:"amount"`
	Currency       string     `json:"currency"`
	Product        string     `json:"product"`
	Source         string     `json:"source"`
	Description    string     `json:"description"`
	WeightKg       string     `json:"weight_kg"`
	ManagerComment *string    `json:"manager_comment,omitempty"`
}

func NewTransactionResponse(t transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		CreatedAt:      t.CreatedAt,
		ReviewedAt:     t.ReviewedAt,
		ID:             t.ID,
		WorkerID:       t.WorkerID,
		WorkerName:     t.WorkerName,
		ManagerID:      t.ManagerID,
		ManagerName:    t.ManagerName,
		Type:           string(t.Type),
		Status:         string(t.Status),
		Amount:         t.Amount.String(),
		Currency:       t.Currency,
		Product:        t.Product,
		Source:         t.Source,
		Description:    t.Description,
		WeightKg:       t.WeightKg.String(),
		ManagerComment: t.ManagerComment,
	}
}

func NewTransactionResponses(ts []transaction.Transaction) []TransactionResponse {
	rs := make([]TransactionResponse, len(ts))
	for i, t := range ts {
		rs[i] = NewTransactionResponse(t)
	}
	return rs
}

// PagedResponse pages are zero-based.
type PagedResponse struct {
	Content    []TransactionResponse `json:"content"`
	Page       int                   `json:"page"`
	Size       int                   `json:"size"`
	TotalCount int64                 `json:"total_count"`
}

type NotificationResponse struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
}

func NewNotificationResponses(ns []notification.Notification) []NotificationResponse {
	rs := make([]NotificationResponse, len(ns))
	for i, n := range ns {
		rs[i] = NotificationResponse{
			CreatedAt:     n.CreatedAt,
			ID:            n.ID,
			Type:          string(n.Type),
			TransactionID: n.TransactionID,
			Message:       n.Message,
			IsRead:        n.IsRead,
		}
	}
	return rs
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type StatisticResponse struct {
	TotalIncome      string `json:"total_income"`
	TotalSpending    string `json:"total_spending"`
	NetProfit        string `json:"net_profit"`
	TransactionCount int64  `json:"transaction_count"`
	AsOfDate         string `json:"as_of_date"`
}

func NewStatisticResponse(t statistic.Totals) StatisticResponse {
	return StatisticResponse{
		TotalIncome:      t.TotalIncome.String(),
		TotalSpending:    t.TotalSpending.String(),
		NetProfit:        t.NetProfit.String(),
		TransactionCount: t.TransactionCount,
		AsOfDate:         t.AsOfDate.Format(statistic.DateLayout),
	}
}

type HourlyGrowthResponse struct {
	Hour      string `json:"hour"`
	Income    string `json:"income"`
	Spending  string `json:"spending"`
	NetProfit string `json:"net_profit"`
}

func NewHourlyGrowthResponses(buckets []statistic.HourlyBucket) []HourlyGrowthResponse {
	rs := make([]HourlyGrowthResponse, len(buckets))
	for i, b := range buckets {
		rs[i] = HourlyGrowthResponse{
			Hour:      fmt.Sprintf("%02d:00", b.Hour),
			Income:    b.Income.String(),
			Spending:  b.Spending.String(),
			NetProfit: b.NetProfit.String(),
		}
	}
	return rs
}

type SummaryStatsResponse struct {
	Accepted int64 `json:"accepted"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}

type CreateUserRequest struct {
	Username          string  `json:"username"`
	Password          string  `json:"password"`
	FullName          string  `json:"full_name"`
	Role              string  `json:"role"`
	AssignedManagerID *string `json:"assigned_manager_id,omitempty"`
}

func (r *CreateUserRequest) IsValid() error {
	var invalidFieldsErr error
	if r.Username == "" || r.FullName == "" || r.Role == "" {
		invalidFieldsErr = errors.New("username, full_name and role are required")
	}

	const minEntropyBits = 50
	invalidPasswordErr := passwordvalidator.Validate(r.Password, minEntropyBits)
	return errors.Join(invalidFieldsErr, invalidPasswordErr)
}

type AssignManagerRequest struct {
	ManagerID string `json:"manager_id"`
}

type UserResponse struct {
	CreatedAt         time.Time `json:"created_at"`
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name"`
	Role              string    `json:"role"`
	AssignedManagerID *string   `json:"assigned_manager_id,omitempty"`
	Active            bool      `json:"active"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		CreatedAt:         u.CreatedAt,
		ID:                u.ID,
		Username:          u.Username,
		FullName:          u.FullName,
		Role:              string(u.Role),
		AssignedManagerID: u.AssignedManagerID,
		Active:            u.Active,
	}
}

func NewUserResponses(us []user.User) []UserResponse {
	rs := make([]UserResponse, len(us))
	for i, u := range us {
		rs[i] = NewUserResponse(u)
	}
	return rs
}
