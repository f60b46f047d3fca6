package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbooks/crewbooks/internal/model/notification"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
	"github.com/crewbooks/crewbooks/internal/model/user"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

type fakeTxStore struct {
	byID    map[string]transaction.Transaction
	created []transaction.Transaction
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{byID: make(map[string]transaction.Transaction)}
}

func (s *fakeTxStore) Create(_ context.Context, t *transaction.Transaction) error {
	s.byID[t.ID] = *t
	s.created = append(s.created, *t)
	return nil
}

func (s *fakeTxStore) FindByID(_ context.Context, id string) (transaction.Transaction, error) {
	t, ok := s.byID[id]
	if !ok {
		return transaction.Transaction{}, serviceerrs.ErrNotFound
	}
	return t, nil
}

func (s *fakeTxStore) ApplyReview(_ context.Context, t *transaction.Transaction) error {
	if _, ok := s.byID[t.ID]; !ok {
		return serviceerrs.ErrNotFound
	}
	s.byID[t.ID] = *t
	return nil
}

type fakeUsers map[string]user.User

func (f fakeUsers) FindByID(_ context.Context, id string) (user.User, error) {
	u, ok := f[id]
	if !ok {
		return user.User{}, serviceerrs.ErrNotFound
	}
	return u, nil
}

type enqueued struct {
	recipientID   string
	nType         notification.Type
	transactionID string
	message       string
}

type fakeSink struct {
	calls []enqueued
}

func (s *fakeSink) Enqueue(_ context.Context,
	recipientID string, nType notification.Type, transactionID, message string,
) {
	s.calls = append(s.calls, enqueued{recipientID, nType, transactionID, message})
}

func fixedClock(t *testing.T, value string) func() time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return func() time.Time { return parsed }
}

func testUsers() fakeUsers {
	managerID := "manager-1"
	return fakeUsers{
		"worker-1": {
			ID:                "worker-1",
			Username:          "ivanov",
			FullName:          "Ivan Ivanov",
			Role:              user.RoleWorker,
			AssignedManagerID: &managerID,
			Active:            true,
		},
		"worker-2": {
			ID:       "worker-2",
			Username: "petrov",
			FullName: "Petr Petrov",
			Role:     user.RoleWorker,
			Active:   true,
		},
		"manager-1": {
			ID:       "manager-1",
			Username: "sidorov",
			FullName: "Sidor Sidorov",
			Role:     user.RoleManager,
			Active:   true,
		},
	}
}

func TestEngine_Submit(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true).
		WithClock(fixedClock(t, "2026-08-30T10:15:00Z"))

	got, err := e.Submit(context.TODO(), "worker-1", SubmitRequest{
		Type:     "INCOME",
		Amount:   "1500.50",
		Currency: "RUB",
		Product:  "fish",
		Source:   "market",
		WeightKg: "12.3",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, transaction.StatusPending, got.Status)
	assert.Equal(t, "worker-1", got.WorkerID)
	assert.Equal(t, "Ivan Ivanov", got.WorkerName)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, "manager-1", *got.ManagerID)
	assert.Equal(t, "1500.5", got.Amount.String())
	assert.Equal(t, "12.3", got.WeightKg.String())
	assert.Nil(t, got.ReviewedAt)
	assert.Equal(t, "2026-08-30T10:15:00Z", got.CreatedAt.Format(time.RFC3339))

	require.Len(t, sink.calls, 1)
	assert.Equal(t, "manager-1", sink.calls[0].recipientID)
	assert.Equal(t, notification.TypeNewTransaction, sink.calls[0].nType)
	assert.Equal(t, got.ID, sink.calls[0].transactionID)
	assert.Equal(t, "New transaction from Ivan Ivanov", sink.calls[0].message)
}

func TestEngine_Submit_withoutManager(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true)

	got, err := e.Submit(context.TODO(), "worker-2", SubmitRequest{
		Type:     "SPENDING",
		Amount:   "40",
		WeightKg: "0",
	})
	require.NoError(t, err)

	assert.Nil(t, got.ManagerID)
	assert.Empty(t, sink.calls, "nobody to notify")
	require.Len(t, txs.created, 1)
}

func TestEngine_Submit_validation(t *testing.T) {
	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{
			"unknown type",
			SubmitRequest{Type: "EXPENSE", Amount: "10", WeightKg: "1"},
		},
		{
			"negative amount",
			SubmitRequest{Type: "INCOME", Amount: "-10", WeightKg: "1"},
		},
		{
			"malformed amount",
			SubmitRequest{Type: "INCOME", Amount: "ten", WeightKg: "1"},
		},
		{
			"negative weight",
			SubmitRequest{Type: "INCOME", Amount: "10", WeightKg: "-1"},
		},
	}

	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Submit(context.TODO(), "worker-1", tt.req)
			require.Error(t, err)

			var validationErr *serviceerrs.ValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}
	assert.Empty(t, txs.created)
	assert.Empty(t, sink.calls)
}

func TestEngine_Submit_unknownWorker(t *testing.T) {
	e := New(newFakeTxStore(), testUsers(), &fakeSink{}, true)

	_, err := e.Submit(context.TODO(), "no-such-worker", SubmitRequest{
		Type:     "INCOME",
		Amount:   "10",
		WeightKg: "1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, serviceerrs.ErrNotFound)
}

func submitPending(t *testing.T, e *Engine, txs *fakeTxStore) transaction.Transaction {
	t.Helper()
	got, err := e.Submit(context.TODO(), "worker-1", SubmitRequest{
		Type:     "INCOME",
		Amount:   "100",
		WeightKg: "5",
	})
	require.NoError(t, err)
	require.Equal(t, transaction.StatusPending, txs.byID[got.ID].Status)
	return got
}

func TestEngine_Review_accept(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true).
		WithClock(fixedClock(t, "2026-08-30T12:00:00Z"))

	pending := submitPending(t, e, txs)
	sink.calls = nil

	got, err := e.Review(context.TODO(), pending.ID, "manager-1", "ACCEPT", "")
	require.NoError(t, err)

	assert.Equal(t, transaction.StatusAccepted, got.Status)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, "manager-1", *got.ManagerID)
	require.NotNil(t, got.ManagerName)
	assert.Equal(t, "Sidor Sidorov", *got.ManagerName)
	require.NotNil(t, got.ReviewedAt)
	assert.Equal(t, "2026-08-30T12:00:00Z", got.ReviewedAt.Format(time.RFC3339))
	assert.Equal(t, transaction.StatusAccepted, txs.byID[pending.ID].Status)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, "worker-1", sink.calls[0].recipientID)
	assert.Equal(t, notification.TypeAccept, sink.calls[0].nType)
	assert.Equal(t, "Your transaction has been accepted", sink.calls[0].message)
}

func TestEngine_Review_reject(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true)

	pending := submitPending(t, e, txs)
	sink.calls = nil

	got, err := e.Review(context.TODO(), pending.ID, "manager-1", "REJECT", "")
	require.NoError(t, err)

	assert.Equal(t, transaction.StatusRejected, got.Status)
	require.Len(t, sink.calls, 1)
	assert.Equal(t, notification.TypeReject, sink.calls[0].nType)
	assert.Equal(t, "Your transaction has been rejected", sink.calls[0].message)
}

func TestEngine_Review_comment(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true)

	pending := submitPending(t, e, txs)
	sink.calls = nil

	got, err := e.Review(context.TODO(),
		pending.ID, "manager-1", "COMMENT", "please recheck the weight")
	require.NoError(t, err)

	assert.Equal(t, transaction.StatusCommented, got.Status)
	require.NotNil(t, got.ManagerComment)
	assert.Equal(t, "please recheck the weight", *got.ManagerComment)

	require.Len(t, sink.calls, 1)
	assert.Equal(t, notification.TypeComment, sink.calls[0].nType)
	assert.Equal(t,
		"Manager left a comment: please recheck the weight",
		sink.calls[0].message)
}

func TestEngine_Review_strictRejectsSecondReview(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, true)

	pending := submitPending(t, e, txs)

	_, err := e.Review(context.TODO(), pending.ID, "manager-1", "ACCEPT", "")
	require.NoError(t, err)

	_, err = e.Review(context.TODO(), pending.ID, "manager-1", "REJECT", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, serviceerrs.ErrAlreadyReviewed)
	assert.Equal(t, transaction.StatusAccepted, txs.byID[pending.ID].Status)
}

func TestEngine_Review_lenientOverwrites(t *testing.T) {
	txs := newFakeTxStore()
	sink := &fakeSink{}
	e := New(txs, testUsers(), sink, false)

	pending := submitPending(t, e, txs)
	sink.calls = nil

	_, err := e.Review(context.TODO(), pending.ID, "manager-1", "ACCEPT", "")
	require.NoError(t, err)

	got, err := e.Review(context.TODO(), pending.ID, "manager-1", "REJECT", "")
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusRejected, got.Status)
	assert.Len(t, sink.calls, 2, "the worker is notified for each review")
}

func TestEngine_Review_invalidAction(t *testing.T) {
	txs := newFakeTxStore()
	e := New(txs, testUsers(), &fakeSink{}, true)

	pending := submitPending(t, e, txs)

	_, err := e.Review(context.TODO(), pending.ID, "manager-1", "APPROVE", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, serviceerrs.ErrInvalidAction)
	assert.Equal(t, transaction.StatusPending, txs.byID[pending.ID].Status)
}

func TestEngine_Review_unknownTransaction(t *testing.T) {
	e := New(newFakeTxStore(), testUsers(), &fakeSink{}, true)

	_, err := e.Review(context.TODO(), "no-such-id", "manager-1", "ACCEPT", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, serviceerrs.ErrNotFound)
}
