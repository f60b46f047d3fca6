package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crewbooks/crewbooks/internal/api/dto"
	"github.com/crewbooks/crewbooks/internal/api/middlewares"
	"github.com/crewbooks/crewbooks/internal/model/transaction"
	"github.com/crewbooks/crewbooks/internal/review"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	var req dto.SubmitTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.engine.Submit(r.Context(), workerID, review.SubmitRequest{
		Type:        req.Type,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Product:     req.Product,
		Source:      req.Source,
		Description: req.Description,
		WeightKg:    req.WeightKg,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, dto.NewTransactionResponse(t))
}

func (h *HTTPHandler) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	var req dto.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.engine.Review(r.Context(),
		chi.URLParam(r, "id"), reviewerID, req.Action, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if t.Status == transaction.StatusAccepted {
		h.cache.Invalidate(r.Context())
	}

	h.writeJSON(w, r, http.StatusOK, dto.NewTransactionResponse(t))
}

// ListMine returns the authenticated worker's own submissions, optionally
// narrowed by ?status=.
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	status, err := statusFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ts, err := h.txs.ListByWorker(r.Context(), workerID, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewTransactionResponses(ts))
}

// ListPending returns transactions awaiting the authenticated manager.
func (h *HTTPHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	managerID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	pending := transaction.StatusPending
	ts, err := h.txs.ListByManager(r.Context(), managerID, &pending)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewTransactionResponses(ts))
}

// ListAssigned returns the manager's full review history, optionally
// narrowed by ?status=.
func (h *HTTPHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	managerID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	status, err := statusFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ts, err := h.txs.ListByManager(r.Context(), managerID, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewTransactionResponses(ts))
}

func (h *HTTPHandler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	ts, err := h.txs.ListByStatus(r.Context(), transaction.StatusAccepted)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewTransactionResponses(ts))
}

func (h *HTTPHandler) ListAcceptedPaged(w http.ResponseWriter, r *http.Request) {
	page, size := pageParams(r)
	paged, err := h.txs.ListByStatusPaged(r.Context(), transaction.StatusAccepted, page, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.PagedResponse{
		Content:    dto.NewTransactionResponses(paged.Content),
		Page:       page,
		Size:       size,
		TotalCount: paged.TotalCount,
	})
}

// DirectorList serves the system-wide paginated view with optional
// ?status= and ?worker= (username) filters.
func (h *HTTPHandler) DirectorList(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	worker := r.URL.Query().Get("worker")
	if worker == "all" {
		worker = ""
	}

	page, size := pageParams(r)
	paged, err := h.txs.ListFiltered(r.Context(), status, worker, page, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.PagedResponse{
		Content:    dto.NewTransactionResponses(paged.Content),
		Page:       page,
		Size:       size,
		TotalCount: paged.TotalCount,
	})
}

func (h *HTTPHandler) DirectorPending(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, transaction.StatusPending)
}

func (h *HTTPHandler) DirectorRejected(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, transaction.StatusRejected)
}

func (h *HTTPHandler) listByStatus(w http.ResponseWriter, r *http.Request,
	status transaction.Status,
) {
	ts, err := h.txs.ListByStatus(r.Context(), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewTransactionResponses(ts))
}

func (h *HTTPHandler) DirectorSummary(w http.ResponseWriter, r *http.Request) {
	var summary dto.SummaryStatsResponse
	for _, s := range []struct {
		status transaction.Status
		dst    *int64
	}{
		{transaction.StatusAccepted, &summary.Accepted},
		{transaction.StatusPending, &summary.Pending},
		{transaction.StatusRejected, &summary.Rejected},
	} {
		count, err := h.txs.CountByStatus(r.Context(), s.status)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		*s.dst = count
	}
	summary.Total = summary.Accepted + summary.Pending + summary.Rejected

	h.writeJSON(w, r, http.StatusOK, summary)
}

// statusFilter parses ?status=. Unrecognized values are rejected, never
// silently defaulted.
func statusFilter(r *http.Request) (*transaction.Status, error) {
	raw := r.URL.Query().Get("status")
	if raw == "" || raw == "all" {
		return nil, nil
	}

	status, err := transaction.ParseStatus(raw)
	if err != nil {
		return nil, serviceerrs.NewValidation("status", err.Error())
	}
	return &status, nil
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
