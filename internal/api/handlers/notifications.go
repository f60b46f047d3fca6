package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewbooks/crewbooks/internal/api/dto"
	"github.com/crewbooks/crewbooks/internal/api/middlewares"
)

func (h *HTTPHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	ns, err := h.sink.ListFor(r.Context(), recipientID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewNotificationResponses(ns))
}

func (h *HTTPHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	count, err := h.sink.UnreadCountFor(r.Context(), recipientID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.UnreadCountResponse{Count: count})
}

func (h *HTTPHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.sink.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HTTPHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipientID, ok := middlewares.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	if err := h.sink.MarkAllRead(r.Context(), recipientID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
