package handlers

import (
	"net/http"
	"strconv"

	"github.com/crewbooks/crewbooks/internal/api/dto"
	"github.com/crewbooks/crewbooks/internal/serviceerrs"
)

const defaultHistoryDays = 30

func (h *HTTPHandler) CurrentStatistics(w http.ResponseWriter, r *http.Request) {
	totals, err := h.stats.CurrentTotals(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewStatisticResponse(totals))
}

func (h *HTTPHandler) StatisticsHistory(w http.ResponseWriter, r *http.Request) {
	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, r,
				serviceerrs.NewValidation("days", "must be a positive integer"))
			return
		}
		days = parsed
	}

	history, err := h.stats.HistoricalTotals(r.Context(), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rs := make([]dto.StatisticResponse, len(history))
	for i, totals := range history {
		rs[i] = dto.NewStatisticResponse(totals)
	}
	h.writeJSON(w, r, http.StatusOK, rs)
}

func (h *HTTPHandler) HourlyStatistics(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.stats.HourlyGrowth(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dto.NewHourlyGrowthResponses(buckets))
}
