package api

import (
	"net/http"

	"planhebdo/internal/metrics"
)

// handleMonthlyStats returns aggregated revenue figures for one month.
// GET /api/stats/monthly?shop=...&year=...&month=...
func (s *HTTPServer) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("stats_monthly")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	shopID := r.URL.Query().Get("shop")
	if s.shopsConfig().Shop(shopID) == nil {
		writeError(w, http.StatusNotFound, "unknown shop")
		return
	}
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	summary, err := s.stats.Monthly(r.Context(), shopID, year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
