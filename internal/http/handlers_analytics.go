package http

import (
	"net/http"

	"budgetbuddy/internal/core"
)

// handleSummary serves one month's summary; without monthYear it covers all time.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query(), "monthYear")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.svc.Analytics.Summary(r.Context(), userID(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sum.BudgetUsage == nil {
		sum.BudgetUsage = []core.BudgetUsage{}
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleAvailableMonths(w http.ResponseWriter, r *http.Request) {
	months, err := s.svc.Analytics.AvailableMonths(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]string, len(months))
	for i, m := range months {
		out[i] = m.String()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleActivityLogs(w http.ResponseWriter, r *http.Request) {
	f, err := ParseActivityFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Activity.List(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []core.ActivityEvent{}
	}
	writeJSON(w, http.StatusOK, out)
}
