package http

import (
	"net/http"

	"budgetbuddy/internal/core"
)

// handleListBudgets returns every budget, or one month's when monthYear is set.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthParam(r.URL.Query(), "monthYear")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Budgets.List(r.Context(), userID(r), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBudgets(w, http.StatusOK, out)
}

func (s *Server) handleBulkCreateBudgets(w http.ResponseWriter, r *http.Request) {
	var body []budgetBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	budgets := make([]core.Budget, len(body))
	for i, b := range body {
		budgets[i] = b.budget()
	}
	out, err := s.svc.Budgets.BulkCreate(r.Context(), userID(r), budgets)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBudgets(w, http.StatusCreated, out)
}

// handleCopyBudgets copies the "from" month into the "to" month.
func (s *Server) handleCopyBudgets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fields := core.FieldErrors{}
	from, err := core.ParseMonthYear(q.Get("from"))
	fields.Add("from", err)
	to, err := core.ParseMonthYear(q.Get("to"))
	fields.Add("to", err)
	if err := fields.Err(); err != nil {
		writeError(w, r, err)
		return
	}

	out, err := s.svc.Budgets.Copy(r.Context(), userID(r), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBudgets(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var body budgetBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.svc.Budgets.Update(r.Context(), userID(r), r.PathValue("id"), body.budget())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func writeBudgets(w http.ResponseWriter, status int, out []core.Budget) {
	if out == nil {
		out = []core.Budget{}
	}
	writeJSON(w, status, out)
}
