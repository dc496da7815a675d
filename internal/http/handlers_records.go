package http

import (
	"net/http"

	"budgetbuddy/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Expenses.List(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Expenses.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) decodeExpense(w http.ResponseWriter, r *http.Request) (core.Expense, bool) {
	var body expenseBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return core.Expense{}, false
	}
	e, err := body.expense()
	if err != nil {
		writeError(w, r, err)
		return core.Expense{}, false
	}
	return e, true
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.decodeExpense(w, r)
	if !ok {
		return
	}
	created, err := s.svc.Expenses.Create(r.Context(), userID(r), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/"+created.ID).
		Body(created).
		Send(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.decodeExpense(w, r)
	if !ok {
		return
	}
	updated, err := s.svc.Expenses.Update(r.Context(), userID(r), r.PathValue("id"), e)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Expenses.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Send(w)
}

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	f, err := ParseIncomeFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.svc.Incomes.List(r.Context(), userID(r), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if out == nil {
		out = []core.Income{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	in, err := s.svc.Incomes.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) decodeIncome(w http.ResponseWriter, r *http.Request) (core.Income, bool) {
	var body incomeBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return core.Income{}, false
	}
	in, err := body.income()
	if err != nil {
		writeError(w, r, err)
		return core.Income{}, false
	}
	return in, true
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeIncome(w, r)
	if !ok {
		return
	}
	created, err := s.svc.Incomes.Create(r.Context(), userID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/income/"+created.ID).
		Body(created).
		Send(w)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeIncome(w, r)
	if !ok {
		return
	}
	updated, err := s.svc.Incomes.Update(r.Context(), userID(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Incomes.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Send(w)
}
