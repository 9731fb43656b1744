package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/funding"
)

func (a *App) ExpensesCreate(w http.ResponseWriter, r *http.Request) {
	var req funding.ExpenseRequest
	if !a.decode(w, r, &req) {
		return
	}
	e, err := a.Funding.AddExpense(r.Context(), a.actor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toExpense(*e))
}

func (a *App) ExpensesList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Funding.ListExpenses(r.Context(), a.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]expenseDTO, len(items))
	for i, e := range items {
		out[i] = toExpense(e)
	}
	a.json(w, http.StatusOK, list(out, 0, 0))
}
