package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
)

func (a *App) ContactCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactInput
	if !a.decode(w, r, &req) {
		return
	}
	c, err := a.Contact.Create(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{"id": c.ID, "status": c.Status})
}

func (a *App) AdminContactList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	status := domain.ContactStatus(r.URL.Query().Get("status"))
	items, err := a.Contact.List(r.Context(), a.actor(r), status, limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]contactDTO, len(items))
	for i, c := range items {
		out[i] = toContact(c)
	}
	a.json(w, http.StatusOK, list(out, limit, offset))
}

func (a *App) AdminContactResolve(w http.ResponseWriter, r *http.Request) {
	if err := a.Contact.Resolve(r.Context(), a.actor(r), chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
