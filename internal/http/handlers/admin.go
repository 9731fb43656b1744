package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/middleware"
)

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type pendingUserDTO struct {
	User      userDTO       `json:"user"`
	Documents []documentDTO `json:"documents"`
}

func (a *App) AdminVerifications(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := a.Review.PendingVerifications(r.Context(), a.actor(r), limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := make([]pendingUserDTO, len(items))
	for i := range items {
		out[i] = pendingUserDTO{User: toUser(&items[i].User), Documents: toDocuments(items[i].Documents)}
	}
	a.json(w, http.StatusOK, list(out, limit, offset))
}

func (a *App) AdminReviewUser(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !a.decode(w, r, &req) {
		return
	}
	u, err := a.Review.ReviewUser(r.Context(), a.actor(r), chi.URLParam(r, "userID"), req.Approve, req.Note)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUser(u))
}

func (a *App) AdminCampaigns(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	items, err := a.Review.PendingCampaigns(r.Context(), a.actor(r), limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(toCampaigns(items, middleware.LocaleFromContext(r.Context())), limit, offset))
}

func (a *App) AdminReviewCampaign(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !a.decode(w, r, &req) {
		return
	}
	c, err := a.Review.ReviewCampaign(r.Context(), a.actor(r), chi.URLParam(r, "id"), req.Approve, req.Note)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCampaign(c, middleware.LocaleFromContext(r.Context()), true))
}

type roleRequest struct {
	Role domain.UserRole `json:"role"`
}

func (a *App) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !a.decode(w, r, &req) {
		return
	}
	u, err := a.Review.SetRole(r.Context(), a.actor(r), chi.URLParam(r, "userID"), req.Role)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toUser(u))
}
