package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/middleware"
)

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pageParams(r)
	f := domain.CampaignFilter{
		Status:   domain.CampaignStatus(q.Get("status")),
		Category: q.Get("category"),
		OwnerID:  q.Get("owner"),
		Query:    strings.TrimSpace(q.Get("q")),
		Limit:    limit,
		Offset:   offset,
	}
	if f.OwnerID == "me" {
		f.OwnerID = middleware.UserIDFromContext(r.Context())
		if f.OwnerID == "" {
			a.fail(w, r, domain.ErrUnauthorized)
			return
		}
	}
	items, err := a.Funding.ListCampaigns(r.Context(), a.actor(r), f)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(toCampaigns(items, middleware.LocaleFromContext(r.Context())), limit, offset))
}

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	c, err := a.Funding.GetCampaign(r.Context(), a.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCampaign(c, middleware.LocaleFromContext(r.Context()), true))
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req domain.CampaignInput
	if !a.decode(w, r, &req) {
		return
	}
	c, err := a.Funding.CreateCampaign(r.Context(), a.actor(r), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toCampaign(c, middleware.LocaleFromContext(r.Context()), true))
}

func (a *App) CampaignsUpdate(w http.ResponseWriter, r *http.Request) {
	var req domain.CampaignPatch
	if !a.decode(w, r, &req) {
		return
	}
	c, err := a.Funding.UpdateCampaign(r.Context(), a.actor(r), chi.URLParam(r, "id"), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCampaign(c, middleware.LocaleFromContext(r.Context()), true))
}

type noteRequest struct {
	Note string `json:"note"`
}

func (a *App) CampaignsClose(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if r.ContentLength != 0 && !a.decode(w, r, &req) {
		return
	}
	c, err := a.Funding.CloseCampaign(r.Context(), a.actor(r), chi.URLParam(r, "id"), req.Note)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCampaign(c, middleware.LocaleFromContext(r.Context()), false))
}

// CampaignsReceipts streams the expense receipts as a zip archive.
func (a *App) CampaignsReceipts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := a.actor(r)
	// Resolve access before the zip headers go out.
	if _, err := a.Funding.ListExpenses(r.Context(), actor, id); err != nil {
		a.fail(w, r, err)
		return
	}
	pr := &pendingResponse{w: w, header: func() {
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=campaign-%s-receipts.zip", id))
	}}
	if err := a.Funding.ExportReceipts(r.Context(), actor, id, middleware.LocaleFromContext(r.Context()), pr); err != nil {
		if pr.started {
			a.Logger.Error().Err(err).Str("campaign_id", id).Msg("receipt export aborted")
			return
		}
		a.fail(w, r, err)
	}
}

// pendingResponse sets the success headers on the first write so an early
// error can still be reported as JSON.
type pendingResponse struct {
	w       http.ResponseWriter
	header  func()
	started bool
}

func (p *pendingResponse) Write(b []byte) (int, error) {
	if !p.started {
		p.started = true
		p.header()
		p.w.WriteHeader(http.StatusOK)
	}
	return p.w.Write(b)
}
