package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/funding"
	"crowdfund/internal/middleware"
)

type donationResponse struct {
	Donation    donationDTO `json:"donation"`
	Campaign    campaignDTO `json:"campaign"`
	GoalReached bool        `json:"goal_reached"`
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req funding.DonationInput
	if !a.decode(w, r, &req) {
		return
	}
	actor := a.actor(r)
	country := middleware.CountryFromContext(r.Context())
	res, err := a.Funding.RecordDonation(r.Context(), actor, chi.URLParam(r, "id"), country, req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, donationResponse{
		Donation:    toDonation(res.Donation, actor.UserID),
		Campaign:    toCampaign(&res.Campaign, middleware.LocaleFromContext(r.Context()), false),
		GoalReached: res.GoalReached,
	})
}

func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	actor := a.actor(r)
	items, err := a.Funding.ListDonations(r.Context(), actor, chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(toDonations(items, actor.UserID), limit, offset))
}

func (a *App) MyDonations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	actor := a.actor(r)
	items, err := a.Funding.ListDonationsByDonor(r.Context(), actor, limit, offset)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, list(toDonations(items, actor.UserID), limit, offset))
}
