package handlers

import (
	"net/http"

	"crowdfund/internal/middleware"
	"crowdfund/internal/money"
)

type statsResponse struct {
	TotalRaised        int64  `json:"total_raised"`
	TotalRaisedDisplay string `json:"total_raised_display"`
	ActiveCampaigns    int64  `json:"active_campaigns"`
	CompletedCampaigns int64  `json:"completed_campaigns"`
	Donors             int64  `json:"donors"`
	Donations          int64  `json:"donations"`
}

// StatsSummary reports landing page totals. Amounts are summed across
// campaigns and displayed in DefaultCurrency.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	s, err := a.Stats.Summary(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, statsResponse{
		TotalRaised:        s.TotalRaised,
		TotalRaisedDisplay: money.Format(s.TotalRaised, a.DefaultCurrency, middleware.LocaleFromContext(r.Context())),
		ActiveCampaigns:    s.ActiveCampaigns,
		CompletedCampaigns: s.CompletedCampaigns,
		Donors:             s.Donors,
		Donations:          s.Donations,
	})
}
