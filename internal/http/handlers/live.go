package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"crowdfund/internal/realtime"
)

// CampaignLive upgrades to a websocket and streams campaign snapshots. The
// subscription is taken before the snapshot is read so no update is lost in
// between.
func (a *App) CampaignLive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	actor := a.actor(r)

	// Access check before subscribing so unknown ids never reach the hub.
	if _, err := a.Funding.GetCampaign(r.Context(), actor, id); err != nil {
		a.fail(w, r, err)
		return
	}
	events, unsubscribe := a.Hub.Subscribe(id)
	defer unsubscribe()

	c, err := a.Funding.GetCampaign(r.Context(), actor, id)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	conn, err := a.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		a.Logger.Debug().Err(err).Str("campaign_id", id).Msg("live feed upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	if a.Shutdown != nil {
		stop := context.AfterFunc(a.Shutdown, cancel)
		defer stop()
	}

	logger := a.Logger.With().Str("campaign_id", id).Logger()
	logger.Debug().Int("subscribers", a.Hub.Subscribers(id)).Msg("live feed opened")
	realtime.Stream(ctx, conn, realtime.NewEvent(realtime.EventCampaignUpdated, *c), events, logger)
}
