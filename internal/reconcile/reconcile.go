// Package reconcile repairs campaign counters from the donation ledger and
// settles campaigns that reached their goal or end date.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/realtime"
)

const DefaultBatch = 100

// Report summarises one reconciliation pass.
type Report struct {
	Drifted   int
	Repaired  int
	Completed int
	Closed    int
	Failed    int
}

func (r Report) Changed() bool {
	return r.Repaired+r.Completed+r.Closed > 0
}

type Reconciler struct {
	repo   domain.ReconcileRepository
	events realtime.Publisher
	batch  int
	logger zerolog.Logger
}

func New(repo domain.ReconcileRepository, events realtime.Publisher, batch int, logger zerolog.Logger) *Reconciler {
	if batch <= 0 {
		batch = DefaultBatch
	}
	return &Reconciler{
		repo:   repo,
		events: events,
		batch:  batch,
		logger: logger.With().Str("component", "reconcile").Logger(),
	}
}

// RunOnce performs a single pass. A failure on one campaign is logged and
// counted; the pass continues with the rest.
func (r *Reconciler) RunOnce(ctx context.Context) (Report, error) {
	var rep Report

	drift, err := r.repo.FindDrift(ctx, r.batch)
	if err != nil {
		return rep, err
	}
	rep.Drifted = len(drift)
	for _, d := range drift {
		c, err := r.repo.ApplyLedger(ctx, d.CampaignID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return rep, err
			}
			rep.Failed++
			r.logger.Error().Err(err).Str("campaign_id", d.CampaignID).Msg("apply ledger failed")
			continue
		}
		rep.Repaired++
		r.logger.Warn().
			Str("campaign_id", d.CampaignID).
			Int64("stored_raised", d.StoredRaised).
			Int64("ledger_raised", d.LedgerRaised).
			Int64("stored_donors", d.StoredDonors).
			Int64("ledger_donors", d.LedgerDonors).
			Msg("counter drift repaired")
		r.publish(ctx, realtime.EventReconciled, *c)
	}

	completed, err := r.repo.CompleteFunded(ctx)
	if err != nil {
		return rep, err
	}
	rep.Completed = len(completed)
	for _, c := range completed {
		r.logger.Info().Str("campaign_id", c.ID).Msg("campaign completed by reconciler")
		r.publish(ctx, realtime.EventGoalReached, c)
	}

	closed, err := r.repo.CloseExpired(ctx)
	if err != nil {
		return rep, err
	}
	rep.Closed = len(closed)
	for _, c := range closed {
		r.logger.Info().Str("campaign_id", c.ID).Msg("campaign closed after end date")
		r.publish(ctx, realtime.EventCampaignUpdated, c)
	}
	return rep, nil
}

// Run repeats RunOnce every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	r.logger.Info().Dur("interval", interval).Msg("reconciler started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		rep, err := r.RunOnce(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			r.logger.Error().Err(err).Msg("reconcile pass failed")
		case rep.Changed() || rep.Failed > 0:
			r.logger.Info().
				Int("drifted", rep.Drifted).
				Int("repaired", rep.Repaired).
				Int("completed", rep.Completed).
				Int("closed", rep.Closed).
				Int("failed", rep.Failed).
				Msg("reconcile pass")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Reconciler) publish(ctx context.Context, t realtime.EventType, c domain.Campaign) {
	if r.events == nil {
		return
	}
	r.events.Publish(ctx, realtime.NewEvent(t, c))
}
