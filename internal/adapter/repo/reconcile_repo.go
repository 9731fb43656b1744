package repo

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// ReconcileRepositoryPG backs the counter reconciliation loop.
type ReconcileRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewReconcileRepository(sql infra.SQLExecutor) *ReconcileRepositoryPG {
	return &ReconcileRepositoryPG{sql: sql}
}

// FindDrift lists campaigns whose counters disagree with the ledger.
func (r *ReconcileRepositoryPG) FindDrift(ctx context.Context, limit int) ([]domain.CounterDrift, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QFindCounterDrift, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CounterDrift
	for rows.Next() {
		var (
			d      domain.CounterDrift
			status string
		)
		if err := rows.Scan(&d.CampaignID, &d.StoredRaised, &d.StoredDonors, &d.LedgerRaised, &d.LedgerDonors, &d.GoalAmount, &status); err != nil {
			return nil, err
		}
		d.Status = domain.CampaignStatus(status)
		items = append(items, d)
	}
	return items, rows.Err()
}

// ApplyLedger overwrites the counters with the ledger totals.
func (r *ReconcileRepositoryPG) ApplyLedger(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	return scanCampaign(r.sql.QueryRow(ctx, sqlinline.QApplyLedger, campaignID))
}

// CompleteFunded flips active campaigns whose goal is covered.
func (r *ReconcileRepositoryPG) CompleteFunded(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QCompleteFundedCampaigns)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

// CloseExpired closes active campaigns past their end date.
func (r *ReconcileRepositoryPG) CloseExpired(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QCloseExpiredCampaigns)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}
