package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// DonationRepositoryPG implements domain.DonationRepository.
type DonationRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewDonationRepository creates a new donation repo.
func NewDonationRepository(sql infra.SQLExecutor) *DonationRepositoryPG {
	return &DonationRepositoryPG{sql: sql}
}

// Record runs the single statement that inserts the donation and bumps
// the campaign counters. When nothing comes back the campaign is either
// missing or not active.
func (r *DonationRepositoryPG) Record(ctx context.Context, d *domain.Donation) (*domain.DonationResult, error) {
	var (
		c      domain.Campaign
		status string
		donor  string
	)
	if d.DonorID != nil {
		donor = *d.DonorID
	}
	dest := append([]any{&d.ID, &d.CreatedAt}, campaignDest(&c, &status)...)
	err := r.sql.QueryRow(ctx, sqlinline.QRecordDonation,
		d.CampaignID,
		d.AmountInt,
		donor,
		d.Message,
		d.Anonymous,
		d.Country,
	).Scan(dest...)
	if err != nil {
		if !infra.IsNoRows(err) {
			return nil, err
		}
		var probe domain.Campaign
		var probeStatus string
		if err := r.sql.QueryRow(ctx, sqlinline.QSelectCampaignByID, d.CampaignID).Scan(campaignDest(&probe, &probeStatus)...); err != nil {
			if infra.IsNoRows(err) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
		return nil, domain.ErrCampaignNotActive
	}
	c.Status = domain.CampaignStatus(status)
	return &domain.DonationResult{
		Donation:    *d,
		Campaign:    c,
		GoalReached: c.Status == domain.CampaignCompleted,
	}, nil
}

func (r *DonationRepositoryPG) ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByCampaign, campaignID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

func (r *DonationRepositoryPG) ListByDonor(ctx context.Context, donorID string, limit, offset int) ([]domain.Donation, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDonationsByDonor, donorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

func collectDonations(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()
	var items []domain.Donation
	for rows.Next() {
		var d domain.Donation
		if err := rows.Scan(&d.ID, &d.CampaignID, &d.DonorID, &d.AmountInt, &d.Message, &d.Anonymous, &d.Country, &d.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
