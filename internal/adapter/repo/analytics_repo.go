package repo

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// AnalyticsRepositoryPG implements AnalyticsRepository using PostgreSQL.
type AnalyticsRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(sql infra.SQLExecutor) *AnalyticsRepositoryPG {
	return &AnalyticsRepositoryPG{sql: sql}
}

// Summary returns platform wide totals.
func (r *AnalyticsRepositoryPG) Summary(ctx context.Context) (*domain.PlatformStats, error) {
	var s domain.PlatformStats
	if err := r.sql.QueryRow(ctx, sqlinline.QStatsSummary).Scan(
		&s.TotalRaised, &s.ActiveCampaigns, &s.CompletedCampaigns, &s.Donors, &s.Donations,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
