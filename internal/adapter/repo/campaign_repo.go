package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// CampaignRepositoryPG implements domain.CampaignRepository.
type CampaignRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewCampaignRepository(sql infra.SQLExecutor) *CampaignRepositoryPG {
	return &CampaignRepositoryPG{sql: sql}
}

func (r *CampaignRepositoryPG) Create(ctx context.Context, c *domain.Campaign) error {
	return r.sql.QueryRow(ctx, sqlinline.QInsertCampaign,
		c.ID,
		c.OwnerID,
		c.Title,
		c.Summary,
		c.Story,
		c.Category,
		c.ImageURL,
		c.Currency,
		c.GoalAmount,
		string(c.Status),
		c.EndsAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	return scanCampaign(r.sql.QueryRow(ctx, sqlinline.QSelectCampaignByID, id))
}

func (r *CampaignRepositoryPG) List(ctx context.Context, f domain.CampaignFilter) ([]domain.Campaign, error) {
	f = f.Normalize()
	rows, err := r.sql.Query(ctx, sqlinline.QListCampaigns, string(f.Status), f.Category, f.OwnerID, f.Query, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

// Update writes owner editable fields. The status may flip to completed
// when a lowered goal is already covered.
func (r *CampaignRepositoryPG) Update(ctx context.Context, c *domain.Campaign) error {
	var status string
	err := r.sql.QueryRow(ctx, sqlinline.QUpdateCampaign,
		c.ID,
		c.Title,
		c.Summary,
		c.Story,
		c.ImageURL,
		c.GoalAmount,
		c.EndsAt,
	).Scan(&status, &c.UpdatedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.ErrInvalidTransition
		}
		return err
	}
	c.Status = domain.CampaignStatus(status)
	return nil
}

// UpdateStatus performs a guarded transition. It distinguishes a missing
// campaign from one in the wrong state.
func (r *CampaignRepositoryPG) UpdateStatus(ctx context.Context, id string, from []domain.CampaignStatus, to domain.CampaignStatus, note string) (*domain.Campaign, error) {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	c, err := scanCampaign(r.sql.QueryRow(ctx, sqlinline.QTransitionCampaign, id, allowed, string(to), note))
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrInvalidTransition
	}
	return c, err
}

// campaignDest returns scan targets in sqlinline.CampaignColumns order.
func campaignDest(c *domain.Campaign, status *string) []any {
	return []any{
		&c.ID, &c.OwnerID, &c.Title, &c.Summary, &c.Story, &c.Category, &c.ImageURL, &c.Currency,
		&c.GoalAmount, &c.RaisedAmount, &c.DonorCount, status, &c.ReviewNote, &c.EndsAt, &c.CreatedAt, &c.UpdatedAt,
	}
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c      domain.Campaign
		status string
	)
	if err := row.Scan(campaignDest(&c, &status)...); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	c.Status = domain.CampaignStatus(status)
	return &c, nil
}

func collectCampaigns(rows pgx.Rows) ([]domain.Campaign, error) {
	defer rows.Close()
	var items []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
