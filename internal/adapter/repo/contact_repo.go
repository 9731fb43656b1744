package repo

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// ContactRepositoryPG implements domain.ContactRepository.
type ContactRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewContactRepository(sql infra.SQLExecutor) *ContactRepositoryPG {
	return &ContactRepositoryPG{sql: sql}
}

func (r *ContactRepositoryPG) Create(ctx context.Context, c *domain.ContactRequest) error {
	c.Status = domain.ContactOpen
	return r.sql.QueryRow(ctx, sqlinline.QInsertContactRequest, c.Name, c.Email, c.Subject, c.Message).Scan(&c.ID, &c.CreatedAt)
}

// List returns requests in the given status; an empty status lists all.
func (r *ContactRepositoryPG) List(ctx context.Context, status domain.ContactStatus, limit, offset int) ([]domain.ContactRequest, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListContactRequests, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ContactRequest
	for rows.Next() {
		var (
			c  domain.ContactRequest
			st string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Subject, &c.Message, &st, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = domain.ContactStatus(st)
		items = append(items, c)
	}
	return items, rows.Err()
}

// Resolve closes an open request. Already resolved or unknown ids report
// domain.ErrNotFound.
func (r *ContactRepositoryPG) Resolve(ctx context.Context, id string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QResolveContactRequest, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
