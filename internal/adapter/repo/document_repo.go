package repo

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// DocumentRepositoryPG stores verification document metadata; the bytes
// live in object storage.
type DocumentRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewDocumentRepository(sql infra.SQLExecutor) *DocumentRepositoryPG {
	return &DocumentRepositoryPG{sql: sql}
}

func (r *DocumentRepositoryPG) Create(ctx context.Context, d *domain.VerificationDocument) error {
	return r.sql.QueryRow(ctx, sqlinline.QInsertDocument,
		d.ID, d.UserID, string(d.Kind), d.StorageKey, d.MIME, d.Bytes,
	).Scan(&d.CreatedAt)
}

func (r *DocumentRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.VerificationDocument, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListDocumentsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.VerificationDocument
	for rows.Next() {
		var (
			d    domain.VerificationDocument
			kind string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &kind, &d.StorageKey, &d.MIME, &d.Bytes, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Kind = domain.DocumentKind(kind)
		items = append(items, d)
	}
	return items, rows.Err()
}
