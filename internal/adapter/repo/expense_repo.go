package repo

import (
	"context"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// ExpenseRepositoryPG implements domain.ExpenseRepository. Inserts need a
// transaction so the funds check and insert see the same raised amount.
type ExpenseRepositoryPG struct {
	sql infra.TxExecutor
}

func NewExpenseRepository(sql infra.TxExecutor) *ExpenseRepositoryPG {
	return &ExpenseRepositoryPG{sql: sql}
}

func (r *ExpenseRepositoryPG) Create(ctx context.Context, e *domain.Expense) error {
	return r.sql.InTx(ctx, func(tx infra.SQLExecutor) error {
		var raised int64
		if err := tx.QueryRow(ctx, sqlinline.QLockCampaignFunds, e.CampaignID).Scan(&raised); err != nil {
			if infra.IsNoRows(err) {
				return domain.ErrNotFound
			}
			return err
		}
		var spent int64
		if err := tx.QueryRow(ctx, sqlinline.QSumExpenses, e.CampaignID).Scan(&spent); err != nil {
			return err
		}
		if spent+e.AmountInt > raised {
			return domain.ErrExpenseExceedsRaised
		}
		return tx.QueryRow(ctx, sqlinline.QInsertExpense,
			e.ID,
			e.CampaignID,
			e.AmountInt,
			e.Description,
			e.ReceiptKey,
			e.ReceiptMIME,
			e.SpentOn,
		).Scan(&e.CreatedAt)
	})
}

func (r *ExpenseRepositoryPG) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Expense, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListExpensesByCampaign, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Expense
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.AmountInt, &e.Description, &e.ReceiptKey, &e.ReceiptMIME, &e.SpentOn, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
