package funding

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"crowdfund/internal/domain"
	"crowdfund/internal/money"
	"crowdfund/internal/realtime"
	"crowdfund/internal/storage"
	"crowdfund/internal/validate"
	"crowdfund/pkg/zip"
)

// ExpenseRequest is an expense plus its base64 encoded receipt.
type ExpenseRequest struct {
	domain.ExpenseInput
	Receipt string `json:"receipt" validate:"required"`
}

// AddExpense stores the receipt and records the expense. Total expenses may
// not exceed the raised amount.
func (s *Service) AddExpense(ctx context.Context, actor domain.Actor, campaignID string, in ExpenseRequest) (*domain.Expense, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.SpentOn.After(s.opts.Now()) {
		return nil, &domain.ValidationError{Fields: map[string]string{"spent_on": "cannot be in the future"}}
	}
	c, err := s.GetCampaign(ctx, actor, campaignID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(c.OwnerID) {
		return nil, domain.ErrForbidden
	}
	if c.Status == domain.CampaignPendingReview || c.Status == domain.CampaignRejected {
		return nil, fmt.Errorf("%w: campaign has not raised funds", domain.ErrInvalidTransition)
	}
	if in.AmountInt > c.RaisedAmount {
		return nil, domain.ErrExpenseExceedsRaised
	}

	up, err := storage.DecodeUpload(in.Receipt, s.opts.MaxUploadBytes)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"receipt": err.Error()}}
	}
	key, err := s.files.Put(ctx, storage.ObjectKey(string(domain.DocExpenseReceipt), c.ID, up.Ext), up.MIME, up.Data)
	if err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	e := &domain.Expense{
		ID:          uuid.NewString(),
		CampaignID:  c.ID,
		AmountInt:   in.AmountInt,
		Description: strings.TrimSpace(in.Description),
		ReceiptKey:  key,
		ReceiptMIME: up.MIME,
		SpentOn:     in.SpentOn,
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		// The receipt object stays behind; it is unreferenced but harmless.
		s.logger.Warn().Err(err).Str("campaign_id", c.ID).Str("receipt_key", key).Msg("expense rejected after receipt upload")
		return nil, err
	}
	s.logger.Info().
		Str("campaign_id", c.ID).
		Str("expense_id", e.ID).
		Str("amount", money.Format(e.AmountInt, c.Currency, "en")).
		Msg("expense added")
	s.publish(ctx, realtime.EventExpense, *c, e.AmountInt)
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context, actor domain.Actor, campaignID string) ([]domain.Expense, error) {
	if _, err := s.GetCampaign(ctx, actor, campaignID); err != nil {
		return nil, err
	}
	return s.expenses.ListByCampaign(ctx, campaignID)
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(s) > 40 {
		s = strings.TrimRight(s[:40], "-")
	}
	if s == "" {
		return "expense"
	}
	return s
}

// ExportReceipts writes a zip with every receipt plus a manifest.csv.
// Only the owner and admins may export.
func (s *Service) ExportReceipts(ctx context.Context, actor domain.Actor, campaignID, locale string, w io.Writer) error {
	c, err := s.GetCampaign(ctx, actor, campaignID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !actor.Owns(c.OwnerID) {
		return domain.ErrForbidden
	}
	items, err := s.expenses.ListByCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	var manifest strings.Builder
	cw := csv.NewWriter(&manifest)
	_ = cw.Write([]string{"date", "amount", "amount_minor", "description", "file"})

	entries := make([]zip.Entry, 0, len(items)+1)
	for _, e := range items {
		name := fmt.Sprintf("receipts/%s_%s%s", e.SpentOn.Format("2006-01-02"), slug(e.Description), path.Ext(e.ReceiptKey))
		data, err := s.files.Get(ctx, e.ReceiptKey)
		if err != nil {
			if !errors.Is(err, storage.ErrObjectNotFound) {
				return fmt.Errorf("load receipt %s: %w", e.ID, err)
			}
			s.logger.Warn().Str("expense_id", e.ID).Str("receipt_key", e.ReceiptKey).Msg("receipt missing from storage")
			name = ""
		} else {
			entries = append(entries, zip.Entry{Name: name, Modified: e.CreatedAt, Data: data})
		}
		_ = cw.Write([]string{
			e.SpentOn.Format("2006-01-02"),
			money.Format(e.AmountInt, c.Currency, locale),
			strconv.FormatInt(e.AmountInt, 10),
			e.Description,
			name,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	entries = append(entries, zip.Entry{Name: "manifest.csv", Modified: s.opts.Now(), Data: []byte(manifest.String())})
	return zip.Write(w, entries)
}
