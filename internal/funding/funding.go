// Package funding implements campaigns, donations and expenses.
package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"crowdfund/internal/domain"
	"crowdfund/internal/money"
	"crowdfund/internal/realtime"
	"crowdfund/internal/storage"
	"crowdfund/internal/validate"
)

type Options struct {
	DefaultCurrency string
	MaxUploadBytes  int64
	Now             func() time.Time
}

type Service struct {
	campaigns domain.CampaignRepository
	donations domain.DonationRepository
	expenses  domain.ExpenseRepository
	users     domain.UserRepository
	files     storage.Store
	events    realtime.Publisher
	logger    zerolog.Logger
	opts      Options

	donationCount  metric.Int64Counter
	donationAmount metric.Int64Counter
}

func NewService(
	campaigns domain.CampaignRepository,
	donations domain.DonationRepository,
	expenses domain.ExpenseRepository,
	users domain.UserRepository,
	files storage.Store,
	events realtime.Publisher,
	logger zerolog.Logger,
	opts Options,
) *Service {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "INR"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = storage.DefaultMaxBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Service{
		campaigns: campaigns,
		donations: donations,
		expenses:  expenses,
		users:     users,
		files:     files,
		events:    events,
		logger:    logger.With().Str("component", "funding").Logger(),
		opts:      opts,
	}

	meter := otel.Meter("crowdfund/funding")
	var err error
	if s.donationCount, err = meter.Int64Counter("crowdfund.donations",
		metric.WithDescription("Donations recorded")); err != nil {
		s.logger.Warn().Err(err).Msg("donation counter unavailable")
	}
	if s.donationAmount, err = meter.Int64Counter("crowdfund.donations.amount",
		metric.WithDescription("Donated amount in minor currency units")); err != nil {
		s.logger.Warn().Err(err).Msg("donation amount counter unavailable")
	}
	return s
}

// CreateCampaign opens a campaign in pending_review. Only verified
// fundraisers may create campaigns.
func (s *Service) CreateCampaign(ctx context.Context, actor domain.Actor, in domain.CampaignInput) (*domain.Campaign, error) {
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.EndsAt != nil && !in.EndsAt.After(s.opts.Now()) {
		return nil, &domain.ValidationError{Fields: map[string]string{"ends_at": "must be in the future"}}
	}
	owner, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !owner.Role.RaisesFunds() {
		return nil, fmt.Errorf("%w: only ngo and individual accounts can raise funds", domain.ErrForbidden)
	}
	if owner.Verification != domain.VerificationApproved {
		return nil, domain.ErrNotVerified
	}

	currency := in.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}
	c := &domain.Campaign{
		ID:         uuid.NewString(),
		OwnerID:    owner.ID,
		Title:      strings.TrimSpace(in.Title),
		Summary:    strings.TrimSpace(in.Summary),
		Story:      in.Story,
		Category:   in.Category,
		ImageURL:   in.ImageURL,
		Currency:   currency,
		GoalAmount: in.GoalAmount,
		Status:     domain.CampaignPendingReview,
		EndsAt:     in.EndsAt,
	}
	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	s.logger.Info().Str("campaign_id", c.ID).Str("owner_id", c.OwnerID).Msg("campaign created")
	s.publish(ctx, realtime.EventCampaignUpdated, *c, 0)
	return c, nil
}

// visible reports whether actor may see a campaign in its current state.
// Campaigns under review or rejected are private to the owner and admins.
func visible(actor domain.Actor, c *domain.Campaign) bool {
	switch c.Status {
	case domain.CampaignPendingReview, domain.CampaignRejected:
		return actor.IsAdmin() || actor.Owns(c.OwnerID)
	}
	return true
}

// ListCampaigns applies the filter. Without a status, the public listing
// shows active campaigns.
func (s *Service) ListCampaigns(ctx context.Context, actor domain.Actor, f domain.CampaignFilter) ([]domain.Campaign, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, &domain.ValidationError{Fields: map[string]string{"status": "is not a campaign status"}}
	}
	if f.Status == "" && f.OwnerID == "" {
		f.Status = domain.CampaignActive
	}
	if f.Status == domain.CampaignPendingReview || f.Status == domain.CampaignRejected {
		if !actor.IsAdmin() && !actor.Owns(f.OwnerID) {
			return nil, domain.ErrForbidden
		}
	}
	items, err := s.campaigns.List(ctx, f.Normalize())
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for i := range items {
		if visible(actor, &items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// GetCampaign hides private campaigns behind domain.ErrNotFound.
func (s *Service) GetCampaign(ctx context.Context, actor domain.Actor, id string) (*domain.Campaign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(actor, c) {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *Service) UpdateCampaign(ctx context.Context, actor domain.Actor, id string, patch domain.CampaignPatch) (*domain.Campaign, error) {
	if err := validate.Struct(patch); err != nil {
		return nil, err
	}
	if patch.EndsAt != nil && !patch.EndsAt.After(s.opts.Now()) {
		return nil, &domain.ValidationError{Fields: map[string]string{"ends_at": "must be in the future"}}
	}
	c, err := s.GetCampaign(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(c.OwnerID) {
		return nil, domain.ErrForbidden
	}
	if !c.Status.Editable() {
		return nil, fmt.Errorf("%w: %s campaigns cannot be edited", domain.ErrInvalidTransition, c.Status)
	}
	patch.Apply(c)
	if err := s.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ctx, realtime.EventCampaignUpdated, *c, 0)
	return c, nil
}

// CloseCampaign stops a campaign from taking donations. Owners and admins
// may close pending or active campaigns.
func (s *Service) CloseCampaign(ctx context.Context, actor domain.Actor, id, note string) (*domain.Campaign, error) {
	c, err := s.GetCampaign(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Owns(c.OwnerID) {
		return nil, domain.ErrForbidden
	}
	closed, err := s.campaigns.UpdateStatus(ctx, id,
		[]domain.CampaignStatus{domain.CampaignPendingReview, domain.CampaignActive},
		domain.CampaignClosed, strings.TrimSpace(note))
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("campaign_id", id).Str("by", actor.UserID).Msg("campaign closed")
	s.publish(ctx, realtime.EventCampaignUpdated, *closed, 0)
	return closed, nil
}

// DonationInput is the donor supplied part of a donation.
type DonationInput struct {
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Message   string `json:"message" validate:"max=500"`
	Anonymous bool   `json:"anonymous"`
}

// RecordDonation stores the donation and bumps the campaign counters in a
// single statement. The campaign flips to completed once its goal is met.
func (s *Service) RecordDonation(ctx context.Context, actor domain.Actor, campaignID, country string, in DonationInput) (*domain.DonationResult, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(campaignID); err != nil {
		return nil, domain.ErrNotFound
	}
	d := &domain.Donation{
		CampaignID: campaignID,
		AmountInt:  in.Amount,
		Message:    strings.TrimSpace(in.Message),
		Anonymous:  in.Anonymous,
		Country:    strings.ToUpper(country),
	}
	if actor.UserID != "" {
		donor := actor.UserID
		d.DonorID = &donor
	}

	res, err := s.donations.Record(ctx, d)
	if err != nil {
		return nil, err
	}

	c := res.Campaign
	attrs := metric.WithAttributes(attribute.String("currency", c.Currency))
	if s.donationCount != nil {
		s.donationCount.Add(ctx, 1, attrs)
	}
	if s.donationAmount != nil {
		s.donationAmount.Add(ctx, in.Amount, attrs)
	}
	s.logger.Info().
		Str("campaign_id", c.ID).
		Str("donation_id", res.Donation.ID).
		Str("amount", money.Format(in.Amount, c.Currency, "en")).
		Int64("raised", c.RaisedAmount).
		Bool("goal_reached", res.GoalReached).
		Msg("donation recorded")

	s.publish(ctx, realtime.EventDonation, c, in.Amount)
	if res.GoalReached {
		s.publish(ctx, realtime.EventGoalReached, c, 0)
	}
	return res, nil
}

// ListDonations returns a page of donations for a visible campaign.
func (s *Service) ListDonations(ctx context.Context, actor domain.Actor, campaignID string, limit, offset int) ([]domain.Donation, error) {
	if _, err := s.GetCampaign(ctx, actor, campaignID); err != nil {
		return nil, err
	}
	limit, offset = page(limit, offset)
	return s.donations.ListByCampaign(ctx, campaignID, limit, offset)
}

func (s *Service) ListDonationsByDonor(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Donation, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	limit, offset = page(limit, offset)
	return s.donations.ListByDonor(ctx, actor.UserID, limit, offset)
}

func (s *Service) publish(ctx context.Context, t realtime.EventType, c domain.Campaign, amount int64) {
	if s.events == nil {
		return
	}
	ev := realtime.NewEvent(t, c)
	ev.Amount = amount
	s.events.Publish(ctx, ev)
}

func page(limit, offset int) (int, int) {
	f := domain.CampaignFilter{Limit: limit, Offset: offset}.Normalize()
	return f.Limit, f.Offset
}
