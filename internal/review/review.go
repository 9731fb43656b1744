// Package review implements the admin verification and campaign review
// queues.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/realtime"
	"crowdfund/internal/storage"
)

// PendingUser pairs an account awaiting verification with its documents.
type PendingUser struct {
	User      domain.User
	Documents []domain.VerificationDocument
}

type Service struct {
	users     domain.UserRepository
	documents domain.DocumentRepository
	campaigns domain.CampaignRepository
	files     storage.Store
	events    realtime.Publisher
	logger    zerolog.Logger
}

func NewService(
	users domain.UserRepository,
	documents domain.DocumentRepository,
	campaigns domain.CampaignRepository,
	files storage.Store,
	events realtime.Publisher,
	logger zerolog.Logger,
) *Service {
	return &Service{
		users:     users,
		documents: documents,
		campaigns: campaigns,
		files:     files,
		events:    events,
		logger:    logger.With().Str("component", "review").Logger(),
	}
}

func requireAdmin(actor domain.Actor) error {
	if actor.UserID == "" {
		return domain.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func decisionNote(approve bool, note string) (string, error) {
	note = strings.TrimSpace(note)
	if !approve && note == "" {
		return "", &domain.ValidationError{Fields: map[string]string{"note": "is required when rejecting"}}
	}
	if len(note) > 1000 {
		return "", &domain.ValidationError{Fields: map[string]string{"note": "must be at most 1000 characters"}}
	}
	return note, nil
}

// PendingVerifications lists accounts waiting for document review, oldest
// first, with their uploaded documents.
func (s *Service) PendingVerifications(ctx context.Context, actor domain.Actor, limit, offset int) ([]PendingUser, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	f := domain.CampaignFilter{Limit: limit, Offset: offset}.Normalize()
	users, err := s.users.ListByVerification(ctx, domain.VerificationPending, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]PendingUser, 0, len(users))
	for _, u := range users {
		docs, err := s.documents.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("documents for %s: %w", u.ID, err)
		}
		out = append(out, PendingUser{User: u, Documents: docs})
	}
	return out, nil
}

// ReviewUser approves or rejects a pending account. Rejections need a note
// the user can act on.
func (s *Service) ReviewUser(ctx context.Context, actor domain.Actor, userID string, approve bool, note string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	note, err := decisionNote(approve, note)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrNotFound
	}
	to := domain.VerificationRejected
	if approve {
		to = domain.VerificationApproved
	}
	u, err := s.users.UpdateVerification(ctx, userID, domain.VerificationPending, to, note)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("by", actor.UserID).Str("verification", string(to)).Msg("user reviewed")
	return u, nil
}

// Document returns the bytes of a verification document. Admins may read any
// document; users only their own.
func (s *Service) Document(ctx context.Context, actor domain.Actor, userID, documentID string) (*domain.VerificationDocument, []byte, error) {
	if actor.UserID == "" {
		return nil, nil, domain.ErrUnauthorized
	}
	if !actor.IsAdmin() && !actor.Owns(userID) {
		return nil, nil, domain.ErrForbidden
	}
	docs, err := s.documents.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	for i := range docs {
		if docs[i].ID != documentID {
			continue
		}
		data, err := s.files.Get(ctx, docs[i].StorageKey)
		if err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				return nil, nil, domain.ErrNotFound
			}
			return nil, nil, err
		}
		return &docs[i], data, nil
	}
	return nil, nil, domain.ErrNotFound
}

// PendingCampaigns lists campaigns waiting for review.
func (s *Service) PendingCampaigns(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Campaign, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.campaigns.List(ctx, domain.CampaignFilter{
		Status: domain.CampaignPendingReview,
		Limit:  limit,
		Offset: offset,
	}.Normalize())
}

// ReviewCampaign moves a pending_review campaign to active or rejected.
func (s *Service) ReviewCampaign(ctx context.Context, actor domain.Actor, campaignID string, approve bool, note string) (*domain.Campaign, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	note, err := decisionNote(approve, note)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(campaignID); err != nil {
		return nil, domain.ErrNotFound
	}
	to := domain.CampaignRejected
	if approve {
		to = domain.CampaignActive
	}
	c, err := s.campaigns.UpdateStatus(ctx, campaignID, []domain.CampaignStatus{domain.CampaignPendingReview}, to, note)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("campaign_id", campaignID).Str("by", actor.UserID).Str("status", string(to)).Msg("campaign reviewed")
	if s.events != nil {
		s.events.Publish(ctx, realtime.NewEvent(realtime.EventCampaignUpdated, *c))
	}
	return c, nil
}

// SetRole changes an account role. Used by operators to promote admins.
func (s *Service) SetRole(ctx context.Context, actor domain.Actor, userID string, role domain.UserRole) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, &domain.ValidationError{Fields: map[string]string{"role": "is not a role"}}
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrNotFound
	}
	u, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("by", actor.UserID).Str("role", string(role)).Msg("role changed")
	return u, nil
}
