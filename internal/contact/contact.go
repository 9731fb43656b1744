// Package contact stores messages from the public contact form.
package contact

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crowdfund/internal/domain"
	"crowdfund/internal/validate"
)

type Service struct {
	repo   domain.ContactRepository
	logger zerolog.Logger
}

func NewService(repo domain.ContactRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("component", "contact").Logger()}
}

func (s *Service) Create(ctx context.Context, in domain.ContactInput) (*domain.ContactRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	req := &domain.ContactRequest{
		ID:      uuid.NewString(),
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
		Status:  domain.ContactOpen,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info().Str("contact_id", req.ID).Msg("contact request received")
	return req, nil
}

// List returns requests in the given status; "" means open.
func (s *Service) List(ctx context.Context, actor domain.Actor, status domain.ContactStatus, limit, offset int) ([]domain.ContactRequest, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	switch status {
	case "":
		status = domain.ContactOpen
	case domain.ContactOpen, domain.ContactResolved:
	default:
		return nil, &domain.ValidationError{Fields: map[string]string{"status": "must be open or resolved"}}
	}
	f := domain.CampaignFilter{Limit: limit, Offset: offset}.Normalize()
	return s.repo.List(ctx, status, f.Limit, f.Offset)
}

func (s *Service) Resolve(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrNotFound
	}
	return s.repo.Resolve(ctx, id)
}
