package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// OnboardingRepositoryPG persists signup wizard sessions.
type OnboardingRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewOnboardingRepository(sql infra.SQLExecutor) *OnboardingRepositoryPG {
	return &OnboardingRepositoryPG{sql: sql}
}

func (r *OnboardingRepositoryPG) Create(ctx context.Context, s *domain.OnboardingSession) error {
	return r.sql.QueryRow(ctx, sqlinline.QInsertOnboardingSession,
		s.ID,
		s.Email,
		s.PasswordHash,
		string(s.Role),
		string(s.Step),
		s.ExpiresAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *OnboardingRepositoryPG) Get(ctx context.Context, id string) (*domain.OnboardingSession, error) {
	var (
		s          domain.OnboardingSession
		role, step string
		profile    []byte
		docs       []byte
	)
	err := r.sql.QueryRow(ctx, sqlinline.QSelectOnboardingSession, id).Scan(
		&s.ID, &s.Email, &s.PasswordHash, &role, &step, &profile, &docs, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.Role = domain.UserRole(role)
	s.Step = domain.OnboardingStep(step)
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &s.Profile); err != nil {
			return nil, fmt.Errorf("decode onboarding profile: %w", err)
		}
	}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &s.Documents); err != nil {
			return nil, fmt.Errorf("decode onboarding documents: %w", err)
		}
	}
	return &s, nil
}

// Save writes the mutable wizard state back.
func (r *OnboardingRepositoryPG) Save(ctx context.Context, s *domain.OnboardingSession) error {
	profile, err := json.Marshal(s.Profile)
	if err != nil {
		return fmt.Errorf("encode onboarding profile: %w", err)
	}
	err = r.sql.QueryRow(ctx, sqlinline.QUpdateOnboardingSession,
		s.ID,
		string(s.Step),
		string(profile),
		string(s.DocumentsJSON()),
		s.UserID,
	).Scan(&s.UpdatedAt)
	if infra.IsNoRows(err) {
		return domain.ErrNotFound
	}
	return err
}
