// Package auth signs users in with a password or a Google ID token and
// issues session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra/google"
	"crowdfund/internal/middleware"
)

// ErrGoogleDisabled is returned when no Google client id is configured.
var ErrGoogleDisabled = errors.New("google sign-in is not configured")

// dummyHash is compared against when the email is unknown so both paths
// spend the same bcrypt time.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("crowdfund-timing-pad"), bcrypt.DefaultCost)

type IDTokenVerifier interface {
	Enabled() bool
	VerifyIDToken(ctx context.Context, raw string) (*google.Identity, error)
}

// Session is a signed token plus the account it was issued for.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"-"`
}

type Service struct {
	users  domain.UserRepository
	google IDTokenVerifier
	tokens middleware.TokenConfig
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(users domain.UserRepository, verifier IDTokenVerifier, tokens middleware.TokenConfig, logger zerolog.Logger) *Service {
	return &Service{
		users:  users,
		google: verifier,
		tokens: tokens,
		logger: logger.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
}

// Login checks an email and password. Unknown emails and wrong passwords
// both yield domain.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"email": "email and password are required"}}
	}
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrUnauthorized
	case err != nil:
		return nil, err
	}
	if u.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, fmt.Errorf("%w: account uses google sign-in", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Info().Str("user_id", u.ID).Msg("password mismatch")
		return nil, domain.ErrUnauthorized
	}
	return s.Issue(u)
}

// Google verifies an ID token and signs the holder in, creating a donor
// account on first use.
func (s *Service) Google(ctx context.Context, idToken, locale string) (*Session, error) {
	if s.google == nil || !s.google.Enabled() {
		return nil, ErrGoogleDisabled
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"id_token": "is required"}}
	}
	id, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("google token rejected")
		return nil, domain.ErrUnauthorized
	}
	if !id.EmailVerified || id.Email == "" {
		return nil, fmt.Errorf("%w: google email is not verified", domain.ErrUnauthorized)
	}
	if id.Locale != "" {
		locale = id.Locale
	}
	u, err := s.users.UpsertByGoogleSub(ctx, &domain.User{
		GoogleSub: id.Subject,
		Email:     strings.ToLower(id.Email),
		Locale:    locale,
		Profile:   domain.Profile{FullName: id.Name},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID).Msg("google sign-in")
	return s.Issue(u)
}

// Issue signs a session token for u.
func (s *Service) Issue(u *domain.User) (*Session, error) {
	now := s.now()
	token, err := middleware.SignToken(s.tokens, u.ID, u.Role, u.Locale, now)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: now.Add(s.tokens.TTL), User: u}, nil
}

// Me loads the caller's account.
func (s *Service) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if actor.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.users.GetByID(ctx, actor.UserID)
}
