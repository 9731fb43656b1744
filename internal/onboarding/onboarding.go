// Package onboarding runs the multi-step signup wizard. Each step is
// persisted so a browser can resume after a reload, and the account is
// only created once the review step is confirmed.
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"crowdfund/internal/domain"
	"crowdfund/internal/storage"
	"crowdfund/internal/validate"
)

// ErrSessionExpired wraps domain.ErrInvalidTransition.
var ErrSessionExpired = fmt.Errorf("%w: onboarding session expired", domain.ErrInvalidTransition)

// Repos are the repositories Complete writes through in one transaction.
type Repos struct {
	Users     domain.UserRepository
	Documents domain.DocumentRepository
	Sessions  domain.OnboardingRepository
}

// TxRunner runs fn with repositories bound to a single transaction.
type TxRunner func(ctx context.Context, fn func(Repos) error) error

type Options struct {
	TTL        time.Duration
	MaxBytes   int64
	BcryptCost int
	Now        func() time.Time
}

type Service struct {
	sessions domain.OnboardingRepository
	users    domain.UserRepository
	files    storage.Store
	inTx     TxRunner
	logger   zerolog.Logger
	opts     Options
}

func NewService(sessions domain.OnboardingRepository, users domain.UserRepository, files storage.Store, inTx TxRunner, logger zerolog.Logger, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = 72 * time.Hour
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = storage.DefaultMaxBytes
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		sessions: sessions,
		users:    users,
		files:    files,
		inTx:     inTx,
		logger:   logger.With().Str("component", "onboarding").Logger(),
		opts:     opts,
	}
}

// AccountInput is the first wizard page.
type AccountInput struct {
	Email    string          `json:"email" validate:"required,email,max=254"`
	Password string          `json:"password" validate:"required,password"`
	Role     domain.UserRole `json:"role" validate:"required,signup_role"`
}

type DonorProfile struct {
	FullName string `json:"full_name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	City     string `json:"city" validate:"omitempty,max=80"`
}

type NGOProfile struct {
	OrganizationName   string `json:"organization_name" validate:"required,max=200"`
	RegistrationNumber string `json:"registration_number" validate:"required,max=64"`
	Address            string `json:"address" validate:"required,max=500"`
	Phone              string `json:"phone" validate:"required,phone"`
	Website            string `json:"website" validate:"omitempty,url"`
	FullName           string `json:"full_name" validate:"omitempty,max=120"`
	City               string `json:"city" validate:"omitempty,max=80"`
}

type IndividualProfile struct {
	FullName     string `json:"full_name" validate:"required,max=120"`
	GovernmentID string `json:"government_id" validate:"required,max=64"`
	Phone        string `json:"phone" validate:"required,phone"`
	City         string `json:"city" validate:"omitempty,max=80"`
	Address      string `json:"address" validate:"omitempty,max=500"`
}

// DocumentsInput carries base64 files keyed by document kind.
type DocumentsInput struct {
	Documents map[domain.DocumentKind]string `json:"documents"`
}

// Start validates the account page and opens a session at the profile step.
func (s *Service) Start(ctx context.Context, in AccountInput) (*domain.OnboardingSession, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	hash, err := s.checkAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	now := s.opts.Now()
	sess := &domain.OnboardingSession{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Step:         domain.StepProfile,
		Documents:    map[domain.DocumentKind]domain.StoredFile{},
		ExpiresAt:    now.Add(s.opts.TTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create onboarding session: %w", err)
	}
	s.logger.Info().Str("session_id", sess.ID).Str("role", string(sess.Role)).Msg("onboarding started")
	return sess, nil
}

// Submit applies the payload for step. Only the current step may be
// submitted; review is confirmed through Complete.
func (s *Service) Submit(ctx context.Context, sessionID string, step domain.OnboardingStep, payload json.RawMessage) (*domain.OnboardingSession, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if step != sess.Step || step == domain.StepReview || step == domain.StepDone {
		return nil, fmt.Errorf("%w: session is at %s, cannot submit %s", domain.ErrInvalidTransition, sess.Step, step)
	}

	switch step {
	case domain.StepAccount:
		err = s.submitAccount(ctx, sess, payload)
	case domain.StepProfile:
		err = s.submitProfile(sess, payload)
	case domain.StepDocuments:
		err = s.submitDocuments(ctx, sess, payload)
	default:
		err = fmt.Errorf("%w: unknown step %q", domain.ErrInvalidInput, step)
	}
	if err != nil {
		return nil, err
	}

	sess.Step = sess.NextStep()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save onboarding session: %w", err)
	}
	return sess, nil
}

// Back moves the session one step back. Entered data is kept.
func (s *Service) Back(ctx context.Context, sessionID string) (*domain.OnboardingSession, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prev := sess.PrevStep()
	if prev == "" {
		return nil, fmt.Errorf("%w: cannot go back from %s", domain.ErrInvalidTransition, sess.Step)
	}
	sess.Step = prev
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save onboarding session: %w", err)
	}
	return sess, nil
}

// Complete creates the account from a session at the review step.
// Fundraisers start with verification pending; donors are approved.
func (s *Service) Complete(ctx context.Context, sessionID, locale string) (*domain.User, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != domain.StepReview {
		return nil, fmt.Errorf("%w: session is at %s", domain.ErrInvalidTransition, sess.Step)
	}
	if missing := sess.MissingDocuments(); len(missing) > 0 {
		return nil, missingDocumentsError(missing)
	}

	verification := domain.VerificationApproved
	if sess.Role.RaisesFunds() {
		verification = domain.VerificationPending
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        sess.Email,
		PasswordHash: sess.PasswordHash,
		Role:         sess.Role,
		Verification: verification,
		Locale:       locale,
		Profile:      sess.Profile,
	}

	err = s.inTx(ctx, func(r Repos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		for kind, f := range sess.Documents {
			doc := &domain.VerificationDocument{
				ID:         uuid.NewString(),
				UserID:     user.ID,
				Kind:       kind,
				StorageKey: f.Key,
				MIME:       f.MIME,
				Bytes:      f.Bytes,
			}
			if err := r.Documents.Create(ctx, doc); err != nil {
				return fmt.Errorf("attach %s: %w", kind, err)
			}
		}
		sess.Step = domain.StepDone
		sess.UserID = user.ID
		return r.Sessions.Save(ctx, sess)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("session_id", sess.ID).
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("verification", string(user.Verification)).
		Msg("onboarding completed")
	return user, nil
}

// Get returns a live session.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.OnboardingSession, error) {
	return s.load(ctx, sessionID)
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.OnboardingSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, domain.ErrNotFound
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step == domain.StepDone {
		return nil, fmt.Errorf("%w: onboarding already completed", domain.ErrInvalidTransition)
	}
	if sess.Expired(s.opts.Now()) {
		return nil, ErrSessionExpired
	}
	if sess.Documents == nil {
		sess.Documents = map[domain.DocumentKind]domain.StoredFile{}
	}
	return sess, nil
}

func (s *Service) checkAccount(ctx context.Context, in AccountInput) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return "", domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("check email: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// submitAccount lets the user revise credentials after going back. A role
// change discards role specific answers.
func (s *Service) submitAccount(ctx context.Context, sess *domain.OnboardingSession, payload json.RawMessage) error {
	var in AccountInput
	if err := decode(payload, &in); err != nil {
		return err
	}
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	hash, err := s.checkAccount(ctx, in)
	if err != nil {
		return err
	}
	if in.Role != sess.Role {
		sess.Profile = domain.Profile{}
		sess.Documents = map[domain.DocumentKind]domain.StoredFile{}
	}
	sess.Email = in.Email
	sess.PasswordHash = hash
	sess.Role = in.Role
	return nil
}

func (s *Service) submitProfile(sess *domain.OnboardingSession, payload json.RawMessage) error {
	switch sess.Role {
	case domain.UserRoleNGO:
		var in NGOProfile
		if err := decodeAndValidate(payload, &in); err != nil {
			return err
		}
		sess.Profile = domain.Profile{
			FullName:           in.FullName,
			Phone:              in.Phone,
			City:               in.City,
			OrganizationName:   in.OrganizationName,
			RegistrationNumber: in.RegistrationNumber,
			Address:            in.Address,
			Website:            in.Website,
		}
	case domain.UserRoleIndividual:
		var in IndividualProfile
		if err := decodeAndValidate(payload, &in); err != nil {
			return err
		}
		sess.Profile = domain.Profile{
			FullName:     in.FullName,
			Phone:        in.Phone,
			City:         in.City,
			Address:      in.Address,
			GovernmentID: in.GovernmentID,
		}
	default:
		var in DonorProfile
		if err := decodeAndValidate(payload, &in); err != nil {
			return err
		}
		sess.Profile = domain.Profile{FullName: in.FullName, Phone: in.Phone, City: in.City}
	}
	return nil
}

// submitDocuments stores each upload under the session id. Kinds already
// uploaded may be omitted on a resubmission.
func (s *Service) submitDocuments(ctx context.Context, sess *domain.OnboardingSession, payload json.RawMessage) error {
	var in DocumentsInput
	if err := decode(payload, &in); err != nil {
		return err
	}
	required := make(map[domain.DocumentKind]bool)
	for _, kind := range domain.RequiredDocuments(sess.Role) {
		required[kind] = true
	}

	fields := map[string]string{}
	uploads := map[domain.DocumentKind]*storage.Upload{}
	for kind, encoded := range in.Documents {
		if !required[kind] {
			fields["documents."+string(kind)] = "is not needed for this account type"
			continue
		}
		up, err := storage.DecodeUpload(encoded, s.opts.MaxBytes)
		if err != nil {
			fields["documents."+string(kind)] = err.Error()
			continue
		}
		uploads[kind] = up
	}
	for kind := range required {
		if _, ok := uploads[kind]; ok {
			continue
		}
		if _, had := sess.Documents[kind]; had {
			continue
		}
		if _, flagged := fields["documents."+string(kind)]; !flagged {
			fields["documents."+string(kind)] = "is required"
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}

	for kind, up := range uploads {
		key, err := s.files.Put(ctx, storage.ObjectKey(string(kind), sess.ID, up.Ext), up.MIME, up.Data)
		if err != nil {
			return fmt.Errorf("store %s: %w", kind, err)
		}
		sess.Documents[kind] = domain.StoredFile{Key: key, MIME: up.MIME, Bytes: int64(len(up.Data))}
	}
	return nil
}

func missingDocumentsError(kinds []domain.DocumentKind) error {
	fields := make(map[string]string, len(kinds))
	for _, k := range kinds {
		fields["documents."+string(k)] = "is required"
	}
	return &domain.ValidationError{Fields: fields}
}

func decode(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return &domain.ValidationError{Fields: map[string]string{"body": "is required"}}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &domain.ValidationError{Fields: map[string]string{"body": "must be valid JSON"}}
	}
	return nil
}

func decodeAndValidate(payload json.RawMessage, out any) error {
	if err := decode(payload, out); err != nil {
		return err
	}
	return validate.Struct(out)
}
