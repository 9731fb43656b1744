package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"crowdfund/internal/domain"
	"crowdfund/internal/infra/google"
	"crowdfund/internal/middleware"
)

type memUsers struct {
	domain.UserRepository
	byEmail  map[string]*domain.User
	upserted *domain.User
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) UpsertByGoogleSub(_ context.Context, u *domain.User) (*domain.User, error) {
	out := *u
	out.ID = "google-user"
	out.Role = domain.UserRoleDonor
	out.Verification = domain.VerificationApproved
	m.upserted = &out
	return &out, nil
}

type fakeVerifier struct {
	id  *google.Identity
	err error
}

func (f fakeVerifier) Enabled() bool { return true }

func (f fakeVerifier) VerifyIDToken(context.Context, string) (*google.Identity, error) {
	return f.id, f.err
}

var tokens = middleware.TokenConfig{Secret: "test-secret", Issuer: "crowdfund-api", Audience: "crowdfund-clients", TTL: time.Hour}

func newService(t *testing.T, v IDTokenVerifier) (*Service, *memUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &memUsers{byEmail: map[string]*domain.User{
		"ngo@example.org":    {ID: "u1", Email: "ngo@example.org", PasswordHash: string(hash), Role: domain.UserRoleNGO, Locale: "hi"},
		"google@example.org": {ID: "u2", Email: "google@example.org", Role: domain.UserRoleDonor},
	}}
	return NewService(users, v, tokens, zerolog.Nop()), users
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	sess, err := svc.Login(ctx, "  NGO@example.org ", "Str0ng!pass")
	require.NoError(t, err)
	claims, err := middleware.ParseToken(tokens, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, domain.UserRoleNGO, claims.Role)
	assert.Equal(t, "hi", claims.Locale)

	_, err = svc.Login(ctx, "ngo@example.org", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(ctx, "nobody@example.org", "Str0ng!pass")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(ctx, "google@example.org", "anything")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGoogleSignIn(t *testing.T) {
	svc, users := newService(t, fakeVerifier{id: &google.Identity{
		Subject: "sub-1", Email: "Asha@Example.org", EmailVerified: true, Name: "Asha",
	}})
	sess, err := svc.Google(context.Background(), "raw-token", "en")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.org", users.upserted.Email)
	assert.Equal(t, "Asha", users.upserted.Profile.FullName)
	assert.Equal(t, "en", users.upserted.Locale)
	assert.Equal(t, domain.UserRoleDonor, sess.User.Role)
}

func TestGoogleRejections(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.Google(context.Background(), "x", "en")
	assert.ErrorIs(t, err, ErrGoogleDisabled)

	svc, _ = newService(t, fakeVerifier{err: errors.New("bad signature")})
	_, err = svc.Google(context.Background(), "x", "en")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	svc, _ = newService(t, fakeVerifier{id: &google.Identity{Subject: "s", Email: "a@b.c"}})
	_, err = svc.Google(context.Background(), "x", "en")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestMe(t *testing.T) {
	svc, _ := newService(t, nil)
	_, err := svc.Me(context.Background(), domain.Actor{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	u, err := svc.Me(context.Background(), domain.Actor{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "ngo@example.org", u.Email)
}
