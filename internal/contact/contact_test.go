package contact

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
)

type memRepo struct {
	items      map[string]*domain.ContactRequest
	lastStatus domain.ContactStatus
}

func (m *memRepo) Create(_ context.Context, r *domain.ContactRequest) error {
	m.items[r.ID] = r
	return nil
}

func (m *memRepo) List(_ context.Context, status domain.ContactStatus, _, _ int) ([]domain.ContactRequest, error) {
	m.lastStatus = status
	var out []domain.ContactRequest
	for _, r := range m.items {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) Resolve(_ context.Context, id string) error {
	r, ok := m.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = domain.ContactResolved
	return nil
}

var admin = domain.Actor{UserID: "admin", Role: domain.UserRoleAdmin}

func TestCreateValidates(t *testing.T) {
	svc := NewService(&memRepo{items: map[string]*domain.ContactRequest{}}, zerolog.Nop())
	_, err := svc.Create(context.Background(), domain.ContactInput{Name: "Ravi", Email: "not-an-email", Subject: "Hi", Message: "short"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "message")
}

func TestCreateListResolve(t *testing.T) {
	repo := &memRepo{items: map[string]*domain.ContactRequest{}}
	svc := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	req, err := svc.Create(ctx, domain.ContactInput{
		Name:    " Ravi ",
		Email:   "Ravi@Example.com",
		Subject: "Receipt missing",
		Message: "I did not receive a receipt for my donation last week.",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", req.Email)
	assert.Equal(t, domain.ContactOpen, req.Status)

	_, err = svc.List(ctx, domain.Actor{UserID: "u", Role: domain.UserRoleDonor}, "", 10, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	open, err := svc.List(ctx, admin, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, open, 1)
	assert.Equal(t, domain.ContactOpen, repo.lastStatus)

	require.NoError(t, svc.Resolve(ctx, admin, req.ID))
	open, err = svc.List(ctx, admin, domain.ContactOpen, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, open)

	assert.ErrorIs(t, svc.Resolve(ctx, admin, "nope"), domain.ErrNotFound)
}
