package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"crowdfund/internal/auth"
	"crowdfund/internal/contact"
	"crowdfund/internal/domain"
	"crowdfund/internal/faq"
	"crowdfund/internal/funding"
	"crowdfund/internal/middleware"
	"crowdfund/internal/realtime"
	"crowdfund/internal/storage"
)

var testTokens = middleware.TokenConfig{Secret: "handler-secret", Issuer: "crowdfund-api", Audience: "crowdfund-clients", TTL: time.Hour}

type store struct {
	mu        sync.Mutex
	users     map[string]*domain.User
	campaigns map[string]*domain.Campaign
	donations []domain.Donation
	expenses  []domain.Expense
	contacts  []domain.ContactRequest
}

type userRepo struct {
	domain.UserRepository
	s *store
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type campaignRepo struct {
	domain.CampaignRepository
	s *store
}

func (r campaignRepo) Create(_ context.Context, c *domain.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *c
	r.s.campaigns[c.ID] = &cp
	return nil
}

func (r campaignRepo) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r campaignRepo) List(_ context.Context, f domain.CampaignFilter) ([]domain.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Campaign
	for _, c := range r.s.campaigns {
		if f.Status == "" || c.Status == f.Status {
			out = append(out, *c)
		}
	}
	return out, nil
}

type donationRepo struct {
	domain.DonationRepository
	s *store
}

func (r donationRepo) Record(_ context.Context, d *domain.Donation) (*domain.DonationResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.campaigns[d.CampaignID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.Status != domain.CampaignActive {
		return nil, domain.ErrCampaignNotActive
	}
	c.RaisedAmount += d.AmountInt
	c.DonorCount++
	if c.GoalReached() {
		c.Status = domain.CampaignCompleted
	}
	d.ID = "d-1"
	r.s.donations = append(r.s.donations, *d)
	return &domain.DonationResult{Donation: *d, Campaign: *c, GoalReached: c.Status == domain.CampaignCompleted}, nil
}

func (r donationRepo) ListByCampaign(_ context.Context, id string, _, _ int) ([]domain.Donation, error) {
	var out []domain.Donation
	for _, d := range r.s.donations {
		if d.CampaignID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

type expenseRepo struct {
	domain.ExpenseRepository
	s *store
}

func (r expenseRepo) ListByCampaign(_ context.Context, id string) ([]domain.Expense, error) {
	var out []domain.Expense
	for _, e := range r.s.expenses {
		if e.CampaignID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type contactRepo struct{ s *store }

func (r contactRepo) Create(_ context.Context, c *domain.ContactRequest) error {
	r.s.contacts = append(r.s.contacts, *c)
	return nil
}

func (r contactRepo) List(context.Context, domain.ContactStatus, int, int) ([]domain.ContactRequest, error) {
	return r.s.contacts, nil
}

func (r contactRepo) Resolve(context.Context, string) error { return domain.ErrNotFound }

type statsRepo struct{ stats domain.PlatformStats }

func (r statsRepo) Summary(context.Context) (*domain.PlatformStats, error) {
	s := r.stats
	return &s, nil
}

type objectStore struct{ objects map[string][]byte }

func (o *objectStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	o.objects[key] = data
	return key, nil
}

func (o *objectStore) Get(_ context.Context, key string) ([]byte, error) {
	if b, ok := o.objects[key]; ok {
		return b, nil
	}
	return nil, storage.ErrObjectNotFound
}

const (
	ngoUserID   = "0b7e5a52-4f3c-4d1e-9a2b-6c8d0e1f2a3b"
	donorUserID = "1c8f6b63-5a4d-4e2f-8b3c-7d9e1f203b4c"
	activeID    = "2d907c74-6b5e-4f30-9c4d-8e0f20314c5d"
	pendingID   = "3ea18d85-7c6f-4041-8d5e-9f1031425d6e"
)

func newTestApp() (*App, *store) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ng!pass"), bcrypt.MinCost)
	s := &store{
		users: map[string]*domain.User{
			ngoUserID:   {ID: ngoUserID, Email: "ngo@example.org", PasswordHash: string(hash), Role: domain.UserRoleNGO, Verification: domain.VerificationApproved, Locale: "en"},
			donorUserID: {ID: donorUserID, Email: "donor@example.org", Role: domain.UserRoleDonor, Verification: domain.VerificationApproved},
		},
		campaigns: map[string]*domain.Campaign{
			activeID:  {ID: activeID, OwnerID: ngoUserID, Title: "Clean water", Currency: "INR", GoalAmount: 100000, Status: domain.CampaignActive},
			pendingID: {ID: pendingID, OwnerID: ngoUserID, Title: "Pending", Currency: "INR", GoalAmount: 5000, Status: domain.CampaignPendingReview},
		},
	}
	logger := zerolog.Nop()
	users := userRepo{s: s}
	app := &App{
		Auth: auth.NewService(users, nil, testTokens, logger),
		Funding: funding.NewService(campaignRepo{s: s}, donationRepo{s: s}, expenseRepo{s: s}, users,
			&objectStore{objects: map[string][]byte{}}, realtime.NewHub(logger), logger, funding.Options{}),
		Contact:         contact.NewService(contactRepo{s: s}, logger),
		FAQ:             faq.Default(),
		Stats:           statsRepo{stats: domain.PlatformStats{TotalRaised: 123450, ActiveCampaigns: 4, Donations: 9}},
		Hub:             realtime.NewHub(logger),
		Logger:          logger,
		DefaultCurrency: "INR",
	}
	return app, s
}
