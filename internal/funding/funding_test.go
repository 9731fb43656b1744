package funding

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crowdfund/internal/domain"
	"crowdfund/internal/realtime"
	"crowdfund/internal/storage"
)

// memLedger keeps campaigns, donations and expenses together so the fake
// donation path can apply the same counter rules as the SQL statement.
type memLedger struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign
	donations []domain.Donation
	expenses  []domain.Expense
}

func newLedger() *memLedger {
	return &memLedger{campaigns: map[string]*domain.Campaign{}}
}

type memCampaigns struct{ l *memLedger }

func (m memCampaigns) Create(_ context.Context, c *domain.Campaign) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	cp := *c
	m.l.campaigns[c.ID] = &cp
	return nil
}

func (m memCampaigns) GetByID(_ context.Context, id string) (*domain.Campaign, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	c, ok := m.l.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCampaigns) List(_ context.Context, f domain.CampaignFilter) ([]domain.Campaign, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	var out []domain.Campaign
	for _, c := range m.l.campaigns {
		if (f.Status == "" || c.Status == f.Status) && (f.OwnerID == "" || c.OwnerID == f.OwnerID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m memCampaigns) Update(_ context.Context, c *domain.Campaign) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	cp := *c
	m.l.campaigns[c.ID] = &cp
	return nil
}

func (m memCampaigns) UpdateStatus(_ context.Context, id string, from []domain.CampaignStatus, to domain.CampaignStatus, note string) (*domain.Campaign, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	c, ok := m.l.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, s := range from {
		if c.Status == s {
			c.Status = to
			c.ReviewNote = note
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrInvalidTransition
}

type memDonations struct{ l *memLedger }

func (m memDonations) Record(_ context.Context, d *domain.Donation) (*domain.DonationResult, error) {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	c, ok := m.l.campaigns[d.CampaignID]
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
	d.ID = "donation-" + time.Now().Format("150405.000000000")
	m.l.donations = append(m.l.donations, *d)
	return &domain.DonationResult{Donation: *d, Campaign: *c, GoalReached: c.Status == domain.CampaignCompleted}, nil
}

func (m memDonations) ListByCampaign(_ context.Context, id string, _, _ int) ([]domain.Donation, error) {
	var out []domain.Donation
	for _, d := range m.l.donations {
		if d.CampaignID == id {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m memDonations) ListByDonor(_ context.Context, donor string, _, _ int) ([]domain.Donation, error) {
	var out []domain.Donation
	for _, d := range m.l.donations {
		if d.DonorID != nil && *d.DonorID == donor {
			out = append(out, d)
		}
	}
	return out, nil
}

type memExpenses struct{ l *memLedger }

func (m memExpenses) Create(_ context.Context, e *domain.Expense) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	var spent int64
	for _, x := range m.l.expenses {
		if x.CampaignID == e.CampaignID {
			spent += x.AmountInt
		}
	}
	if spent+e.AmountInt > m.l.campaigns[e.CampaignID].RaisedAmount {
		return domain.ErrExpenseExceedsRaised
	}
	e.CreatedAt = time.Now()
	m.l.expenses = append(m.l.expenses, *e)
	return nil
}

func (m memExpenses) ListByCampaign(_ context.Context, id string) ([]domain.Expense, error) {
	var out []domain.Expense
	for _, e := range m.l.expenses {
		if e.CampaignID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type memUsers struct {
	domain.UserRepository
	users map[string]domain.User
}

func (m memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return key, nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return b, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []realtime.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

const (
	ngoID   = "11111111-1111-4111-8111-111111111111"
	donorID = "22222222-2222-4222-8222-222222222222"
	newID   = "33333333-3333-4333-8333-333333333333"
)

type fixture struct {
	svc    *Service
	ledger *memLedger
	store  *memStore
	pub    *recordingPublisher
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger: newLedger(),
		store:  &memStore{objects: map[string][]byte{}},
		pub:    &recordingPublisher{},
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	users := memUsers{users: map[string]domain.User{
		ngoID:   {ID: ngoID, Role: domain.UserRoleNGO, Verification: domain.VerificationApproved},
		donorID: {ID: donorID, Role: domain.UserRoleDonor, Verification: domain.VerificationApproved},
		newID:   {ID: newID, Role: domain.UserRoleIndividual, Verification: domain.VerificationPending},
	}}
	f.svc = NewService(memCampaigns{f.ledger}, memDonations{f.ledger}, memExpenses{f.ledger}, users, f.store, f.pub, zerolog.Nop(), Options{
		Now: func() time.Time { return f.now },
	})
	return f
}

var ngo = domain.Actor{UserID: ngoID, Role: domain.UserRoleNGO}
var donor = domain.Actor{UserID: donorID, Role: domain.UserRoleDonor}
var admin = domain.Actor{UserID: "admin", Role: domain.UserRoleAdmin}

func validInput() domain.CampaignInput {
	return domain.CampaignInput{
		Title:      "School bags for Dharavi",
		Summary:    "Bags and books for 200 children",
		Story:      "Every June, hundreds of children start school without basic supplies.",
		Category:   "education",
		GoalAmount: 10000,
	}
}

func activeCampaign(t *testing.T, f *fixture) *domain.Campaign {
	t.Helper()
	c, err := f.svc.CreateCampaign(context.Background(), ngo, validInput())
	require.NoError(t, err)
	f.ledger.campaigns[c.ID].Status = domain.CampaignActive
	c.Status = domain.CampaignActive
	return c
}

func TestCreateCampaignRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.CreateCampaign(ctx, ngo, validInput())
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignPendingReview, c.Status)
	assert.Equal(t, "INR", c.Currency)

	_, err = f.svc.CreateCampaign(ctx, donor, validInput())
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.CreateCampaign(ctx, domain.Actor{UserID: newID, Role: domain.UserRoleIndividual}, validInput())
	assert.ErrorIs(t, err, domain.ErrNotVerified)

	bad := validInput()
	bad.GoalAmount = 0
	bad.Category = "crypto"
	_, err = f.svc.CreateCampaign(ctx, ngo, bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "goal_amount")
	assert.Contains(t, verr.Fields, "category")

	past := f.now.Add(-time.Hour)
	bad = validInput()
	bad.EndsAt = &past
	_, err = f.svc.CreateCampaign(ctx, ngo, bad)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "ends_at")
}

func TestPendingCampaignsArePrivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCampaign(ctx, ngo, validInput())
	require.NoError(t, err)

	_, err = f.svc.GetCampaign(ctx, donor, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.GetCampaign(ctx, ngo, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = f.svc.ListCampaigns(ctx, donor, domain.CampaignFilter{Status: domain.CampaignPendingReview})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	items, err := f.svc.ListCampaigns(ctx, admin, domain.CampaignFilter{Status: domain.CampaignPendingReview})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = f.svc.ListCampaigns(ctx, domain.Actor{}, domain.CampaignFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "public listing defaults to active campaigns")
}

func TestRecordDonationCompletesGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := activeCampaign(t, f)

	res, err := f.svc.RecordDonation(ctx, donor, c.ID, "in", DonationInput{Amount: 6000})
	require.NoError(t, err)
	assert.False(t, res.GoalReached)
	assert.Equal(t, "IN", res.Donation.Country)

	res, err = f.svc.RecordDonation(ctx, domain.Actor{}, c.ID, "", DonationInput{Amount: 4000, Anonymous: true})
	require.NoError(t, err)
	assert.True(t, res.GoalReached)
	assert.Equal(t, domain.CampaignCompleted, res.Campaign.Status)
	assert.Equal(t, int64(2), res.Campaign.DonorCount)
	assert.Nil(t, res.Donation.DonorID)

	_, err = f.svc.RecordDonation(ctx, donor, c.ID, "", DonationInput{Amount: 10})
	assert.ErrorIs(t, err, domain.ErrCampaignNotActive)

	assert.Contains(t, f.pub.types(), realtime.EventGoalReached)
}

func TestRecordDonationRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	c := activeCampaign(t, f)

	for _, amount := range []int64{0, -500} {
		_, err := f.svc.RecordDonation(context.Background(), donor, c.ID, "", DonationInput{Amount: amount})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "amount")
	}
	assert.Empty(t, f.ledger.donations)
}

func TestConcurrentDonationsKeepCounters(t *testing.T) {
	f := newFixture(t)
	c := activeCampaign(t, f)
	f.ledger.campaigns[c.ID].GoalAmount = 1_000_000

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.RecordDonation(context.Background(), donor, c.ID, "", DonationInput{Amount: 100})
		}()
	}
	wg.Wait()

	got, err := f.svc.GetCampaign(context.Background(), donor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.RaisedAmount)
	assert.Equal(t, int64(50), got.DonorCount)
}

func TestUpdateAndCloseCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := activeCampaign(t, f)

	title := "School bags and books for Dharavi"
	_, err := f.svc.UpdateCampaign(ctx, donor, c.ID, domain.CampaignPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.svc.UpdateCampaign(ctx, ngo, c.ID, domain.CampaignPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	closed, err := f.svc.CloseCampaign(ctx, admin, c.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignClosed, closed.Status)

	_, err = f.svc.UpdateCampaign(ctx, ngo, c.ID, domain.CampaignPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

var receipt = base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\nreceipt\n"))

func TestAddExpenseAndExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := activeCampaign(t, f)
	_, err := f.svc.RecordDonation(ctx, donor, c.ID, "", DonationInput{Amount: 5000})
	require.NoError(t, err)

	req := ExpenseRequest{
		ExpenseInput: domain.ExpenseInput{AmountInt: 3000, Description: "Bags from wholesaler", SpentOn: f.now.Add(-24 * time.Hour)},
		Receipt:      receipt,
	}
	_, err = f.svc.AddExpense(ctx, donor, c.ID, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	e, err := f.svc.AddExpense(ctx, ngo, c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", e.ReceiptMIME)

	_, err = f.svc.AddExpense(ctx, ngo, c.ID, req)
	assert.ErrorIs(t, err, domain.ErrExpenseExceedsRaised)

	var buf bytes.Buffer
	assert.ErrorIs(t, f.svc.ExportReceipts(ctx, donor, c.ID, "en", &buf), domain.ErrForbidden)

	buf.Reset()
	require.NoError(t, f.svc.ExportReceipts(ctx, ngo, c.ID, "en", &buf))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	names := map[string]*zip.File{}
	for _, zf := range zr.File {
		names[zf.Name] = zf
	}
	require.Contains(t, names, "receipts/2025-05-31_bags-from-wholesaler.pdf")
	require.Contains(t, names, "manifest.csv")

	rc, err := names["manifest.csv"].Open()
	require.NoError(t, err)
	defer rc.Close()
	manifest, _ := io.ReadAll(rc)
	assert.Contains(t, string(manifest), "Bags from wholesaler")
	assert.Contains(t, string(manifest), "30.00")
}

func TestAddExpenseRejectsBadReceipt(t *testing.T) {
	f := newFixture(t)
	c := activeCampaign(t, f)
	_, err := f.svc.RecordDonation(context.Background(), donor, c.ID, "", DonationInput{Amount: 5000})
	require.NoError(t, err)

	_, err = f.svc.AddExpense(context.Background(), ngo, c.ID, ExpenseRequest{
		ExpenseInput: domain.ExpenseInput{AmountInt: 100, Description: "Tea", SpentOn: f.now},
		Receipt:      base64.StdEncoding.EncodeToString([]byte("just text")),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "receipt")
	assert.Empty(t, f.store.objects)
}
