package domain

import "context"

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	UpsertByGoogleSub(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByVerification(ctx context.Context, status VerificationStatus, limit, offset int) ([]User, error)
	UpdateVerification(ctx context.Context, id string, from, to VerificationStatus, note string) (*User, error)
	UpdateRole(ctx context.Context, id string, role UserRole) (*User, error)
}

// OnboardingRepository persists signup wizard sessions.
type OnboardingRepository interface {
	Create(ctx context.Context, session *OnboardingSession) error
	Get(ctx context.Context, id string) (*OnboardingSession, error)
	Save(ctx context.Context, session *OnboardingSession) error
}

// CampaignRepository handles campaign persistence.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context, filter CampaignFilter) ([]Campaign, error)
	Update(ctx context.Context, campaign *Campaign) error
	UpdateStatus(ctx context.Context, id string, from []CampaignStatus, to CampaignStatus, note string) (*Campaign, error)
}

// DonationRepository handles donation persistence.
type DonationRepository interface {
	// Record inserts the donation and bumps the campaign counters in one
	// atomic statement. It returns ErrCampaignNotActive when the campaign
	// does not accept donations.
	Record(ctx context.Context, donation *Donation) (*DonationResult, error)
	ListByCampaign(ctx context.Context, campaignID string, limit, offset int) ([]Donation, error)
	ListByDonor(ctx context.Context, donorID string, limit, offset int) ([]Donation, error)
}

// ExpenseRepository handles expense persistence.
type ExpenseRepository interface {
	// Create inserts the expense unless it would push total expenses past
	// the campaign's raised amount, in which case ErrExpenseExceedsRaised.
	Create(ctx context.Context, expense *Expense) error
	ListByCampaign(ctx context.Context, campaignID string) ([]Expense, error)
}

// DocumentRepository stores verification document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *VerificationDocument) error
	ListByUser(ctx context.Context, userID string) ([]VerificationDocument, error)
}

// ContactRepository handles contact requests.
type ContactRepository interface {
	Create(ctx context.Context, req *ContactRequest) error
	List(ctx context.Context, status ContactStatus, limit, offset int) ([]ContactRequest, error)
	Resolve(ctx context.Context, id string) error
}

// CounterDrift describes a campaign whose stored counters disagree with
// its donation ledger.
type CounterDrift struct {
	CampaignID   string
	StoredRaised int64
	StoredDonors int64
	LedgerRaised int64
	LedgerDonors int64
	GoalAmount   int64
	Status       CampaignStatus
}

// ReconcileRepository supports the counter reconciliation loop.
type ReconcileRepository interface {
	FindDrift(ctx context.Context, limit int) ([]CounterDrift, error)
	ApplyLedger(ctx context.Context, campaignID string) (*Campaign, error)
	CompleteFunded(ctx context.Context) ([]Campaign, error)
	CloseExpired(ctx context.Context) ([]Campaign, error)
}

// AnalyticsRepository reads platform statistics.
type AnalyticsRepository interface {
	Summary(ctx context.Context) (*PlatformStats, error)
}
