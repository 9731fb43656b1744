package handlers

import (
	"time"

	"crowdfund/internal/domain"
	"crowdfund/internal/money"
)

type userDTO struct {
	ID           string                    `json:"id"`
	Email        string                    `json:"email"`
	Role         domain.UserRole           `json:"role"`
	Verification domain.VerificationStatus `json:"verification"`
	ReviewNote   string                    `json:"review_note,omitempty"`
	Locale       string                    `json:"locale"`
	DisplayName  string                    `json:"display_name"`
	Profile      domain.Profile            `json:"profile"`
	CreatedAt    time.Time                 `json:"created_at"`
}

func toUser(u *domain.User) userDTO {
	return userDTO{
		ID:           u.ID,
		Email:        u.Email,
		Role:         u.Role,
		Verification: u.Verification,
		ReviewNote:   u.ReviewNote,
		Locale:       u.Locale,
		DisplayName:  u.DisplayName(),
		Profile:      u.Profile,
		CreatedAt:    u.CreatedAt,
	}
}

type campaignDTO struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"owner_id"`
	Title         string                `json:"title"`
	Summary       string                `json:"summary"`
	Story         string                `json:"story,omitempty"`
	Category      string                `json:"category"`
	ImageURL      string                `json:"image_url,omitempty"`
	Currency      string                `json:"currency"`
	GoalAmount    int64                 `json:"goal_amount"`
	RaisedAmount  int64                 `json:"raised_amount"`
	GoalDisplay   string                `json:"goal_display"`
	RaisedDisplay string                `json:"raised_display"`
	DonorCount    int64                 `json:"donor_count"`
	Progress      int                   `json:"progress"`
	Status        domain.CampaignStatus `json:"status"`
	ReviewNote    string                `json:"review_note,omitempty"`
	EndsAt        *time.Time            `json:"ends_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toCampaign(c *domain.Campaign, locale string, withStory bool) campaignDTO {
	dto := campaignDTO{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		Title:         c.Title,
		Summary:       c.Summary,
		Category:      c.Category,
		ImageURL:      c.ImageURL,
		Currency:      c.Currency,
		GoalAmount:    c.GoalAmount,
		RaisedAmount:  c.RaisedAmount,
		GoalDisplay:   money.Format(c.GoalAmount, c.Currency, locale),
		RaisedDisplay: money.Format(c.RaisedAmount, c.Currency, locale),
		DonorCount:    c.DonorCount,
		Progress:      c.Progress(),
		Status:        c.Status,
		ReviewNote:    c.ReviewNote,
		EndsAt:        c.EndsAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if withStory {
		dto.Story = c.Story
	}
	return dto
}

func toCampaigns(items []domain.Campaign, locale string) []campaignDTO {
	out := make([]campaignDTO, len(items))
	for i := range items {
		out[i] = toCampaign(&items[i], locale, false)
	}
	return out
}

type donationDTO struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	DonorID    *string   `json:"donor_id"`
	Amount     int64     `json:"amount"`
	Message    string    `json:"message,omitempty"`
	Anonymous  bool      `json:"anonymous"`
	Country    string    `json:"country,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// toDonation hides the donor of anonymous donations unless the viewer is
// that donor.
func toDonation(d domain.Donation, viewer string) donationDTO {
	dto := donationDTO{
		ID:         d.ID,
		CampaignID: d.CampaignID,
		DonorID:    d.DonorID,
		Amount:     d.AmountInt,
		Message:    d.Message,
		Anonymous:  d.Anonymous,
		Country:    d.Country,
		CreatedAt:  d.CreatedAt,
	}
	if d.Anonymous && (d.DonorID == nil || *d.DonorID != viewer) {
		dto.DonorID = nil
	}
	return dto
}

func toDonations(items []domain.Donation, viewer string) []donationDTO {
	out := make([]donationDTO, len(items))
	for i, d := range items {
		out[i] = toDonation(d, viewer)
	}
	return out
}

type expenseDTO struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaign_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	ReceiptMIME string    `json:"receipt_mime"`
	SpentOn     time.Time `json:"spent_on"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpense(e domain.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		CampaignID:  e.CampaignID,
		Amount:      e.AmountInt,
		Description: e.Description,
		ReceiptMIME: e.ReceiptMIME,
		SpentOn:     e.SpentOn,
		CreatedAt:   e.CreatedAt,
	}
}

type documentDTO struct {
	ID        string              `json:"id"`
	Kind      domain.DocumentKind `json:"kind"`
	MIME      string              `json:"mime"`
	Bytes     int64               `json:"bytes"`
	CreatedAt time.Time           `json:"created_at"`
}

func toDocuments(docs []domain.VerificationDocument) []documentDTO {
	out := make([]documentDTO, len(docs))
	for i, d := range docs {
		out[i] = documentDTO{ID: d.ID, Kind: d.Kind, MIME: d.MIME, Bytes: d.Bytes, CreatedAt: d.CreatedAt}
	}
	return out
}

type sessionDTO struct {
	ID        string                `json:"id"`
	Email     string                `json:"email"`
	Role      domain.UserRole       `json:"role"`
	Step      domain.OnboardingStep `json:"step"`
	Profile   domain.Profile        `json:"profile"`
	Documents []domain.DocumentKind `json:"documents"`
	Missing   []domain.DocumentKind `json:"missing_documents"`
	ExpiresAt time.Time             `json:"expires_at"`
}

func toSession(s *domain.OnboardingSession) sessionDTO {
	dto := sessionDTO{
		ID:        s.ID,
		Email:     s.Email,
		Role:      s.Role,
		Step:      s.Step,
		Profile:   s.Profile,
		Documents: []domain.DocumentKind{},
		Missing:   s.MissingDocuments(),
		ExpiresAt: s.ExpiresAt,
	}
	for _, kind := range domain.RequiredDocuments(s.Role) {
		if _, ok := s.Documents[kind]; ok {
			dto.Documents = append(dto.Documents, kind)
		}
	}
	if dto.Missing == nil {
		dto.Missing = []domain.DocumentKind{}
	}
	return dto
}

type contactDTO struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Subject   string               `json:"subject"`
	Message   string               `json:"message"`
	Status    domain.ContactStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
}

func toContact(c domain.ContactRequest) contactDTO {
	return contactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
