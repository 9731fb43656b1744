package domain

import "time"

// CampaignStatus enumerates campaign lifecycle states.
type CampaignStatus string

const (
	CampaignPendingReview CampaignStatus = "pending_review"
	CampaignActive        CampaignStatus = "active"
	CampaignCompleted     CampaignStatus = "completed"
	CampaignRejected      CampaignStatus = "rejected"
	CampaignClosed        CampaignStatus = "closed"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignPendingReview, CampaignActive, CampaignCompleted, CampaignRejected, CampaignClosed:
		return true
	}
	return false
}

// Editable reports whether the owner may still change campaign details.
func (s CampaignStatus) Editable() bool {
	return s == CampaignPendingReview || s == CampaignActive
}

// Campaign is a fundraiser owned by an NGO or individual. Amounts are in
// minor currency units.
type Campaign struct {
	ID           string
	OwnerID      string
	Title        string
	Summary      string
	Story        string
	Category     string
	ImageURL     string
	Currency     string
	GoalAmount   int64
	RaisedAmount int64
	DonorCount   int64
	Status       CampaignStatus
	ReviewNote   string
	EndsAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// GoalReached reports whether the raised amount covers the goal.
func (c Campaign) GoalReached() bool {
	return c.GoalAmount > 0 && c.RaisedAmount >= c.GoalAmount
}

// Progress returns the funded fraction in percent, capped at 100.
func (c Campaign) Progress() int {
	if c.GoalAmount <= 0 {
		return 0
	}
	pct := c.RaisedAmount * 100 / c.GoalAmount
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

// CampaignFilter narrows campaign listings.
type CampaignFilter struct {
	Status   CampaignStatus
	Category string
	OwnerID  string
	Query    string
	Limit    int
	Offset   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps pagination to sane bounds.
func (f CampaignFilter) Normalize() CampaignFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// CampaignInput carries the fields a fundraiser supplies at creation.
type CampaignInput struct {
	Title      string     `json:"title" validate:"required,min=5,max=120"`
	Summary    string     `json:"summary" validate:"required,max=280"`
	Story      string     `json:"story" validate:"required,min=20,max=10000"`
	Category   string     `json:"category" validate:"required,oneof=education health disaster animals environment community other"`
	ImageURL   string     `json:"image_url" validate:"omitempty,url"`
	Currency   string     `json:"currency" validate:"omitempty,iso4217"`
	GoalAmount int64      `json:"goal_amount" validate:"required,gt=0"`
	EndsAt     *time.Time `json:"ends_at"`
}

// CampaignPatch carries optional updates from the owner.
type CampaignPatch struct {
	Title      *string    `json:"title" validate:"omitempty,min=5,max=120"`
	Summary    *string    `json:"summary" validate:"omitempty,max=280"`
	Story      *string    `json:"story" validate:"omitempty,min=20,max=10000"`
	ImageURL   *string    `json:"image_url" validate:"omitempty,url"`
	GoalAmount *int64     `json:"goal_amount" validate:"omitempty,gt=0"`
	EndsAt     *time.Time `json:"ends_at"`
}

// Apply copies the set fields of p onto c.
func (p CampaignPatch) Apply(c *Campaign) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Summary != nil {
		c.Summary = *p.Summary
	}
	if p.Story != nil {
		c.Story = *p.Story
	}
	if p.ImageURL != nil {
		c.ImageURL = *p.ImageURL
	}
	if p.GoalAmount != nil {
		c.GoalAmount = *p.GoalAmount
	}
	if p.EndsAt != nil {
		c.EndsAt = p.EndsAt
	}
}
