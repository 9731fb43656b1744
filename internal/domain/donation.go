package domain

import "time"

// Donation represents a supporter contribution to a campaign.
type Donation struct {
	ID         string
	CampaignID string
	DonorID    *string
	AmountInt  int64
	Message    string
	Anonymous  bool
	Country    string
	CreatedAt  time.Time
}

// DonationResult is the outcome of recording a donation.
type DonationResult struct {
	Donation    Donation
	Campaign    Campaign
	GoalReached bool
}
