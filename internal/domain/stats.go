package domain

// PlatformStats aggregates headline numbers for the landing page.
type PlatformStats struct {
	TotalRaised        int64 `json:"total_raised"`
	ActiveCampaigns    int64 `json:"active_campaigns"`
	CompletedCampaigns int64 `json:"completed_campaigns"`
	Donors             int64 `json:"donors"`
	Donations          int64 `json:"donations"`
}
