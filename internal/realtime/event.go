// Package realtime fans campaign snapshots out to websocket subscribers.
// Events travel through Postgres NOTIFY so the worker and every API
// instance see the same stream.
package realtime

import (
	"context"
	"time"

	"crowdfund/internal/domain"
)

// EventType names what changed.
type EventType string

const (
	EventCampaignUpdated EventType = "campaign.updated"
	EventDonation        EventType = "donation.recorded"
	EventGoalReached     EventType = "campaign.goal_reached"
	EventExpense         EventType = "expense.added"
	EventReconciled      EventType = "campaign.reconciled"
)

// Snapshot is the public, size-bounded view of a campaign. It leaves out
// the story so payloads stay well under the NOTIFY limit.
type Snapshot struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Status       domain.CampaignStatus `json:"status"`
	Currency     string                `json:"currency"`
	GoalAmount   int64                 `json:"goal_amount"`
	RaisedAmount int64                 `json:"raised_amount"`
	DonorCount   int64                 `json:"donor_count"`
	Progress     int                   `json:"progress"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func SnapshotOf(c domain.Campaign) Snapshot {
	return Snapshot{
		ID:           c.ID,
		Title:        c.Title,
		Status:       c.Status,
		Currency:     c.Currency,
		GoalAmount:   c.GoalAmount,
		RaisedAmount: c.RaisedAmount,
		DonorCount:   c.DonorCount,
		Progress:     c.Progress(),
		UpdatedAt:    c.UpdatedAt,
	}
}

// Event is one message on a campaign feed.
type Event struct {
	Type     EventType `json:"type"`
	Campaign Snapshot  `json:"campaign"`
	Amount   int64     `json:"amount,omitempty"`
	At       time.Time `json:"at"`
}

// NewEvent stamps an event for c.
func NewEvent(t EventType, c domain.Campaign) Event {
	return Event{Type: t, Campaign: SnapshotOf(c), At: time.Now().UTC()}
}

// Publisher accepts events. Implementations log failures instead of
// returning them; a missed snapshot is repaired by the next one.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}
