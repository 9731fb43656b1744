package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

const subscriberBuffer = 16

type subscriber struct {
	ch   chan Event
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

// Hub keeps per-campaign subscriber sets. Publish never blocks: a
// subscriber whose buffer is full is dropped and its channel closed.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger.With().Str("component", "realtime_hub").Logger(),
	}
}

// Subscribe returns a channel of events for campaignID and a cancel func.
// The channel is closed on cancel or when the subscriber falls behind.
func (h *Hub) Subscribe(campaignID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	set, ok := h.subs[campaignID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[campaignID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	return sub.ch, func() { h.remove(campaignID, sub) }
}

func (h *Hub) remove(campaignID string, sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[campaignID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, campaignID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

// Publish delivers ev to the campaign's subscribers.
func (h *Hub) Publish(_ context.Context, ev Event) {
	h.mu.RLock()
	set := h.subs[ev.Campaign.ID]
	var slow []*subscriber
	for sub := range set {
		select {
		case sub.ch <- ev:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.logger.Warn().Str("campaign_id", ev.Campaign.ID).Msg("dropping slow subscriber")
		h.remove(ev.Campaign.ID, sub)
	}
}

// Subscribers reports the number of live subscribers for a campaign.
func (h *Hub) Subscribers(campaignID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[campaignID])
}

// Close drops every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.subs
	h.subs = make(map[string]map[*subscriber]struct{})
	h.mu.Unlock()
	for _, set := range all {
		for sub := range set {
			sub.close()
		}
	}
}
