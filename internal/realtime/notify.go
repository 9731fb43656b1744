package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"crowdfund/internal/infra"
	"crowdfund/internal/sqlinline"
)

// PGPublisher sends events with pg_notify.
type PGPublisher struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
}

func NewPGPublisher(sql infra.SQLExecutor, logger zerolog.Logger) *PGPublisher {
	return &PGPublisher{sql: sql, logger: logger}
}

func (p *PGPublisher) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error().Err(err).Msg("encode campaign event")
		return
	}
	if _, err := p.sql.Exec(ctx, sqlinline.QNotifyCampaignEvent, sqlinline.CampaignEventsChannel, string(payload)); err != nil {
		p.logger.Error().Err(err).Str("campaign_id", ev.Campaign.ID).Str("type", string(ev.Type)).Msg("notify campaign event")
	}
}

// Listen holds a dedicated connection on the events channel and forwards
// every notification to dst until ctx is cancelled. Lost connections are
// re-established with capped backoff.
func Listen(ctx context.Context, pool *pgxpool.Pool, dst Publisher, logger zerolog.Logger) error {
	backoff := time.Second
	for {
		err := listenOnce(ctx, pool, dst, logger)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn().Err(err).Dur("retry_in", backoff).Msg("campaign event listener disconnected")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func listenOnce(ctx context.Context, pool *pgxpool.Pool, dst Publisher, logger zerolog.Logger) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	// LISTEN takes an identifier, so it cannot be a bound parameter.
	if _, err := conn.Exec(ctx, "listen "+pgx.Identifier{sqlinline.CampaignEventsChannel}.Sanitize()); err != nil {
		return err
	}
	logger.Info().Str("channel", sqlinline.CampaignEventsChannel).Msg("listening for campaign events")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, err := DecodeEvent([]byte(n.Payload))
		if err != nil {
			logger.Warn().Err(err).Msg("skip malformed campaign event")
			continue
		}
		dst.Publish(ctx, ev)
	}
}

// DecodeEvent parses a NOTIFY payload.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, err
	}
	if ev.Campaign.ID == "" {
		return Event{}, errors.New("event has no campaign id")
	}
	return ev, nil
}
