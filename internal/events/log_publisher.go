package events

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: log.Logger.With().Str("component", "events").Logger()}
}

func NewLogPublisherWithLogger(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload interface{}) error {
	ev := NewEvent(routingKey, payload)
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.logger.Info().
		Str("event_id", ev.ID).
		Str("routing_key", routingKey).
		RawJSON("event", body).
		Msg("event published")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
