package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher is the event emission surface used by the order engine.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
}

// HandlerFunc consumes a dispatched event envelope.
type HandlerFunc func(ctx context.Context, env Envelope) error

// Sink forwards envelopes to an external transport (Kafka).
type Sink func(ctx context.Context, env Envelope) error

// Bus dispatches events synchronously to in-process subscribers and then to
// the optional sink. Dispatch order matches publish order; there is one
// logical writer per session, so no reordering occurs.
type Bus struct {
	handlers map[string][]HandlerFunc
	sinks    []Sink
	logger   zerolog.Logger
	clock    func() time.Time
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
		logger:   logger.With().Str("component", "event-bus").Logger(),
		clock:    time.Now,
	}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h HandlerFunc) {
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// AddSink registers an external forwarding target.
func (b *Bus) AddSink(s Sink) {
	b.sinks = append(b.sinks, s)
}

// Publish serializes the payload and dispatches it. Subscriber errors are
// logged and do not stop delivery to later subscribers; sink errors are
// logged and swallowed because fan-out is fire-and-forget.
func (b *Bus) Publish(ctx context.Context, key, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	env := Envelope{
		ID:        uuid.New().String(),
		Key:       key,
		Type:      eventType,
		Data:      data,
		Timestamp: b.clock(),
	}

	for _, h := range b.handlers[eventType] {
		if err := h(ctx, env); err != nil {
			b.logger.Error().Err(err).Str("event_type", eventType).Msg("event handler failed")
		}
	}

	for _, s := range b.sinks {
		if err := s(ctx, env); err != nil {
			b.logger.Error().Err(err).Str("event_type", eventType).Msg("event sink failed")
		}
	}

	return nil
}
