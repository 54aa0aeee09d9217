package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

const logKeyPrefix = "notifications"

// Kind classifies a notification for the UI.
type Kind string

const (
	KindOrder  Kind = "order"
	KindSystem Kind = "system"
)

// Notification is one entry in the user-facing event log.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is an append-only, newest-first notification log with an unread
// counter. It is persisted as a whole document after every mutation;
// notices are advisory, so persistence failures are logged and never
// fail the triggering operation.
type Log struct {
	userID string
	kv     kvstore.Store
	logger zerolog.Logger
	items  []Notification
	unread int
	clock  func() time.Time
	newID  func() string
}

// NewLog builds the log and rehydrates it from the key-value store. A
// missing or malformed document yields an empty log.
func NewLog(ctx context.Context, userID string, kv kvstore.Store, logger zerolog.Logger) *Log {
	return NewLogWithClock(ctx, userID, kv, logger, time.Now, uuid.NewString)
}

// NewLogWithClock injects the clock and id generator for tests.
func NewLogWithClock(ctx context.Context, userID string, kv kvstore.Store, logger zerolog.Logger, clock func() time.Time, newID func() string) *Log {
	l := &Log{
		userID: userID,
		kv:     kv,
		logger: logger.With().Str("engine", "notification").Str("user_id", userID).Logger(),
		clock:  clock,
		newID:  newID,
	}
	l.rehydrate(ctx)
	return l
}

func (l *Log) key() string {
	return logKeyPrefix + ":" + l.userID
}

func (l *Log) rehydrate(ctx context.Context) {
	doc, ok, err := l.kv.Get(ctx, l.key())
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to load notifications")
		return
	}
	if !ok {
		return
	}
	var items []Notification
	if err := json.Unmarshal(doc, &items); err != nil {
		l.logger.Error().Err(err).Msg("malformed notifications document, starting empty")
		return
	}
	l.items = items
	l.unread = 0
	for _, n := range items {
		if !n.Read {
			l.unread++
		}
	}
}

func (l *Log) persist(ctx context.Context) {
	doc, err := json.Marshal(l.items)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to marshal notifications")
		return
	}
	if err := l.kv.Set(ctx, l.key(), doc); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist notifications")
	}
}

// Add prepends an unread entry and returns it.
func (l *Log) Add(ctx context.Context, kind Kind, title, message string) Notification {
	n := Notification{
		ID:        l.newID(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Timestamp: l.clock(),
	}
	l.items = append([]Notification{n}, l.items...)
	l.unread++
	l.persist(ctx)
	return n
}

// MarkRead marks one entry as read. Already-read and unknown ids are no-ops.
func (l *Log) MarkRead(ctx context.Context, id string) bool {
	for i := range l.items {
		if l.items[i].ID == id {
			if !l.items[i].Read {
				l.items[i].Read = true
				l.unread--
				l.persist(ctx)
			}
			return true
		}
	}
	return false
}

// MarkAllRead marks every entry as read.
func (l *Log) MarkAllRead(ctx context.Context) {
	for i := range l.items {
		l.items[i].Read = true
	}
	l.unread = 0
	l.persist(ctx)
}

// Clear empties the log.
func (l *Log) Clear(ctx context.Context) {
	l.items = nil
	l.unread = 0
	l.persist(ctx)
}

// UnreadCount returns the number of unread entries.
func (l *Log) UnreadCount() int {
	return l.unread
}

// Items returns a copy of the log, newest first.
func (l *Log) Items() []Notification {
	items := make([]Notification, len(l.items))
	copy(items, l.items)
	return items
}

// HandleOrderPlaced is the event-bus subscriber for OrderPlaced. It records
// the order confirmation notice.
func (l *Log) HandleOrderPlaced(ctx context.Context, env event.Envelope) error {
	var e event.OrderPlaced
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return fmt.Errorf("failed to unmarshal OrderPlaced: %w", err)
	}
	l.Add(ctx, KindOrder, "Order placed",
		fmt.Sprintf("Order %s has been placed. Thank you for your purchase!", e.OrderNumber))
	return nil
}
