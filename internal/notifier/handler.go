// Package notifier consumes checkout events from Kafka and sends order
// confirmation mail. It runs as its own process; the session core treats it
// as fire-and-forget.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/account"
	"github.com/example/plantshop/internal/email"
	"github.com/example/plantshop/internal/event"
)

// Mailer is the mail-sending surface the handler depends on.
type Mailer interface {
	SendOrderConfirmation(to, orderNumber string, total int, items []email.OrderItem) error
}

// Handler processes event envelopes for notification delivery.
type Handler struct {
	mailer   Mailer
	accounts account.Store
	logger   zerolog.Logger
}

func NewHandler(mailer Mailer, accounts account.Store, logger zerolog.Logger) *Handler {
	return &Handler{
		mailer:   mailer,
		accounts: accounts,
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

// HandleMessage decodes a Kafka message into an envelope and dispatches it.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var env event.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		h.logger.Error().Err(err).Msg("failed to unmarshal envelope")
		return err
	}

	if env.Type == event.TypeOrderPlaced {
		return h.handleOrderPlaced(ctx, env)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, env event.Envelope) error {
	var e event.OrderPlaced
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return fmt.Errorf("failed to unmarshal OrderPlaced: %w", err)
	}

	h.logger.Info().
		Str("order_id", e.OrderID).
		Str("user_id", e.UserID).
		Msg("processing OrderPlaced event")

	user, err := h.accounts.GetByID(ctx, e.UserID)
	if err != nil {
		// A missing account is not retryable; drop the event.
		h.logger.Warn().Err(err).Str("user_id", e.UserID).Msg("cannot resolve recipient")
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		name := item.ProductID
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		price := 0
		if item.Product != nil {
			price = item.Product.Price
		}
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Quantity:  item.Quantity,
			Price:     price,
		}
	}

	if err := h.mailer.SendOrderConfirmation(user.Email, e.OrderNumber, e.Total, items); err != nil {
		h.logger.Error().Err(err).Str("email", user.Email).Msg("failed to send confirmation mail")
		return err
	}

	h.logger.Info().
		Str("email", user.Email).
		Str("order_number", e.OrderNumber).
		Msg("order confirmation sent")
	return nil
}
