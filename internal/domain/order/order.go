package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/domain/cart"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

const historyKeyPrefix = "order-history"

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidDeliveryInfo  = errors.New("delivery info is incomplete")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
)

// PaymentMethod is how the customer settles the order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash-on-delivery"
	PaymentBankTransfer   PaymentMethod = "bank-transfer"
)

// DeliveryInfo is the shipping destination collected at checkout.
type DeliveryInfo struct {
	FullName      string        `json:"full_name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Validate rejects blank delivery fields and unknown payment methods.
func (d DeliveryInfo) Validate() error {
	if strings.TrimSpace(d.FullName) == "" ||
		strings.TrimSpace(d.Phone) == "" ||
		strings.TrimSpace(d.Address) == "" {
		return ErrInvalidDeliveryInfo
	}
	switch d.PaymentMethod {
	case PaymentCashOnDelivery, PaymentBankTransfer:
		return nil
	default:
		return ErrInvalidPaymentMethod
	}
}

// Item is a snapshot of one cart line at checkout time.
type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Price      int    `json:"price"`
	Image      string `json:"image,omitempty"`
	Quantity   int    `json:"quantity"`
	TotalPrice int    `json:"total_price"`
}

// Order is immutable once created. Status is never stored; it is derived
// from the order date on every read.
type Order struct {
	ID                string        `json:"id"`
	OrderNumber       string        `json:"order_number"`
	Items             []Item        `json:"items"`
	Subtotal          int           `json:"subtotal"`
	ShippingFee       int           `json:"shipping_fee"`
	Total             int           `json:"total"`
	Date              time.Time     `json:"date"`
	DeliveryInfo      DeliveryInfo  `json:"delivery_info"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	EstimatedDelivery time.Time     `json:"estimated_delivery"`
}

// Options overrides the engine's injected dependencies. Zero values fall
// back to production defaults.
type Options struct {
	Clock       func() time.Time
	NewID       func() string
	OrderNumber func() string
	ShippingFee int
	DeliveryDur time.Duration
}

// Engine owns the order history for one user: checkout, deletion and
// whole-document persistence.
type Engine struct {
	userID  string
	kv      kvstore.Store
	bus     event.Publisher
	logger  zerolog.Logger
	clock   func() time.Time
	newID   func() string
	number  func() string
	fee     int
	window  time.Duration
	history []Order
}

// NewEngine builds the engine and rehydrates history from the key-value
// store. A missing or malformed document yields empty history; rehydration
// never fails startup.
func NewEngine(ctx context.Context, userID string, kv kvstore.Store, bus event.Publisher, logger zerolog.Logger, opts Options) *Engine {
	e := &Engine{
		userID: userID,
		kv:     kv,
		bus:    bus,
		logger: logger.With().Str("engine", "order").Str("user_id", userID).Logger(),
		clock:  opts.Clock,
		newID:  opts.NewID,
		number: opts.OrderNumber,
		fee:    opts.ShippingFee,
		window: opts.DeliveryDur,
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.number == nil {
		e.number = RandomOrderNumber
	}
	if e.fee == 0 {
		e.fee = DefaultShippingFee
	}
	if e.window == 0 {
		e.window = DefaultDeliveryWindow
	}

	e.rehydrate(ctx)
	return e
}

// DefaultShippingFee is the flat delivery charge in currency minor units.
const DefaultShippingFee = 30000

// DefaultDeliveryWindow is the estimated time to delivery.
const DefaultDeliveryWindow = 7 * 24 * time.Hour

func (e *Engine) historyKey() string {
	return historyKeyPrefix + ":" + e.userID
}

func (e *Engine) rehydrate(ctx context.Context) {
	doc, ok, err := e.kv.Get(ctx, e.historyKey())
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to load order history")
		return
	}
	if !ok {
		return
	}
	var history []Order
	if err := json.Unmarshal(doc, &history); err != nil {
		e.logger.Error().Err(err).Msg("malformed order history document, starting empty")
		return
	}
	e.history = history
}

func (e *Engine) persist(ctx context.Context) error {
	doc, err := json.Marshal(e.history)
	if err != nil {
		return fmt.Errorf("failed to marshal order history: %w", err)
	}
	if err := e.kv.Set(ctx, e.historyKey(), doc); err != nil {
		return fmt.Errorf("failed to persist order history: %w", err)
	}
	return nil
}

// Checkout drains the given cart lines into a new immutable order, prepends
// it to the history and publishes OrderPlaced and PurchaseRecorded events.
// The in-memory mutation is applied before persistence; a persistence
// failure is returned but not rolled back.
func (e *Engine) Checkout(ctx context.Context, lines []cart.Line, info DeliveryInfo) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	now := e.clock()
	items := make([]Item, len(lines))
	var subtotal int
	for i, l := range lines {
		items[i] = Item{
			ProductID:  l.ProductID,
			Name:       l.Name,
			Price:      l.Price,
			Image:      l.Image,
			Quantity:   l.Quantity,
			TotalPrice: l.Price * l.Quantity,
		}
		subtotal += items[i].TotalPrice
	}

	o := Order{
		ID:                e.newID(),
		OrderNumber:       e.number(),
		Items:             items,
		Subtotal:          subtotal,
		ShippingFee:       e.fee,
		Total:             subtotal + e.fee,
		Date:              now,
		DeliveryInfo:      info,
		PaymentMethod:     info.PaymentMethod,
		EstimatedDelivery: now.Add(e.window),
	}

	e.history = append([]Order{o}, e.history...)

	if e.bus != nil {
		purchased := make([]event.PurchaseItem, len(lines))
		for i, l := range lines {
			purchased[i] = event.PurchaseItem{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Product: &catalog.Product{
					ID:    l.ProductID,
					Name:  l.Name,
					Price: l.Price,
					Stock: l.Stock,
					Image: l.Image,
				},
			}
		}

		if err := e.bus.Publish(ctx, e.userID, event.TypeOrderPlaced, event.OrderPlaced{
			OrderID:     o.ID,
			OrderNumber: o.OrderNumber,
			UserID:      e.userID,
			Items:       purchased,
			Total:       o.Total,
			PlacedAt:    now,
		}); err != nil {
			e.logger.Error().Err(err).Str("order_id", o.ID).Msg("failed to publish OrderPlaced")
		}

		if err := e.bus.Publish(ctx, e.userID, event.TypePurchaseRecorded, event.PurchaseRecorded{
			UserID:     e.userID,
			Items:      purchased,
			RecordedAt: now,
		}); err != nil {
			e.logger.Error().Err(err).Str("order_id", o.ID).Msg("failed to publish PurchaseRecorded")
		}
	}

	if err := e.persist(ctx); err != nil {
		e.logger.Error().Err(err).Str("order_id", o.ID).Msg("order placed but history not persisted")
		return &o, err
	}

	e.logger.Info().
		Str("order_id", o.ID).
		Str("order_number", o.OrderNumber).
		Int("total", o.Total).
		Msg("order placed")

	return &o, nil
}

// Delete removes an order by id. Unknown ids are a no-op; the resulting
// history is persisted either way.
func (e *Engine) Delete(ctx context.Context, orderID string) error {
	kept := e.history[:0]
	for _, o := range e.history {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	e.history = kept
	return e.persist(ctx)
}

// ClearHistory empties the order history and persists the empty document.
func (e *Engine) ClearHistory(ctx context.Context) error {
	e.history = nil
	return e.persist(ctx)
}

// History returns a copy of the order history, newest first.
func (e *Engine) History() []Order {
	history := make([]Order, len(e.history))
	copy(history, e.history)
	return history
}

// Get returns the order with the given id.
func (e *Engine) Get(orderID string) (*Order, bool) {
	for _, o := range e.history {
		if o.ID == orderID {
			cp := o
			return &cp, true
		}
	}
	return nil, false
}
