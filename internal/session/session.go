package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/domain/cart"
	"github.com/example/plantshop/internal/domain/favorites"
	"github.com/example/plantshop/internal/domain/notification"
	"github.com/example/plantshop/internal/domain/order"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

// Session is the application-root state object for one authenticated user.
// It owns the cart, order, favorites and notification engines and is the
// only writer to them. A mutex serializes access because HTTP handlers run
// concurrently even though each user is a single logical writer.
type Session struct {
	UserID string

	mu            sync.Mutex
	cart          *cart.Cart
	orders        *order.Engine
	favorites     *favorites.Tracker
	notifications *notification.Log
	clock         func() time.Time
}

func newSession(ctx context.Context, userID string, kv kvstore.Store, sinks []event.Sink, logger zerolog.Logger, opts order.Options) *Session {
	bus := event.NewBus(logger)

	s := &Session{
		UserID:        userID,
		cart:          cart.New(),
		favorites:     favorites.NewTracker(ctx, userID, kv, logger),
		notifications: notification.NewLog(ctx, userID, kv, logger),
		clock:         opts.Clock,
	}
	if s.clock == nil {
		s.clock = time.Now
	}

	bus.Subscribe(event.TypePurchaseRecorded, s.favorites.HandlePurchaseRecorded)
	bus.Subscribe(event.TypeOrderPlaced, s.notifications.HandleOrderPlaced)
	for _, sink := range sinks {
		bus.AddSink(sink)
	}

	s.orders = order.NewEngine(ctx, userID, kv, bus, logger, opts)
	return s
}

// Cart

// AddToCart adds one unit of the product to the cart and returns the
// user-visible success notice. cart.ErrInvalidPrice and
// cart.ErrQuantityLimit pass through for the caller to surface.
func (s *Session) AddToCart(ctx context.Context, p catalog.Product) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.Add(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %s to cart", p.Name), nil
}

// IncreaseQuantity bumps a line by one, up to the ceiling. Unknown ids are
// no-ops.
func (s *Session) IncreaseQuantity(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Increase(productID)
}

// DecreaseQuantity lowers a line by one, never below one.
func (s *Session) DecreaseQuantity(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Decrease(productID)
}

// RemoveFromCart deletes a line outright.
func (s *Session) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
}

// CartItems returns an immutable snapshot of the cart lines.
func (s *Session) CartItems() []cart.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Items()
}

// CartTotal returns the current cart total.
func (s *Session) CartTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// Orders

// Checkout drains the cart into a new order. The cart is cleared only when
// the order was created; persistence failures leave the order applied in
// memory and are reported to the caller.
func (s *Session) Checkout(ctx context.Context, info order.DeliveryInfo) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := info.Validate(); err != nil {
		return nil, err
	}

	o, err := s.orders.Checkout(ctx, s.cart.Items(), info)
	if o != nil {
		s.cart.Clear()
	}
	if err != nil {
		return o, err
	}
	return o, nil
}

// Orders returns the order history, newest first.
func (s *Session) Orders() []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.History()
}

// Order returns one order by id.
func (s *Session) Order(orderID string) (*order.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Get(orderID)
}

// OrderStatus derives the display status for an order as of now.
func (s *Session) OrderStatus(o *order.Order) order.Status {
	return order.DeriveStatus(s.clock(), o.Date)
}

// DeleteOrder removes one order from the history.
func (s *Session) DeleteOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.Delete(ctx, orderID)
}

// ClearOrderHistory empties the order history.
func (s *Session) ClearOrderHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders.ClearHistory(ctx)
}

// Favorites

// ToggleFavorite flips favorite membership for the product.
func (s *Session) ToggleFavorite(ctx context.Context, p catalog.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Toggle(ctx, p)
}

// RemoveFavorite unconditionally removes the product from favorites.
func (s *Session) RemoveFavorite(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Remove(ctx, productID)
}

// Favorites returns the favorites set in insertion order.
func (s *Session) Favorites() []favorites.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Favorites()
}

// PurchaseCounts returns the per-product purchase counters.
func (s *Session) PurchaseCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.favorites.Counts()
}

// Notifications

func (s *Session) Notifications() []notification.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications.Items()
}

func (s *Session) UnreadNotifications() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications.UnreadCount()
}

func (s *Session) MarkNotificationRead(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications.MarkRead(ctx, id)
}

func (s *Session) MarkAllNotificationsRead(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications.MarkAllRead(ctx)
}

func (s *Session) ClearNotifications(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications.Clear(ctx)
}
