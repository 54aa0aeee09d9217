package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/domain/favorites"
	"github.com/example/plantshop/internal/domain/order"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

var testTime = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func testManager(kv kvstore.Store, sinks []event.Sink) *Manager {
	return NewManager(kv, sinks, zerolog.Nop(), order.Options{
		Clock: func() time.Time { return testTime },
	})
}

func testProduct(id string, price int) catalog.Product {
	return catalog.Product{ID: id, Name: "Plant " + id, Price: price, Stock: 10}
}

func validDelivery() order.DeliveryInfo {
	return order.DeliveryInfo{
		FullName:      "Jane Doe",
		Phone:         "0123456789",
		Address:       "1 Garden Lane",
		PaymentMethod: order.PaymentCashOnDelivery,
	}
}

func TestManagerCachesSessions(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	a := m.Get(ctx, "user-1")
	b := m.Get(ctx, "user-1")
	other := m.Get(ctx, "user-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()

	a := m.Get(ctx, "user-1")
	b := m.Get(ctx, "user-2")

	_, err := a.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)

	assert.Len(t, a.CartItems(), 1)
	assert.Empty(t, b.CartItems())
}

func TestAddToCartNotice(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	s := m.Get(context.Background(), "user-1")

	notice, err := s.AddToCart(context.Background(), testProduct("p1", 100))
	require.NoError(t, err)
	assert.Equal(t, "Added Plant p1 to cart", notice)
}

func TestCheckoutFlow(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	m := testManager(kv, nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	p := testProduct("p1", 100)
	_, err := s.AddToCart(ctx, p)
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, p)
	require.NoError(t, err)

	o, err := s.Checkout(ctx, validDelivery())
	require.NoError(t, err)
	require.NotNil(t, o)

	// cart is drained
	assert.Empty(t, s.CartItems())
	assert.Equal(t, 0, s.CartTotal())

	// order is in history, newest first
	orders := s.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)
	assert.Equal(t, 200+order.DefaultShippingFee, orders[0].Total)

	// purchase counts were updated through the event bus and the product
	// crossed the promotion threshold
	assert.Equal(t, 2, s.PurchaseCounts()["p1"])
	favs := s.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, "p1", favs[0].ID)

	// the order confirmation landed in the notification log
	notes := s.Notifications()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, o.OrderNumber)
	assert.Equal(t, 1, s.UnreadNotifications())
}

func TestCheckoutEmptyCart(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	s := m.Get(context.Background(), "user-1")

	o, err := s.Checkout(context.Background(), validDelivery())
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Nil(t, o)
}

func TestCheckoutInvalidDeliveryKeepsCart(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	_, err := s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)

	info := validDelivery()
	info.Address = ""
	o, err := s.Checkout(ctx, info)
	assert.ErrorIs(t, err, order.ErrInvalidDeliveryInfo)
	assert.Nil(t, o)
	assert.Len(t, s.CartItems(), 1)
}

func TestCheckoutPersistenceFailureStillClearsCart(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	m := testManager(kv, nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	_, err := s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)

	kv.SetErr = assert.AnError
	o, err := s.Checkout(ctx, validDelivery())
	assert.Error(t, err)
	require.NotNil(t, o)

	// the order was applied in memory, so the cart is drained
	assert.Empty(t, s.CartItems())
	assert.Len(t, s.Orders(), 1)
}

func TestOrderStatusDerivation(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	_, err := s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)
	o, err := s.Checkout(ctx, validDelivery())
	require.NoError(t, err)

	assert.Equal(t, order.StatusProcessing, s.OrderStatus(o))

	aged := *o
	aged.Date = testTime.Add(-2 * 24 * time.Hour)
	assert.Equal(t, order.StatusShipping, s.OrderStatus(&aged))

	aged.Date = testTime.Add(-10 * 24 * time.Hour)
	assert.Equal(t, order.StatusDelivered, s.OrderStatus(&aged))
}

func TestDeleteAndClearOrders(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	for i := 0; i < 2; i++ {
		_, err := s.AddToCart(ctx, testProduct("p1", 100))
		require.NoError(t, err)
		_, err = s.Checkout(ctx, validDelivery())
		require.NoError(t, err)
	}

	orders := s.Orders()
	require.Len(t, orders, 2)

	require.NoError(t, s.DeleteOrder(ctx, orders[0].ID))
	assert.Len(t, s.Orders(), 1)

	require.NoError(t, s.ClearOrderHistory(ctx))
	assert.Empty(t, s.Orders())
}

func TestFavoritesRoundTrip(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	on, err := s.ToggleFavorite(ctx, testProduct("p1", 100))
	require.NoError(t, err)
	assert.True(t, on)

	favs := s.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, "p1", favs[0].ID)

	require.NoError(t, s.RemoveFavorite(ctx, "p1"))
	assert.Empty(t, s.Favorites())
}

func TestNotificationLifecycle(t *testing.T) {
	m := testManager(kvstore.NewMemoryStore(), nil)
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	_, err := s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)
	_, err = s.Checkout(ctx, validDelivery())
	require.NoError(t, err)

	notes := s.Notifications()
	require.Len(t, notes, 1)
	require.Equal(t, 1, s.UnreadNotifications())

	assert.True(t, s.MarkNotificationRead(ctx, notes[0].ID))
	assert.Equal(t, 0, s.UnreadNotifications())

	s.MarkAllNotificationsRead(ctx)
	s.ClearNotifications(ctx)
	assert.Empty(t, s.Notifications())
}

func TestStatePersistsAcrossSessions(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	ctx := context.Background()

	m := testManager(kv, nil)
	s := m.Get(ctx, "user-1")
	_, err := s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)
	_, err = s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)
	o, err := s.Checkout(ctx, validDelivery())
	require.NoError(t, err)

	// a fresh manager simulates a restart; orders, favorites and
	// notifications rehydrate, the cart does not
	fresh := testManager(kv, nil).Get(ctx, "user-1")

	orders := fresh.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)

	favs := fresh.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, favorites.PromotionThreshold, favs[0].PurchaseCount)

	notes := fresh.Notifications()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, o.OrderNumber)
	assert.Equal(t, 1, fresh.UnreadNotifications())

	assert.Empty(t, fresh.CartItems())
}

func TestSinkReceivesCheckoutEvents(t *testing.T) {
	var seen []string
	sink := func(ctx context.Context, env event.Envelope) error {
		seen = append(seen, env.Type)
		return nil
	}

	m := testManager(kvstore.NewMemoryStore(), []event.Sink{sink})
	ctx := context.Background()
	s := m.Get(ctx, "user-1")

	_, err := s.AddToCart(ctx, testProduct("p1", 100))
	require.NoError(t, err)
	_, err = s.Checkout(ctx, validDelivery())
	require.NoError(t, err)

	assert.Equal(t, []string{event.TypeOrderPlaced, event.TypePurchaseRecorded}, seen)
}
