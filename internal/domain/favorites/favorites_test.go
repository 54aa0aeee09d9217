package favorites

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

func testTracker(t *testing.T, kv kvstore.Store) *Tracker {
	t.Helper()
	return NewTracker(context.Background(), "user-1", kv, zerolog.Nop())
}

func testProduct(id string) catalog.Product {
	return catalog.Product{ID: id, Name: "Plant " + id, Price: 100}
}

func TestToggleAddsAndRemoves(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	p := testProduct("p1")

	on, err := tr.Toggle(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, tr.IsFavorite("p1"))

	off, err := tr.Toggle(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, tr.IsFavorite("p1"))
	assert.Empty(t, tr.Favorites())
}

func TestRemove(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	_, err := tr.Toggle(context.Background(), testProduct("p1"))
	require.NoError(t, err)
	_, err = tr.Toggle(context.Background(), testProduct("p2"))
	require.NoError(t, err)

	require.NoError(t, tr.Remove(context.Background(), "p1"))

	favs := tr.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, "p2", favs[0].ID)

	// removing an absent product is a no-op
	require.NoError(t, tr.Remove(context.Background(), "missing"))
	assert.Len(t, tr.Favorites(), 1)
}

func TestRecordPurchasesAccumulates(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())

	err := tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Counts()["p1"])
	assert.False(t, tr.IsFavorite("p1"))

	p := testProduct("p1")
	err = tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 3, Product: &p},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Counts()["p1"])
}

func TestPromotionAtThreshold(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	p := testProduct("p1")

	err := tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: PromotionThreshold, Product: &p},
	})
	require.NoError(t, err)

	require.True(t, tr.IsFavorite("p1"))
	favs := tr.Favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, PromotionThreshold, favs[0].PurchaseCount)
}

func TestNoPromotionBelowThreshold(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	p := testProduct("p1")

	err := tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 1, Product: &p},
	})
	require.NoError(t, err)
	assert.False(t, tr.IsFavorite("p1"))
}

func TestNoPromotionWithoutSnapshot(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())

	err := tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 5},
	})
	require.NoError(t, err)
	assert.False(t, tr.IsFavorite("p1"))
	assert.Equal(t, 5, tr.Counts()["p1"])
}

func TestRemovalSticksAfterPromotion(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	p := testProduct("p1")

	err := tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 2, Product: &p},
	})
	require.NoError(t, err)
	require.True(t, tr.IsFavorite("p1"))

	require.NoError(t, tr.Remove(context.Background(), "p1"))

	// the count is already past the threshold, so later purchases do not
	// promote again
	err = tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 2, Product: &p},
	})
	require.NoError(t, err)
	assert.False(t, tr.IsFavorite("p1"))
	assert.Equal(t, 4, tr.Counts()["p1"])
}

func TestPromotionSkipsExistingFavorite(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	p := testProduct("p1")

	_, err := tr.Toggle(context.Background(), p)
	require.NoError(t, err)

	err = tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p1", Quantity: 2, Product: &p},
	})
	require.NoError(t, err)

	assert.Len(t, tr.Favorites(), 1)
}

func TestRehydration(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	tr := testTracker(t, kv)
	p := testProduct("p1")

	_, err := tr.Toggle(context.Background(), p)
	require.NoError(t, err)
	err = tr.RecordPurchases(context.Background(), []event.PurchaseItem{
		{ProductID: "p2", Quantity: 3},
	})
	require.NoError(t, err)

	fresh := testTracker(t, kv)
	assert.True(t, fresh.IsFavorite("p1"))
	assert.Equal(t, 3, fresh.Counts()["p2"])
}

func TestRehydrationMalformedDocuments(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), "favorites:user-1", []byte("oops")))
	require.NoError(t, kv.Set(context.Background(), "purchase-counts:user-1", []byte("[]")))

	tr := testTracker(t, kv)
	assert.Empty(t, tr.Favorites())
	assert.Empty(t, tr.Counts())
}

func TestHandlePurchaseRecorded(t *testing.T) {
	tr := testTracker(t, kvstore.NewMemoryStore())
	p := testProduct("p1")

	bus := event.NewBus(zerolog.Nop())
	bus.Subscribe(event.TypePurchaseRecorded, tr.HandlePurchaseRecorded)

	err := bus.Publish(context.Background(), "user-1", event.TypePurchaseRecorded, event.PurchaseRecorded{
		UserID: "user-1",
		Items:  []event.PurchaseItem{{ProductID: "p1", Quantity: 2, Product: &p}},
	})
	require.NoError(t, err)

	assert.True(t, tr.IsFavorite("p1"))
	assert.Equal(t, 2, tr.Counts()["p1"])
}
