package favorites

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/plantshop/internal/catalog"
	"github.com/example/plantshop/internal/event"
	"github.com/example/plantshop/internal/infrastructure/kvstore"
)

// PromotionThreshold is the cumulative purchase count at which a product is
// auto-promoted into the favorites set.
const PromotionThreshold = 2

const (
	favoritesKeyPrefix = "favorites"
	countsKeyPrefix    = "purchase-counts"
)

// Favorite is a favorited product snapshot. PurchaseCount is set when the
// entry was auto-promoted.
type Favorite struct {
	catalog.Product
	PurchaseCount int `json:"purchase_count,omitempty"`
}

// Tracker maintains the favorites set and per-product purchase counters for
// one user. Both are persisted as whole documents after every mutation.
type Tracker struct {
	userID string
	kv     kvstore.Store
	logger zerolog.Logger
	items  []Favorite
	counts map[string]int
}

// NewTracker builds the tracker and rehydrates both documents. Missing or
// malformed documents yield empty state; rehydration never fails startup.
func NewTracker(ctx context.Context, userID string, kv kvstore.Store, logger zerolog.Logger) *Tracker {
	t := &Tracker{
		userID: userID,
		kv:     kv,
		logger: logger.With().Str("engine", "favorites").Str("user_id", userID).Logger(),
		counts: make(map[string]int),
	}
	t.rehydrate(ctx)
	return t
}

func (t *Tracker) favoritesKey() string {
	return favoritesKeyPrefix + ":" + t.userID
}

func (t *Tracker) countsKey() string {
	return countsKeyPrefix + ":" + t.userID
}

func (t *Tracker) rehydrate(ctx context.Context) {
	if doc, ok, err := t.kv.Get(ctx, t.favoritesKey()); err != nil {
		t.logger.Error().Err(err).Msg("failed to load favorites")
	} else if ok {
		var items []Favorite
		if err := json.Unmarshal(doc, &items); err != nil {
			t.logger.Error().Err(err).Msg("malformed favorites document, starting empty")
		} else {
			t.items = items
		}
	}

	if doc, ok, err := t.kv.Get(ctx, t.countsKey()); err != nil {
		t.logger.Error().Err(err).Msg("failed to load purchase counts")
	} else if ok {
		var counts map[string]int
		if err := json.Unmarshal(doc, &counts); err != nil {
			t.logger.Error().Err(err).Msg("malformed purchase counts document, starting empty")
		} else if counts != nil {
			t.counts = counts
		}
	}
}

func (t *Tracker) persistFavorites(ctx context.Context) error {
	doc, err := json.Marshal(t.items)
	if err != nil {
		return fmt.Errorf("failed to marshal favorites: %w", err)
	}
	if err := t.kv.Set(ctx, t.favoritesKey(), doc); err != nil {
		return fmt.Errorf("failed to persist favorites: %w", err)
	}
	return nil
}

func (t *Tracker) persistCounts(ctx context.Context) error {
	doc, err := json.Marshal(t.counts)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase counts: %w", err)
	}
	if err := t.kv.Set(ctx, t.countsKey(), doc); err != nil {
		return fmt.Errorf("failed to persist purchase counts: %w", err)
	}
	return nil
}

// IsFavorite reports membership by product id.
func (t *Tracker) IsFavorite(productID string) bool {
	for _, f := range t.items {
		if f.ID == productID {
			return true
		}
	}
	return false
}

// Toggle removes the product when present and inserts the given snapshot
// otherwise. Two successive toggles restore the original membership.
// The returned bool is true when the product ended up favorited.
func (t *Tracker) Toggle(ctx context.Context, p catalog.Product) (bool, error) {
	if t.IsFavorite(p.ID) {
		return false, t.Remove(ctx, p.ID)
	}
	t.items = append(t.items, Favorite{Product: p})
	return true, t.persistFavorites(ctx)
}

// Remove unconditionally deletes the product from the favorites set.
func (t *Tracker) Remove(ctx context.Context, productID string) error {
	kept := t.items[:0]
	for _, f := range t.items {
		if f.ID != productID {
			kept = append(kept, f)
		}
	}
	t.items = kept
	return t.persistFavorites(ctx)
}

// RecordPurchases accumulates purchased quantities per product. A product
// whose count crosses PromotionThreshold from below is auto-promoted into
// the favorites set, carrying the count, when a full snapshot was supplied
// and it is not already a favorite. Promotion fires only on the crossing
// update, so a later explicit removal stays removed.
func (t *Tracker) RecordPurchases(ctx context.Context, items []event.PurchaseItem) error {
	promoted := false
	for _, item := range items {
		prev := t.counts[item.ProductID]
		next := prev + item.Quantity
		t.counts[item.ProductID] = next

		if prev < PromotionThreshold && next >= PromotionThreshold &&
			item.Product != nil && !t.IsFavorite(item.ProductID) {
			t.items = append(t.items, Favorite{
				Product:       *item.Product,
				PurchaseCount: next,
			})
			promoted = true
			t.logger.Info().
				Str("product_id", item.ProductID).
				Int("purchase_count", next).
				Msg("product auto-promoted to favorites")
		}
	}

	if err := t.persistCounts(ctx); err != nil {
		return err
	}
	if promoted {
		return t.persistFavorites(ctx)
	}
	return nil
}

// HandlePurchaseRecorded is the event-bus subscriber for PurchaseRecorded.
func (t *Tracker) HandlePurchaseRecorded(ctx context.Context, env event.Envelope) error {
	var e event.PurchaseRecorded
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return fmt.Errorf("failed to unmarshal PurchaseRecorded: %w", err)
	}
	return t.RecordPurchases(ctx, e.Items)
}

// Favorites returns a copy of the favorites set in insertion order.
func (t *Tracker) Favorites() []Favorite {
	items := make([]Favorite, len(t.items))
	copy(items, t.items)
	return items
}

// Counts returns a copy of the purchase count map.
func (t *Tracker) Counts() map[string]int {
	counts := make(map[string]int, len(t.counts))
	for id, n := range t.counts {
		counts[id] = n
	}
	return counts
}
