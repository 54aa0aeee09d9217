package event

import (
	"encoding/json"
	"time"

	"github.com/example/plantshop/internal/catalog"
)

const (
	TypeOrderPlaced      = "OrderPlaced"
	TypePurchaseRecorded = "PurchaseRecorded"
)

// Envelope wraps a serialized event payload for dispatch and fan-out.
type Envelope struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"` // routing key, the owning user id
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// PurchaseItem is one purchased line inside an event payload. Product is the
// optional full snapshot; the favorites tracker needs it for auto-promotion.
type PurchaseItem struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *catalog.Product `json:"product,omitempty"`
}

// OrderPlaced is published after a successful checkout.
type OrderPlaced struct {
	OrderID     string         `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	UserID      string         `json:"user_id"`
	Items       []PurchaseItem `json:"items"`
	Total       int            `json:"total"`
	PlacedAt    time.Time      `json:"placed_at"`
}

// PurchaseRecorded carries the drained cart lines to the purchase-count
// tracker.
type PurchaseRecorded struct {
	UserID     string         `json:"user_id"`
	Items      []PurchaseItem `json:"items"`
	RecordedAt time.Time      `json:"recorded_at"`
}
