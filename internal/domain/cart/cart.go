package cart

import (
	"errors"

	"github.com/example/plantshop/internal/catalog"
)

// MaxQuantity is the per-line quantity ceiling.
const MaxQuantity = 15

var (
	// ErrInvalidPrice rejects products without a positive price.
	ErrInvalidPrice = errors.New("product has no valid price")
	// ErrQuantityLimit signals that a line is already at the quantity
	// ceiling. State is unchanged; callers surface it as a notice, not a
	// failure.
	ErrQuantityLimit = errors.New("quantity limit reached")
)

// Line is one product entry in the cart. It carries a snapshot of the
// product fields needed for display and pricing at add time.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image,omitempty"`
	Stock     int    `json:"stock"`
	Quantity  int    `json:"quantity"`
}

// TotalPrice returns price x quantity for the line.
func (l Line) TotalPrice() int {
	return l.Price * l.Quantity
}

// Cart holds the in-progress shopping cart for one session. Lines keep
// insertion order and there is at most one line per product id. The cart is
// session-only and never persisted.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add inserts a new line with quantity 1 or increments an existing line by
// one, up to MaxQuantity.
func (c *Cart) Add(p catalog.Product) error {
	if p.Price <= 0 {
		return ErrInvalidPrice
	}

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			if c.lines[i].Quantity >= MaxQuantity {
				return ErrQuantityLimit
			}
			c.lines[i].Quantity++
			return nil
		}
	}

	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Stock:     p.Stock,
		Quantity:  1,
	})
	return nil
}

// Increase increments the matching line by one if it is below MaxQuantity.
// Unknown ids and lines at the ceiling are no-ops.
func (c *Cart) Increase(productID string) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Quantity < MaxQuantity {
			c.lines[i].Quantity++
		}
	}
}

// Decrease decrements the matching line by one if it is above 1. Lines that
// somehow reach zero are filtered out; the guard keeps decrement from ever
// producing one itself.
func (c *Cart) Decrease(productID string) {
	kept := c.lines[:0]
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Quantity > 1 {
			c.lines[i].Quantity--
		}
		if c.lines[i].Quantity > 0 {
			kept = append(kept, c.lines[i])
		}
	}
	c.lines = kept
}

// Remove deletes the matching line, if present.
func (c *Cart) Remove(productID string) {
	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Line {
	items := make([]Line, len(c.lines))
	copy(items, c.lines)
	return items
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// TotalPrice returns the sum of price x quantity over all lines.
func (c *Cart) TotalPrice() int {
	var total int
	for _, l := range c.lines {
		total += l.Price * l.Quantity
	}
	return total
}
