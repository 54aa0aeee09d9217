package order

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Status is the display label for an order's progress. It is derived from
// elapsed time on every read and never written back.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipping   Status = "shipping"
	StatusDelivered  Status = "delivered"
)

// DeriveStatus computes the display status from the time elapsed between the
// order date and now. Elapsed days are rounded up, so an order placed a
// moment ago counts as one day.
func DeriveStatus(now, placed time.Time) Status {
	elapsed := now.Sub(placed)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	days := int(math.Ceil(elapsed.Hours() / 24))

	switch {
	case days <= 1:
		return StatusProcessing
	case days <= 3:
		return StatusShipping
	default:
		return StatusDelivered
	}
}

// RandomOrderNumber produces a human-readable display code. It is not the
// primary key; collisions are acceptable.
func RandomOrderNumber() string {
	return fmt.Sprintf("HD%06d", rand.Intn(1000000))
}
