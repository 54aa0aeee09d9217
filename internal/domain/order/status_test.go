package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		placed time.Time
		want   Status
	}{
		{"just placed", now, StatusProcessing},
		{"a few hours ago", now.Add(-6 * time.Hour), StatusProcessing},
		{"exactly one day", now.Add(-24 * time.Hour), StatusProcessing},
		{"two days ago", now.Add(-48 * time.Hour), StatusShipping},
		{"three days ago", now.Add(-72 * time.Hour), StatusShipping},
		{"just over three days", now.Add(-73 * time.Hour), StatusDelivered},
		{"ten days ago", now.Add(-10 * 24 * time.Hour), StatusDelivered},
		{"clock skew, order in the future", now.Add(12 * time.Hour), StatusProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(now, tt.placed))
		})
	}
}

func TestRandomOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^HD\d{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, RandomOrderNumber())
	}
}
