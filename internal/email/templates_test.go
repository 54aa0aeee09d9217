package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{0, "0 VND"},
		{999, "999 VND"},
		{1000, "1,000 VND"},
		{30000, "30,000 VND"},
		{130250, "130,250 VND"},
		{1234567, "1,234,567 VND"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount))
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody("HD000042", 130000, []OrderItem{
		{ProductID: "p1", Name: "Monstera", Quantity: 2, Price: 50000},
		{ProductID: "p2", Quantity: 1, Price: 30000},
	})

	assert.Contains(t, body, "HD000042")
	assert.Contains(t, body, "Monstera")
	// nameless items fall back to the product id
	assert.Contains(t, body, "p2")
	assert.Contains(t, body, "130,000 VND")
	assert.Contains(t, body, "100,000 VND")
}
