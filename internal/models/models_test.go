package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	price := decimal.RequireFromString("19.99")

	total := LineTotal(price, 3)
	assert.True(t, total.Equal(decimal.RequireFromString("59.97")),
		"expected 59.97, got %s", total)

	assert.True(t, LineTotal(price, 1).Equal(price))
	assert.True(t, LineTotal(decimal.Zero, 100).Equal(decimal.Zero))
}
