package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotalPrice(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", Price: decimal.RequireFromString("1500.00"), Quantity: 2},
			{ProductID: "p2", Price: decimal.RequireFromString("750.50"), Quantity: 1},
		},
	}
	assert.True(t, cart.TotalPrice().Equal(decimal.RequireFromString("3750.50")))
}

func TestCartTotalPriceEmpty(t *testing.T) {
	cart := &Cart{}
	assert.True(t, cart.TotalPrice().IsZero())
}

func TestCartItemCount(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
	}
	assert.Equal(t, 5, cart.ItemCount())
	assert.Equal(t, 0, (&Cart{}).ItemCount())
}

func TestCartFindItemIndex(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{ProductID: "p1"},
			{ProductID: "p2"},
		},
	}
	assert.Equal(t, 0, cart.FindItemIndex("p1"))
	assert.Equal(t, 1, cart.FindItemIndex("p2"))
	assert.Equal(t, -1, cart.FindItemIndex("missing"))
}

func TestCartIsEmpty(t *testing.T) {
	assert.True(t, (&Cart{}).IsEmpty())
	assert.False(t, (&Cart{Items: []CartItem{{ProductID: "p1", Quantity: 1}}}).IsEmpty())
}
