package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses() {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("shipped"))
	assert.False(t, IsValidStatus(""))
	assert.False(t, IsValidStatus("PENDING"))
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to accepted", OrderStatusPending, OrderStatusAccepted, true},
		{"pending to canceled", OrderStatusPending, OrderStatusCanceled, true},
		{"pending skips to completed", OrderStatusPending, OrderStatusCompleted, false},
		{"accepted to in_progress", OrderStatusAccepted, OrderStatusInProgress, true},
		{"accepted back to pending", OrderStatusAccepted, OrderStatusPending, false},
		{"in_progress to in_delivery", OrderStatusInProgress, OrderStatusInDelivery, true},
		{"in_delivery to completed", OrderStatusInDelivery, OrderStatusCompleted, true},
		{"in_delivery to canceled", OrderStatusInDelivery, OrderStatusCanceled, true},
		{"completed is terminal", OrderStatusCompleted, OrderStatusCanceled, false},
		{"canceled is terminal", OrderStatusCanceled, OrderStatusPending, false},
		{"unknown status", "refunded", OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.allowed, o.CanTransitionTo(tt.to))
		})
	}
}

func TestEveryNonTerminalStatusCanBeCanceled(t *testing.T) {
	for _, s := range ValidStatuses() {
		if IsTerminalStatus(s) {
			continue
		}
		o := &Order{Status: s}
		assert.True(t, o.CanTransitionTo(OrderStatusCanceled), s)
	}
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(OrderStatusCompleted))
	assert.True(t, IsTerminalStatus(OrderStatusCanceled))
	assert.False(t, IsTerminalStatus(OrderStatusPending))
	assert.False(t, IsTerminalStatus(OrderStatusInDelivery))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Out for delivery", StatusLabel(OrderStatusInDelivery))
	assert.Equal(t, "Pending", StatusLabel(OrderStatusPending))
	assert.Equal(t, "mystery", StatusLabel("mystery"))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{
		Price:    decimal.RequireFromString("1250.50"),
		Quantity: 3,
	}
	assert.True(t, item.Subtotal().Equal(decimal.RequireFromString("3751.50")))
}
