package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusAccepted   = "accepted"
	OrderStatusInProgress = "in_progress"
	OrderStatusInDelivery = "in_delivery"
	OrderStatusCompleted  = "completed"
	OrderStatusCanceled   = "canceled"
)

// statusLabels maps statuses to the labels shown to customers.
var statusLabels = map[string]string{
	OrderStatusPending:    "Pending",
	OrderStatusAccepted:   "Accepted",
	OrderStatusInProgress: "In progress",
	OrderStatusInDelivery: "Out for delivery",
	OrderStatusCompleted:  "Completed",
	OrderStatusCanceled:   "Canceled",
}

// Order represents a customer order for flower delivery.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id,omitempty"`
	Status        string          `json:"status"`
	Items         []OrderItem     `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CustomerName  string          `json:"customer_name"`
	Phone         string          `json:"phone"`
	DeliveryDate  time.Time       `json:"delivery_date"`
	DeliveryTime  string          `json:"delivery_time"`
	DeliveryPlace string          `json:"delivery_place"`
	Comment       string          `json:"comment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is a line of an order. Price is the product price captured at
// the moment the order was placed, so later catalog changes do not affect it.
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Subtotal returns price multiplied by quantity for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ValidStatuses returns all valid order statuses.
func ValidStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusAccepted,
		OrderStatusInProgress,
		OrderStatusInDelivery,
		OrderStatusCompleted,
		OrderStatusCanceled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// StatusLabel returns the customer-facing label for a status, or the raw
// status string if no label is registered.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// IsTerminalStatus reports whether orders in this status are read-only.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCanceled
}

// AllowedTransitions defines which status transitions are valid. Any
// non-terminal order may be canceled; terminal orders accept no transitions.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatusPending:    {OrderStatusAccepted, OrderStatusCanceled},
		OrderStatusAccepted:   {OrderStatusInProgress, OrderStatusCanceled},
		OrderStatusInProgress: {OrderStatusInDelivery, OrderStatusCanceled},
		OrderStatusInDelivery: {OrderStatusCompleted, OrderStatusCanceled},
		OrderStatusCompleted:  {},
		OrderStatusCanceled:   {},
	}
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order is in a terminal status.
func (o *Order) IsTerminal() bool {
	return IsTerminalStatus(o.Status)
}
