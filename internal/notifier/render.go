package notifier

import (
	"fmt"
	"strings"

	"github.com/avolkova/flowerdelivery/internal/domain"
)

// renderOrderCreated builds the text for a new-order notification.
func renderOrderCreated(order *domain.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order %s\n", order.ID)
	fmt.Fprintf(&b, "Customer: %s, %s\n", order.CustomerName, order.Phone)
	fmt.Fprintf(&b, "Delivery: %s %s, %s\n", order.DeliveryDate.Format("02.01.2006"), order.DeliveryTime, order.DeliveryPlace)

	b.WriteString("\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "- %s x%d = %s\n", item.ProductName, item.Quantity, item.Subtotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal: %s", order.TotalPrice.StringFixed(2))

	if order.Comment != "" {
		fmt.Fprintf(&b, "\nComment: %s", order.Comment)
	}

	return b.String()
}

// renderStatusChanged builds the text for a status-transition notification.
func renderStatusChanged(order *domain.Order, oldStatus, newStatus string) string {
	return fmt.Sprintf("Order %s: %s → %s",
		order.ID,
		domain.StatusLabel(oldStatus),
		domain.StatusLabel(newStatus),
	)
}
