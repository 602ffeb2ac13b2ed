package domain

// Notification kinds.
const (
	NotificationOrderCreated       = "order_created"
	NotificationOrderStatusChanged = "order_status_changed"
)

// NotificationEvent describes a message to deliver about an order. Delivery
// is best effort and never blocks the operation that produced the event.
type NotificationEvent struct {
	OrderID  string `json:"order_id"`
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}
