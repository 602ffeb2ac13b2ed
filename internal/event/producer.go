package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/avolkova/flowerdelivery/internal/domain"
	pkgkafka "github.com/avolkova/flowerdelivery/pkg/kafka"
)

// Kafka topics for order domain events.
var (
	TopicOrderCreated       = pkgkafka.Topic("order", "created")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
)

// Aggregate type constant.
const AggregateTypeOrder = "order"

// Publisher publishes order domain events. Satisfied by *Producer.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error
}

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id,omitempty"`
	Status        string          `json:"status"`
	Items         []OrderItemData `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	CustomerName  string          `json:"customer_name"`
	Phone         string          `json:"phone"`
	DeliveryDate  string          `json:"delivery_date"`
	DeliveryTime  string          `json:"delivery_time"`
	DeliveryPlace string          `json:"delivery_place"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Producer publishes order domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	source string
	logger *slog.Logger
}

// NewProducer creates a new event producer. Source identifies the publishing
// process in event envelopes, e.g. "flower-web" or "flower-bot".
func NewProducer(kafka *pkgkafka.Producer, source string, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		source: source,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		Items:         items,
		TotalPrice:    order.TotalPrice,
		CustomerName:  order.CustomerName,
		Phone:         order.Phone,
		DeliveryDate:  order.DeliveryDate.Format("2006-01-02"),
		DeliveryTime:  order.DeliveryTime,
		DeliveryPlace: order.DeliveryPlace,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, p.source, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, orderID, oldStatus, newStatus string) error {
	data := OrderStatusChangedData{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, orderID, AggregateTypeOrder, p.source, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", orderID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return nil
}
