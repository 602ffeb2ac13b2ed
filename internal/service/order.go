package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/event"
	"github.com/avolkova/flowerdelivery/internal/repository"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// Notifier delivers order notifications. Implementations must not block:
// delivery happens in the background and failures never surface here.
type Notifier interface {
	OrderCreated(ctx context.Context, order *domain.Order)
	OrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus, newStatus string)
}

// CheckoutInput holds the parameters for converting a cart into an order.
type CheckoutInput struct {
	UserID        string    `json:"user_id"`
	CustomerName  string    `json:"customer_name" validate:"required"`
	Phone         string    `json:"phone" validate:"required"`
	DeliveryDate  time.Time `json:"delivery_date" validate:"required"`
	DeliveryTime  string    `json:"delivery_time" validate:"required"`
	DeliveryPlace string    `json:"delivery_place" validate:"required"`
	Comment       string    `json:"comment"`
}

// OrderService implements the business logic for order operations.
type OrderService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	publisher event.Publisher
	notifier  Notifier
	logger    *slog.Logger

	// Orders are only accepted while the shop is staffed, between openHour
	// and closeHour inclusive.
	openHour  int
	closeHour int
	now       func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	publisher event.Publisher,
	notifier Notifier,
	openHour, closeHour int,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
		openHour:  openHour,
		closeHour: closeHour,
		now:       time.Now,
	}
}

// CreateOrder converts the session's cart into a pending order. The cart
// must be non-empty and the current time must fall inside the acceptance
// window; both are checked before anything is persisted. On success the
// cart is cleared and a notification is dispatched.
func (s *OrderService) CreateOrder(ctx context.Context, sessionID string, input CheckoutInput) (*domain.Order, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.CustomerName == "" {
		return nil, apperrors.InvalidInput("customer name is required")
	}
	if input.Phone == "" {
		return nil, apperrors.InvalidInput("phone is required")
	}
	if input.DeliveryPlace == "" {
		return nil, apperrors.InvalidInput("delivery place is required")
	}
	if input.DeliveryDate.IsZero() {
		return nil, apperrors.InvalidInput("delivery date is required")
	}

	if hour := s.now().Hour(); hour < s.openHour || hour > s.closeHour {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"orders are accepted between %02d:00 and %02d:59", s.openHour, s.closeHour,
		))
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	now := s.now().UTC()
	orderID := uuid.New().String()

	items := make([]domain.OrderItem, len(cart.Items))
	total := decimal.Zero
	for i, line := range cart.Items {
		items[i] = domain.OrderItem{
			ID:          uuid.New().String(),
			ProductID:   line.ProductID,
			ProductName: line.Name,
			ImageURL:    line.ImageURL,
			Price:       line.Price,
			Quantity:    line.Quantity,
		}
		total = total.Add(items[i].Subtotal())
	}

	order := &domain.Order{
		ID:            orderID,
		UserID:        input.UserID,
		Status:        domain.OrderStatusPending,
		Items:         items,
		TotalPrice:    total,
		CustomerName:  input.CustomerName,
		Phone:         input.Phone,
		DeliveryDate:  input.DeliveryDate,
		DeliveryTime:  input.DeliveryTime,
		DeliveryPlace: input.DeliveryPlace,
		Comment:       input.Comment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed; a failed cart clear leaves stale lines but
	// must not fail checkout.
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("session_id", sessionID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.notifier.OrderCreated(ctx, order)

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("session_id", sessionID),
		slog.String("total_price", order.TotalPrice.StringFixed(2)),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}
	return order, nil
}

// ListOrders returns a filtered, paginated list of orders.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	if filter.Status != nil && !domain.IsValidStatus(*filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *filter.Status))
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// SetStatus transitions the order to a new status with validation. Setting
// the current status again is a no-op: nothing is written and no events or
// notifications are emitted. Terminal orders reject every transition.
func (s *OrderService) SetStatus(ctx context.Context, id string, newStatus string) (*domain.Order, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"invalid status %q, must be one of: %s",
			newStatus, strings.Join(domain.ValidStatuses(), ", "),
		))
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if order.Status == newStatus {
		return order, nil
	}

	if order.IsTerminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("order is %s and can no longer change", order.Status))
	}

	if !order.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cannot transition from %q to %q", order.Status, newStatus))
	}

	oldStatus := order.Status

	if err := s.orders.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order.Status = newStatus

	if err := s.publisher.PublishOrderStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.notifier.OrderStatusChanged(ctx, order, oldStatus, newStatus)

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	return order, nil
}

// CancelOrder cancels an order, validating the transition.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.SetStatus(ctx, id, domain.OrderStatusCanceled)
}

// DailyReport summarizes the orders created on the given calendar day.
type DailyReport struct {
	Day        time.Time
	Orders     []domain.Order
	TotalPrice decimal.Decimal
}

// Report returns all orders created on the given day with their combined
// total. Canceled orders are listed but excluded from the total.
func (s *OrderService) Report(ctx context.Context, day time.Time) (*DailyReport, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	orders, err := s.orders.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}

	total := decimal.Zero
	for _, o := range orders {
		if o.Status != domain.OrderStatusCanceled {
			total = total.Add(o.TotalPrice)
		}
	}

	return &DailyReport{
		Day:        from,
		Orders:     orders,
		TotalPrice: total,
	}, nil
}
