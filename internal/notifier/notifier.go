package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// Messenger sends messages to a chat. Implemented by *telegram.Client.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error
}

// Dispatcher delivers order notifications to Telegram chats. Delivery is
// best effort: each notification is sent once from a background goroutine,
// and failures are logged and dropped without affecting the operation that
// produced them.
type Dispatcher struct {
	messenger   Messenger
	users       repository.UserRepository
	adminChatID int64
	timeout     time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
}

// New creates a notification dispatcher. adminChatID of 0 disables the
// admin recipient.
func New(messenger Messenger, users repository.UserRepository, adminChatID int64, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		messenger:   messenger,
		users:       users,
		adminChatID: adminChatID,
		timeout:     10 * time.Second,
		logger:      logger,
	}
}

// OrderCreated dispatches a notification about a newly placed order.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *domain.Order) {
	event := domain.NotificationEvent{
		OrderID:  order.ID,
		Kind:     domain.NotificationOrderCreated,
		Text:     renderOrderCreated(order),
		ImageURL: firstImageURL(order),
	}
	d.dispatch(ctx, order, event)
}

// OrderStatusChanged dispatches a notification about a status transition.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus, newStatus string) {
	event := domain.NotificationEvent{
		OrderID: order.ID,
		Kind:    domain.NotificationOrderStatusChanged,
		Text:    renderStatusChanged(order, oldStatus, newStatus),
	}
	d.dispatch(ctx, order, event)
}

// Wait blocks until all in-flight notifications have been attempted. Used
// during graceful shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// dispatch resolves recipients and delivers the event in the background.
// The caller's context is detached so that finishing the HTTP request does
// not cancel delivery.
func (d *Dispatcher) dispatch(ctx context.Context, order *domain.Order, event domain.NotificationEvent) {
	bgCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(bgCtx, d.timeout)
		defer cancel()

		for _, chatID := range d.recipients(sendCtx, order) {
			d.deliver(sendCtx, chatID, event)
		}
	}()
}

// recipients returns the chat IDs to notify: the admin chat plus the order
// owner when they have linked a Telegram chat.
func (d *Dispatcher) recipients(ctx context.Context, order *domain.Order) []int64 {
	var chats []int64
	if d.adminChatID != 0 {
		chats = append(chats, d.adminChatID)
	}

	if order.UserID == "" {
		return chats
	}

	user, err := d.users.GetByID(ctx, order.UserID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			d.logger.ErrorContext(ctx, "failed to resolve order owner for notification",
				slog.String("order_id", order.ID),
				slog.String("user_id", order.UserID),
				slog.String("error", err.Error()),
			)
		}
		return chats
	}

	if user.HasTelegram() && user.TelegramChatID != d.adminChatID {
		chats = append(chats, user.TelegramChatID)
	}

	return chats
}

// deliver sends a single notification to a single chat. One attempt only.
func (d *Dispatcher) deliver(ctx context.Context, chatID int64, event domain.NotificationEvent) {
	var err error
	if event.ImageURL != "" {
		err = d.messenger.SendPhoto(ctx, chatID, event.ImageURL, event.Text)
	} else {
		err = d.messenger.SendMessage(ctx, chatID, event.Text)
	}

	if err != nil {
		d.logger.ErrorContext(ctx, "notification delivery failed",
			slog.String("order_id", event.OrderID),
			slog.String("kind", event.Kind),
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		return
	}

	d.logger.InfoContext(ctx, "notification delivered",
		slog.String("order_id", event.OrderID),
		slog.String("kind", event.Kind),
		slog.Int64("chat_id", chatID),
	)
}

// firstImageURL is the image of the order's first line item, if it has one.
func firstImageURL(order *domain.Order) string {
	if len(order.Items) == 0 {
		return ""
	}
	return order.Items[0].ImageURL
}
