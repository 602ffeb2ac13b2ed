package repository

import (
	"context"
	"time"

	"github.com/avolkova/flowerdelivery/internal/domain"
)

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items into the store atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by its unique identifier, including items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders matching the given filter along with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)

	// UpdateStatus changes the status of an order.
	UpdateStatus(ctx context.Context, id string, status string) error

	// ListCreatedBetween returns orders created within [from, to), oldest first.
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

// ProductRepository defines the interface for catalog reads.
type ProductRepository interface {
	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns catalog products. When availableOnly is true, products
	// marked unavailable are excluded.
	List(ctx context.Context, availableOnly bool) ([]domain.Product, error)
}

// UserRepository defines the interface for customer profile operations.
type UserRepository interface {
	// GetByID retrieves a user by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// SetTelegramChatID links a Telegram chat to the user, overwriting any
	// previous link.
	SetTelegramChatID(ctx context.Context, userID string, chatID int64) error
}

// CartRepository defines the interface for session cart storage.
type CartRepository interface {
	// Get retrieves the cart for a session. Returns ErrNotFound if no cart
	// exists or it has expired.
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save stores the cart and refreshes its expiry.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart for a session. Deleting an absent cart is not
	// an error.
	Delete(ctx context.Context, sessionID string) error
}
