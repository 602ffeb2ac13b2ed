package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines allowed in a cart.
	MaxItemsPerCart = 50
)

// AddItemInput holds the parameters for adding a product to the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	// Override replaces the line quantity instead of adding to it.
	Override bool `json:"override"`
}

// CartService implements the business logic for cart operations. Prices are
// captured from the catalog at add time, so a line keeps the price the
// customer saw even if the catalog changes afterwards.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a session. If no cart exists (or it has
// expired), returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds a product to the session's cart. The product must exist and
// be available. If the product is already in the cart the quantities merge,
// unless Override is set, in which case the given quantity replaces the
// existing one.
func (s *CartService) AddItem(ctx context.Context, sessionID string, input AddItemInput) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Available {
		return nil, apperrors.InvalidInput("product is not available")
	}

	cart, err := s.getOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if idx := cart.FindItemIndex(input.ProductID); idx >= 0 {
		newQty := cart.Items[idx].Quantity + input.Quantity
		if input.Override {
			newQty = input.Quantity
		}
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[idx].Quantity = newQty
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  input.Quantity,
			ImageURL:  product.ImageURL,
		})
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", input.ProductID),
		slog.Int("quantity", input.Quantity),
		slog.Bool("override", input.Override),
	)

	return cart, nil
}

// UpdateQuantities applies new quantities to multiple cart lines at once.
// Quantities arrive as raw strings: a positive integer replaces the line
// quantity, zero or negative removes the line, anything else leaves the line
// unchanged and the product ID is reported back in skipped. Product IDs not
// in the cart are likewise skipped. Lines are independent, so a batch can
// partially succeed.
func (s *CartService) UpdateQuantities(ctx context.Context, sessionID string, quantities map[string]string) (*domain.Cart, []string, error) {
	if sessionID == "" {
		return nil, nil, apperrors.InvalidInput("session id is required")
	}
	if len(quantities) == 0 {
		return nil, nil, apperrors.InvalidInput("no quantities given")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.NotFound("cart", sessionID)
		}
		return nil, nil, fmt.Errorf("get cart for update: %w", err)
	}

	var skipped []string
	for productID, raw := range quantities {
		idx := cart.FindItemIndex(productID)
		if idx < 0 {
			skipped = append(skipped, productID)
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || qty > MaxQuantityPerItem {
			skipped = append(skipped, productID)
			continue
		}
		if qty <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			cart.Items[idx].Quantity = qty
		}
	}

	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart quantities updated",
		slog.String("session_id", sessionID),
		slog.Int("changed", len(quantities)-len(skipped)),
		slog.Int("skipped", len(skipped)),
	)

	return cart, skipped, nil
}

// RemoveItem removes a product line from the cart. Removing a line that is
// absent, or from an absent cart, succeeds without changing anything.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	// Removing a line that is not in the cart is a silent no-op.
	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return cart, nil
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)

	return cart, nil
}

// ClearCart removes all items from the session's cart. Clearing an absent
// cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.InvalidInput("session id is required")
	}

	if err := s.carts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("session_id", sessionID),
	)

	return nil
}

// getOrCreateCart retrieves the cart for a session, creating an empty one
// if it does not exist.
func (s *CartService) getOrCreateCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(sessionID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) newEmptyCart(sessionID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		SessionID: sessionID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
