package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// ProductService exposes catalog reads.
type ProductService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(products repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		products: products,
		logger:   logger,
	}
}

// GetProduct retrieves a single product by ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	return s.products.GetByID(ctx, id)
}

// ListProducts returns the catalog. Storefront callers pass availableOnly
// to hide products that cannot currently be ordered.
func (s *ProductService) ListProducts(ctx context.Context, availableOnly bool) ([]domain.Product, error) {
	products, err := s.products.List(ctx, availableOnly)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
