package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkova/flowerdelivery/pkg/database"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

func newTestProductRepo(t *testing.T) (*ProductRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewProductRepository(mock), mock
}

func productRows() *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{
		"id", "name", "description", "price", "image_url", "available", "created_at", "updated_at",
	}).AddRow(
		"prod-001", "Rose Bouquet", "Eleven red roses", decimal.RequireFromString("1500.00"),
		"https://cdn.example.com/roses.jpg", true, now, now,
	)
}

func TestProductRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestProductRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectQuery("SELECT").
		WithArgs("prod-001").
		WillReturnRows(productRows())

	p, err := repo.GetByID(context.Background(), "prod-001")
	require.NoError(t, err)
	assert.Equal(t, "Rose Bouquet", p.Name)
	assert.True(t, p.Available)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1500.00")))
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestProductRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectQuery("SELECT").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProductRepository_List(t *testing.T) {
	repo, mock := newTestProductRepo(t)
	defer mock.ExpectationsWereMet()

	mock.ExpectQuery("SELECT").
		WillReturnRows(productRows())

	products, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-001", products[0].ID)
}
