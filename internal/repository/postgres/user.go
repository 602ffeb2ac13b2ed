package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/pkg/database"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, full_name, phone, address, COALESCE(telegram_chat_id, 0), created_at, updated_at`

// GetByID retrieves a user by its ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id), "user", id)
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, username), "user", username)
}

// SetTelegramChatID links a Telegram chat to the user, overwriting any
// previous link.
func (r *UserRepository) SetTelegramChatID(ctx context.Context, userID string, chatID int64) error {
	query := `
		UPDATE users
		SET telegram_chat_id = $1, updated_at = $2
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, chatID, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("set telegram chat id: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}

	return nil
}

func (r *UserRepository) scanUser(row pgx.Row, resource, id string) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.FullName,
		&u.Phone,
		&u.Address,
		&u.TelegramChatID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(resource, id)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
