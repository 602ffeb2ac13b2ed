package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// UserService implements the business logic for customer profiles.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// GetByUsername retrieves a user by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	return s.users.GetByUsername(ctx, username)
}

// LinkTelegram associates a Telegram chat with the named account. Linking
// is idempotent and overwrites any previous association, so re-linking from
// a new chat simply moves the link.
func (s *UserService) LinkTelegram(ctx context.Context, username string, chatID int64) (*domain.User, error) {
	if username == "" {
		return nil, apperrors.InvalidInput("username is required")
	}
	if chatID == 0 {
		return nil, apperrors.InvalidInput("chat id is required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}

	if err := s.users.SetTelegramChatID(ctx, user.ID, chatID); err != nil {
		return nil, fmt.Errorf("link telegram: %w", err)
	}

	user.TelegramChatID = chatID

	s.logger.InfoContext(ctx, "telegram chat linked",
		slog.String("user_id", user.ID),
		slog.String("username", username),
		slog.Int64("chat_id", chatID),
	)

	return user, nil
}
