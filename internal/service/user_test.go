package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkova/flowerdelivery/internal/domain"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

func TestLinkTelegram_Success(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()

	users.On("GetByUsername", ctx, "anna").Return(&domain.User{ID: "user-1", Username: "anna"}, nil)
	users.On("SetTelegramChatID", ctx, "user-1", int64(42)).Return(nil)

	user, err := svc.LinkTelegram(ctx, "anna", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.TelegramChatID)
	users.AssertExpectations(t)
}

func TestLinkTelegram_OverwritesPreviousLink(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()

	users.On("GetByUsername", ctx, "anna").
		Return(&domain.User{ID: "user-1", Username: "anna", TelegramChatID: 7}, nil)
	users.On("SetTelegramChatID", ctx, "user-1", int64(42)).Return(nil)

	user, err := svc.LinkTelegram(ctx, "anna", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.TelegramChatID)
}

func TestLinkTelegram_UnknownUsername(t *testing.T) {
	users := new(mockUserRepository)
	svc := NewUserService(users, newTestLogger())
	ctx := context.Background()

	users.On("GetByUsername", ctx, "nobody").Return(nil, apperrors.NotFound("user", "nobody"))

	_, err := svc.LinkTelegram(ctx, "nobody", 42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLinkTelegram_Validation(t *testing.T) {
	svc := NewUserService(new(mockUserRepository), newTestLogger())
	ctx := context.Background()

	_, err := svc.LinkTelegram(ctx, "", 42)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.LinkTelegram(ctx, "anna", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
