package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	"github.com/avolkova/flowerdelivery/internal/service"
	"github.com/avolkova/flowerdelivery/internal/telegram"
)

// PollTimeout is how long a getUpdates call asks Telegram to hold an idle
// connection. The HTTP client used for polling must allow more than this.
const PollTimeout = 30 * time.Second

// OrderCommands is the slice of the order service the bot uses.
type OrderCommands interface {
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error)
	SetStatus(ctx context.Context, id string, status string) (*domain.Order, error)
	Report(ctx context.Context, day time.Time) (*service.DailyReport, error)
}

// UserCommands is the slice of the user service the bot uses.
type UserCommands interface {
	LinkTelegram(ctx context.Context, username string, chatID int64) (*domain.User, error)
}

// Transport is the Telegram API surface the bot needs. Implemented by
// *telegram.Client.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]telegram.Update, error)
}

// Bot is the staff command interface. It long-polls Telegram for commands
// and operates on the same order store as the web application.
type Bot struct {
	transport   Transport
	orders      OrderCommands
	users       UserCommands
	adminChatID int64
	pollTimeout int
	now         func() time.Time
	logger      *slog.Logger
}

// New creates the bot. adminChatID gates the staff commands; only the
// /link command works from other chats.
func New(transport Transport, orders OrderCommands, users UserCommands, adminChatID int64, logger *slog.Logger) *Bot {
	return &Bot{
		transport:   transport,
		orders:      orders,
		users:       users,
		adminChatID: adminChatID,
		pollTimeout: int(PollTimeout / time.Second),
		now:         time.Now,
		logger:      logger,
	}
}

// Run long-polls for updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.InfoContext(ctx, "bot started",
		slog.Int64("admin_chat_id", b.adminChatID),
	)

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.transport.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.ErrorContext(ctx, "get updates failed",
				slog.String("error", err.Error()),
			)
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}

	reply := b.HandleMessage(ctx, msg)
	if reply == "" {
		return
	}

	if err := b.transport.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		b.logger.ErrorContext(ctx, "failed to send reply",
			slog.Int64("chat_id", msg.Chat.ID),
			slog.String("error", err.Error()),
		)
	}
}
