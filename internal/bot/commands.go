package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	"github.com/avolkova/flowerdelivery/internal/telegram"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
)

// Fixed bot replies.
const (
	replyNoAccess = "No access."
	replyNotFound = "Order not found."

	replyHelp = `Commands:
/orders - list pending orders
/orders_status [status] - list all orders, or only those with the given status
/set_status <order_id> <status> - change an order's status
/daily_report [YYYY-MM-DD] - orders and revenue for a day
/link <username> - receive updates about your orders here`

	usageLink      = "Usage: /link <username>"
	usageSetStatus = "Usage: /set_status <order_id> <status>"
	usageStatus    = "Usage: /orders_status [status]"
)

// HandleMessage parses a command message and returns the reply text. An
// empty reply means nothing should be sent.
func (b *Bot) HandleMessage(ctx context.Context, msg *telegram.Message) string {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return ""
	}

	// Keywords are case-sensitive; a leading "/" is optional and commands
	// may arrive as /cmd@BotName in group chats.
	slashed := strings.HasPrefix(fields[0], "/")
	command := strings.TrimPrefix(strings.SplitN(fields[0], "@", 2)[0], "/")
	args := fields[1:]

	handler, known := b.lookup(command)
	if !known {
		// Unknown slash commands get the help text; ordinary chat is ignored.
		if slashed {
			return replyHelp
		}
		return ""
	}

	b.logger.InfoContext(ctx, "bot command",
		slog.String("command", command),
		slog.Int64("chat_id", msg.Chat.ID),
	)
	return handler(ctx, msg, args)
}

type commandFunc func(ctx context.Context, msg *telegram.Message, args []string) string

func (b *Bot) lookup(command string) (commandFunc, bool) {
	switch command {
	case "start", "help":
		return func(context.Context, *telegram.Message, []string) string { return replyHelp }, true
	case "link":
		return b.cmdLink, true
	case "orders":
		return b.admin(func(ctx context.Context, _ *telegram.Message, _ []string) string {
			pending := domain.OrderStatusPending
			return b.cmdOrders(ctx, &pending)
		}), true
	case "orders_status":
		return b.admin(func(ctx context.Context, _ *telegram.Message, args []string) string {
			return b.cmdOrdersStatus(ctx, args)
		}), true
	case "set_status":
		return b.admin(func(ctx context.Context, _ *telegram.Message, args []string) string {
			return b.cmdSetStatus(ctx, args)
		}), true
	case "daily_report":
		return b.admin(func(ctx context.Context, _ *telegram.Message, args []string) string {
			return b.cmdDailyReport(ctx, args)
		}), true
	default:
		return nil, false
	}
}

// admin wraps a command so it only runs from the admin chat.
func (b *Bot) admin(run commandFunc) commandFunc {
	return func(ctx context.Context, msg *telegram.Message, args []string) string {
		if msg.Chat.ID != b.adminChatID {
			return replyNoAccess
		}
		return run(ctx, msg, args)
	}
}

func (b *Bot) cmdLink(ctx context.Context, msg *telegram.Message, args []string) string {
	if len(args) != 1 {
		return usageLink
	}

	user, err := b.users.LinkTelegram(ctx, args[0], msg.Chat.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Sprintf("No account named %q.", args[0])
		}
		b.logger.ErrorContext(ctx, "link failed",
			slog.String("username", args[0]),
			slog.String("error", err.Error()),
		)
		return "Something went wrong, try again later."
	}

	return fmt.Sprintf("Linked. Order updates for %s will arrive here.", user.Username)
}

func (b *Bot) cmdOrders(ctx context.Context, status *string) string {
	orders, total, err := b.orders.ListOrders(ctx, repository.OrderFilter{Status: status, PerPage: 20})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return invalidStatusReply()
		}
		b.logger.ErrorContext(ctx, "list orders failed", slog.String("error", err.Error()))
		return "Something went wrong, try again later."
	}

	if len(orders) == 0 {
		return "No orders."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Orders (%d total):\n", total)
	for _, o := range orders {
		fmt.Fprintf(&sb, "%s | %s | %s | %s\n",
			o.ID, domain.StatusLabel(o.Status), o.CustomerName, o.TotalPrice.StringFixed(2))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (b *Bot) cmdOrdersStatus(ctx context.Context, args []string) string {
	switch len(args) {
	case 0:
		return b.cmdOrders(ctx, nil)
	case 1:
		status := strings.ToLower(args[0])
		if !domain.IsValidStatus(status) {
			return invalidStatusReply()
		}
		return b.cmdOrders(ctx, &status)
	default:
		return usageStatus
	}
}

func (b *Bot) cmdSetStatus(ctx context.Context, args []string) string {
	if len(args) != 2 {
		return usageSetStatus
	}

	orderID, status := args[0], strings.ToLower(args[1])

	order, err := b.orders.SetStatus(ctx, orderID, status)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return replyNotFound
		case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrConflict):
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr.Message
			}
			return invalidStatusReply()
		default:
			b.logger.ErrorContext(ctx, "set status failed",
				slog.String("order_id", orderID),
				slog.String("error", err.Error()),
			)
			return "Something went wrong, try again later."
		}
	}

	return fmt.Sprintf("Order %s is now %s.", order.ID, domain.StatusLabel(order.Status))
}

func (b *Bot) cmdDailyReport(ctx context.Context, args []string) string {
	if len(args) > 1 {
		return "Usage: /daily_report [YYYY-MM-DD]"
	}

	day := b.now().UTC()
	if len(args) == 1 {
		parsed, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return "Usage: /daily_report [YYYY-MM-DD]"
		}
		day = parsed
	}

	report, err := b.orders.Report(ctx, day)
	if err != nil {
		b.logger.ErrorContext(ctx, "daily report failed", slog.String("error", err.Error()))
		return "Something went wrong, try again later."
	}

	if len(report.Orders) == 0 {
		return fmt.Sprintf("No orders on %s.", report.Day.Format("2006-01-02"))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Report for %s: %d orders\n", report.Day.Format("2006-01-02"), len(report.Orders))
	for _, o := range report.Orders {
		fmt.Fprintf(&sb, "%s | %s | %s\n", o.ID, domain.StatusLabel(o.Status), o.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(&sb, "Total: %s", report.TotalPrice.StringFixed(2))
	return sb.String()
}

func invalidStatusReply() string {
	return "Unknown status. Valid statuses: " + strings.Join(domain.ValidStatuses(), ", ")
}
