package bot

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/avolkova/flowerdelivery/internal/domain"
	"github.com/avolkova/flowerdelivery/internal/repository"
	"github.com/avolkova/flowerdelivery/internal/service"
	"github.com/avolkova/flowerdelivery/internal/telegram"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
	"github.com/avolkova/flowerdelivery/pkg/logger"
)

const adminChat = int64(1000)

// --- Mocks ---

type mockOrderCommands struct {
	mock.Mock
}

func (m *mockOrderCommands) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderCommands) SetStatus(ctx context.Context, id string, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderCommands) Report(ctx context.Context, day time.Time) (*service.DailyReport, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DailyReport), args.Error(1)
}

type mockUserCommands struct {
	mock.Mock
}

func (m *mockUserCommands) LinkTelegram(ctx context.Context, username string, chatID int64) (*domain.User, error) {
	args := m.Called(ctx, username, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Helpers ---

func newTestBot(orders *mockOrderCommands, users *mockUserCommands) *Bot {
	return New(nil, orders, users, adminChat, logger.New("test", "error"))
}

func adminMsg(text string) *telegram.Message {
	return &telegram.Message{Chat: telegram.Chat{ID: adminChat}, Text: text}
}

func customerMsg(text string) *telegram.Message {
	return &telegram.Message{Chat: telegram.Chat{ID: 42}, Text: text}
}

// --- Tests ---

func TestHelpAndStart(t *testing.T) {
	b := newTestBot(new(mockOrderCommands), new(mockUserCommands))
	ctx := context.Background()

	for _, cmd := range []string{"/start", "/help", "/unknown_command"} {
		reply := b.HandleMessage(ctx, customerMsg(cmd))
		assert.Contains(t, reply, "/orders", cmd)
		assert.Contains(t, reply, "/link", cmd)
	}
}

func TestNonCommandTextIsIgnored(t *testing.T) {
	b := newTestBot(new(mockOrderCommands), new(mockUserCommands))

	reply := b.HandleMessage(context.Background(), customerMsg("hello there"))
	assert.Empty(t, reply)
}

func TestBareKeywordWithoutSlash(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	pending := domain.OrderStatusPending
	orders.On("ListOrders", ctx, repository.OrderFilter{Status: &pending, PerPage: 20}).
		Return([]domain.Order{}, 0, nil)

	reply := b.HandleMessage(ctx, adminMsg("orders"))
	assert.Equal(t, "No orders.", reply)

	// Keywords are case-sensitive.
	assert.Empty(t, b.HandleMessage(ctx, adminMsg("Orders")))
}

func TestStaffCommandsRejectNonAdminChat(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	for _, cmd := range []string{"/orders", "/orders_status pending", "/set_status o1 accepted", "/daily_report"} {
		reply := b.HandleMessage(ctx, customerMsg(cmd))
		assert.Equal(t, replyNoAccess, reply, cmd)
	}
	orders.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkWorksFromAnyChat(t *testing.T) {
	users := new(mockUserCommands)
	b := newTestBot(new(mockOrderCommands), users)
	ctx := context.Background()

	users.On("LinkTelegram", ctx, "anna", int64(42)).
		Return(&domain.User{ID: "user-1", Username: "anna", TelegramChatID: 42}, nil)

	reply := b.HandleMessage(ctx, customerMsg("/link anna"))
	assert.Contains(t, reply, "anna")
	users.AssertExpectations(t)
}

func TestLinkUnknownUsername(t *testing.T) {
	users := new(mockUserCommands)
	b := newTestBot(new(mockOrderCommands), users)
	ctx := context.Background()

	users.On("LinkTelegram", ctx, "nobody", int64(42)).
		Return(nil, apperrors.NotFound("user", "nobody"))

	reply := b.HandleMessage(ctx, customerMsg("/link nobody"))
	assert.Contains(t, reply, "nobody")
	assert.Contains(t, reply, "No account")
}

func TestLinkUsage(t *testing.T) {
	b := newTestBot(new(mockOrderCommands), new(mockUserCommands))

	reply := b.HandleMessage(context.Background(), customerMsg("/link"))
	assert.Equal(t, usageLink, reply)
}

func TestOrdersListsPending(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	pending := domain.OrderStatusPending
	orders.On("ListOrders", ctx, repository.OrderFilter{Status: &pending, PerPage: 20}).
		Return([]domain.Order{
			{ID: "o1", Status: domain.OrderStatusPending, CustomerName: "Anna", TotalPrice: decimal.RequireFromString("1500.00")},
		}, 1, nil)

	reply := b.HandleMessage(ctx, adminMsg("/orders"))
	assert.Contains(t, reply, "o1")
	assert.Contains(t, reply, "Pending")
	assert.Contains(t, reply, "1500.00")
	orders.AssertExpectations(t)
}

func TestOrdersEmpty(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	orders.On("ListOrders", ctx, mock.Anything).Return([]domain.Order{}, 0, nil)

	reply := b.HandleMessage(ctx, adminMsg("/orders"))
	assert.Equal(t, "No orders.", reply)
}

func TestOrdersStatusListsAllWithoutArgument(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	orders.On("ListOrders", ctx, repository.OrderFilter{PerPage: 20}).
		Return([]domain.Order{
			{ID: "o1", Status: domain.OrderStatusCompleted, CustomerName: "Anna", TotalPrice: decimal.RequireFromString("1500.00")},
		}, 1, nil)

	reply := b.HandleMessage(ctx, adminMsg("/orders_status"))
	assert.Contains(t, reply, "Completed")
	orders.AssertExpectations(t)
}

func TestOrdersStatusValidatesStatus(t *testing.T) {
	b := newTestBot(new(mockOrderCommands), new(mockUserCommands))
	ctx := context.Background()

	reply := b.HandleMessage(ctx, adminMsg("/orders_status shipped"))
	assert.Contains(t, reply, "Unknown status")

	reply = b.HandleMessage(ctx, adminMsg("/orders_status pending extra"))
	assert.Equal(t, usageStatus, reply)
}

func TestSetStatusSuccess(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	orders.On("SetStatus", ctx, "o1", domain.OrderStatusAccepted).
		Return(&domain.Order{ID: "o1", Status: domain.OrderStatusAccepted}, nil)

	reply := b.HandleMessage(ctx, adminMsg("/set_status o1 accepted"))
	assert.Contains(t, reply, "o1")
	assert.Contains(t, reply, "Accepted")
}

func TestSetStatusNotFound(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	orders.On("SetStatus", ctx, "ghost", domain.OrderStatusAccepted).
		Return(nil, apperrors.NotFound("order", "ghost"))

	reply := b.HandleMessage(ctx, adminMsg("/set_status ghost accepted"))
	assert.Equal(t, replyNotFound, reply)
}

func TestSetStatusInvalidTransition(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	orders.On("SetStatus", ctx, "o1", domain.OrderStatusCompleted).
		Return(nil, apperrors.InvalidInput(`cannot transition from "pending" to "completed"`))

	reply := b.HandleMessage(ctx, adminMsg("/set_status o1 completed"))
	assert.Contains(t, reply, "cannot transition")
}

func TestSetStatusUsage(t *testing.T) {
	b := newTestBot(new(mockOrderCommands), new(mockUserCommands))

	reply := b.HandleMessage(context.Background(), adminMsg("/set_status o1"))
	assert.Equal(t, usageSetStatus, reply)
}

func TestDailyReport(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	orders.On("Report", ctx, day).Return(&service.DailyReport{
		Day: day,
		Orders: []domain.Order{
			{ID: "o1", Status: domain.OrderStatusCompleted, TotalPrice: decimal.RequireFromString("1000.00")},
		},
		TotalPrice: decimal.RequireFromString("1000.00"),
	}, nil)

	reply := b.HandleMessage(ctx, adminMsg("/daily_report 2025-06-15"))
	assert.Contains(t, reply, "2025-06-15")
	assert.Contains(t, reply, "Total: 1000.00")
}

func TestDailyReportBadDate(t *testing.T) {
	b := newTestBot(new(mockOrderCommands), new(mockUserCommands))

	reply := b.HandleMessage(context.Background(), adminMsg("/daily_report 15.06.2025"))
	assert.Contains(t, reply, "Usage")
}

func TestCommandWithBotNameSuffix(t *testing.T) {
	orders := new(mockOrderCommands)
	b := newTestBot(orders, new(mockUserCommands))
	ctx := context.Background()

	orders.On("ListOrders", ctx, mock.Anything).Return([]domain.Order{}, 0, nil)

	reply := b.HandleMessage(ctx, adminMsg("/orders@FlowerShopBot"))
	assert.Equal(t, "No orders.", reply)
}

// --- Polling loop ---

type fakeTransport struct {
	updates    [][]telegram.Update
	sent       []string
	calls      int
	timeoutSec int
	cancel     context.CancelFunc
}

func (f *fakeTransport) SendMessage(_ context.Context, _ int64, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeTransport) GetUpdates(_ context.Context, offset int64, timeoutSec int) ([]telegram.Update, error) {
	f.timeoutSec = timeoutSec
	if f.calls >= len(f.updates) {
		f.cancel()
		return nil, context.Canceled
	}
	batch := f.updates[f.calls]
	f.calls++
	return batch, nil
}

func TestRunProcessesUpdatesAndAdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &fakeTransport{
		cancel: cancel,
		updates: [][]telegram.Update{
			{{UpdateID: 5, Message: &telegram.Message{Chat: telegram.Chat{ID: adminChat}, Text: "/help"}}},
		},
	}

	b := New(transport, new(mockOrderCommands), new(mockUserCommands), adminChat, logger.New("test", "error"))

	err := b.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0], "/orders")
	assert.Equal(t, int(PollTimeout/time.Second), transport.timeoutSec)
}
