package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkova/flowerdelivery/internal/domain"
	apperrors "github.com/avolkova/flowerdelivery/pkg/errors"
	"github.com/avolkova/flowerdelivery/pkg/logger"
)

// --- Fakes ---

type sentMessage struct {
	chatID   int64
	text     string
	photoURL string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) SendPhoto(_ context.Context, chatID int64, photoURL, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: caption, photoURL: photoURL})
	return nil
}

func (f *fakeMessenger) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type stubUserRepo struct {
	users map[string]*domain.User
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NotFound("user", id)
}

func (s *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user", username)
}

func (s *stubUserRepo) SetTelegramChatID(_ context.Context, _ string, _ int64) error {
	return nil
}

// --- Helpers ---

const adminChat = int64(1000)

func sampleOrder() *domain.Order {
	return &domain.Order{
		ID:            "order-1",
		Status:        domain.OrderStatusPending,
		CustomerName:  "Anna Petrova",
		Phone:         "+79001234567",
		DeliveryDate:  time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
		DeliveryTime:  "14:00",
		DeliveryPlace: "Lenina 10",
		TotalPrice:    decimal.RequireFromString("3000.00"),
		Items: []domain.OrderItem{
			{ProductName: "Rose Bouquet", Price: decimal.RequireFromString("1500.00"), Quantity: 2, ImageURL: "https://cdn.example.com/roses.jpg"},
		},
	}
}

func newDispatcher(m Messenger, users *stubUserRepo) *Dispatcher {
	return New(m, users, adminChat, logger.New("test", "error"))
}

// --- Tests ---

func TestOrderCreated_NotifiesAdminWithPhoto(t *testing.T) {
	m := &fakeMessenger{}
	d := newDispatcher(m, &stubUserRepo{})

	d.OrderCreated(context.Background(), sampleOrder())
	d.Wait()

	msgs := m.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, adminChat, msgs[0].chatID)
	assert.Equal(t, "https://cdn.example.com/roses.jpg", msgs[0].photoURL)
	assert.Contains(t, msgs[0].text, "order-1")
	assert.Contains(t, msgs[0].text, "Rose Bouquet")
	assert.Contains(t, msgs[0].text, "3000.00")
}

func TestOrderCreated_OnlyFirstLineItemImageIsUsed(t *testing.T) {
	m := &fakeMessenger{}
	d := newDispatcher(m, &stubUserRepo{})

	o := sampleOrder()
	o.Items = []domain.OrderItem{
		{ProductName: "Tulip Mix", Price: decimal.RequireFromString("800.00"), Quantity: 1},
		{ProductName: "Rose Bouquet", Price: decimal.RequireFromString("1500.00"), Quantity: 1, ImageURL: "https://cdn.example.com/roses.jpg"},
	}
	d.OrderCreated(context.Background(), o)
	d.Wait()

	msgs := m.messages()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].photoURL)
}

func TestOrderCreated_NotifiesLinkedOwner(t *testing.T) {
	m := &fakeMessenger{}
	users := &stubUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Username: "anna", TelegramChatID: 42},
	}}
	d := newDispatcher(m, users)

	o := sampleOrder()
	o.UserID = "user-1"
	d.OrderCreated(context.Background(), o)
	d.Wait()

	msgs := m.messages()
	require.Len(t, msgs, 2)
	chats := []int64{msgs[0].chatID, msgs[1].chatID}
	assert.Contains(t, chats, adminChat)
	assert.Contains(t, chats, int64(42))
}

func TestOrderCreated_UnlinkedOwnerIsSkipped(t *testing.T) {
	m := &fakeMessenger{}
	users := &stubUserRepo{users: map[string]*domain.User{
		"user-1": {ID: "user-1", Username: "anna"},
	}}
	d := newDispatcher(m, users)

	o := sampleOrder()
	o.UserID = "user-1"
	d.OrderCreated(context.Background(), o)
	d.Wait()

	msgs := m.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, adminChat, msgs[0].chatID)
}

func TestOrderStatusChanged_SendsLabels(t *testing.T) {
	m := &fakeMessenger{}
	d := newDispatcher(m, &stubUserRepo{})

	d.OrderStatusChanged(context.Background(), sampleOrder(), domain.OrderStatusPending, domain.OrderStatusAccepted)
	d.Wait()

	msgs := m.messages()
	require.Len(t, msgs, 1)
	assert.Empty(t, msgs[0].photoURL)
	assert.Contains(t, msgs[0].text, "Pending")
	assert.Contains(t, msgs[0].text, "Accepted")
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	m := &fakeMessenger{err: errors.New("network down")}
	d := newDispatcher(m, &stubUserRepo{})

	// Must not panic or block.
	d.OrderCreated(context.Background(), sampleOrder())
	d.Wait()

	assert.Empty(t, m.messages())
}

func TestCanceledCallerContextDoesNotCancelDelivery(t *testing.T) {
	m := &fakeMessenger{}
	d := newDispatcher(m, &stubUserRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.OrderCreated(ctx, sampleOrder())
	d.Wait()

	assert.Len(t, m.messages(), 1)
}
