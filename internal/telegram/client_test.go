package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{Token: "test-token", BaseURL: srv.URL})
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	err := client.SendMessage(context.Background(), 42, "order received")
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, float64(42), gotPayload["chat_id"])
	assert.Equal(t, "order received", gotPayload["text"])
}

func TestSendPhoto(t *testing.T) {
	var gotPayload map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	err := client.SendPhoto(context.Background(), 42, "https://cdn.example.com/roses.jpg", "Rose Bouquet")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/roses.jpg", gotPayload["photo"])
	assert.Equal(t, "Rose Bouquet", gotPayload["caption"])
}

func TestGetUpdates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":100,"message":{"message_id":1,"from":{"id":7,"username":"anna"},"chat":{"id":7},"text":"/orders"}}
		]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 99, 30)
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, int64(100), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "/orders", updates[0].Message.Text)
	assert.Equal(t, int64(7), updates[0].Message.Chat.ID)
	assert.Equal(t, "anna", updates[0].Message.From.Username)
}

func TestConfiguredTimeoutOutlastsSlowResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	t.Cleanup(srv.Close)

	// A deadline shorter than the server hold fails the poll.
	short := New(Config{Token: "test-token", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := short.GetUpdates(context.Background(), 0, 0)
	require.Error(t, err)

	// A deadline longer than the hold succeeds, which is why the bot's
	// client is configured to outlast the long-poll window.
	patient := New(Config{Token: "test-token", BaseURL: srv.URL, Timeout: 2 * time.Second})
	updates, err := patient.GetUpdates(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := client.SendMessage(context.Background(), 1, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
