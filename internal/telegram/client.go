package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkova/flowerdelivery/pkg/httpclient"
)

// DefaultBaseURL is the production Telegram Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Config holds Telegram Bot API client configuration.
type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client is a minimal Telegram Bot API client covering the methods this
// application needs: sending messages and photos, and long-polling updates.
type Client struct {
	http    *httpclient.Client
	baseURL string
	token   string
}

// New creates a Telegram Bot API client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	hc := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	// Notification delivery is single-attempt; failed sends are dropped.
	hc.MaxRetries = 0

	return &Client{
		http:    httpclient.New(hc),
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
	}
}

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming Telegram message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *Peer  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Peer identifies the sender of a message.
type Peer struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Chat identifies the chat a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// apiResponse is the standard Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
}

// SendMessage sends a plain text message to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	return c.call(ctx, "sendMessage", payload, nil)
}

// SendPhoto sends a photo by URL with an optional caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"photo":   photoURL,
	}
	if caption != "" {
		payload["caption"] = caption
	}
	return c.call(ctx, "sendPhoto", payload, nil)
}

// GetUpdates long-polls for updates after the given offset. Timeout is the
// server-side poll duration in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": timeoutSec,
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// call invokes a Bot API method and decodes its result into out, if given.
func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram %s: marshal payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	resp, err := c.http.Post(ctx, url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telegram %s: read response: %w", method, err)
	}

	var api apiResponse
	if err := json.Unmarshal(respBody, &api); err != nil {
		return fmt.Errorf("telegram %s: decode response (status %d): %w", method, resp.StatusCode, err)
	}

	if !api.OK {
		return fmt.Errorf("telegram %s: api error (status %d): %s", method, resp.StatusCode, api.Description)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram %s: unexpected status %d", method, resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(api.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}

	return nil
}
