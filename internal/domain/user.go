package domain

import "time"

// User represents a registered customer.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	TelegramChatID int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasTelegram reports whether the user has linked a Telegram chat.
func (u *User) HasTelegram() bool {
	return u.TelegramChatID != 0
}
