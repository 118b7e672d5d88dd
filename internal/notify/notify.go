// Package notify delivers plain text messages to customers and staff.
package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Notifier sends a message to a chat. Errors are transient from the caller's
// point of view and may be retried.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier sends messages through the Telegram Bot API.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

func NewTelegramNotifier(token string) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot api: %w", err)
	}
	return &TelegramNotifier{api: api}, nil
}

// NewTelegramNotifierWithAPI reuses an existing bot client.
func NewTelegramNotifierWithAPI(api *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message to %d: %w", chatID, err)
	}
	return nil
}

// LogNotifier writes messages to the log instead of delivering them.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	log.Ctx(ctx).Info().Int64("chat_id", chatID).Str("text", text).Msg("notification")
	return nil
}
