// Package bot implements the Telegram chat bot: the /start, /admin and /help
// commands, and customer and staff notifications driven by booking events.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
	"github.com/nekogravitycat/pitch-booking-backend/internal/notify"
)

// Sender is implemented by *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// DefaultRetryDelay is how long Consume waits before requeueing a delivery
// whose send failed for a transient reason.
const DefaultRetryDelay = 5 * time.Second

type Bot struct {
	sender      Sender
	notifier    notify.Notifier
	webAppURL   string
	adminChatID int64
	retryDelay  time.Duration
}

func New(sender Sender, notifier notify.Notifier, webAppURL string, adminChatID int64) *Bot {
	return &Bot{
		sender:      sender,
		notifier:    notifier,
		webAppURL:   webAppURL,
		adminChatID: adminChatID,
		retryDelay:  DefaultRetryDelay,
	}
}

// Poll handles updates until ctx is cancelled or the channel closes.
func (b *Bot) Poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := b.HandleUpdate(ctx, u); err != nil {
				log.Ctx(ctx).Warn().Err(err).Int("update_id", u.UpdateID).Msg("handle update failed")
			}
		}
	}
}

// HandleUpdate answers bot commands. Other messages are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) error {
	if u.Message == nil || !u.Message.IsCommand() {
		return nil
	}
	chatID := u.Message.Chat.ID

	var msg tgbotapi.MessageConfig
	switch u.Message.Command() {
	case "start":
		msg = tgbotapi.NewMessage(chatID, startText)
		msg.ReplyMarkup = linkKeyboard(startButton, b.webAppURL)
	case "admin":
		msg = tgbotapi.NewMessage(chatID, adminText)
		msg.ReplyMarkup = linkKeyboard(adminButton, AdminLoginURL(b.webAppURL))
	case "help":
		msg = tgbotapi.NewMessage(chatID, helpText)
	default:
		msg = tgbotapi.NewMessage(chatID, unknownText)
	}

	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("reply to /%s: %w", u.Message.Command(), err)
	}
	return nil
}

func linkKeyboard(text, url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(text, url)),
	)
}

// ErrMalformedEvent marks a message body that can never be processed.
var ErrMalformedEvent = errors.New("malformed booking event")

// HandleEvent routes one booking event. New requests go to the admin chat,
// status changes go to the customer when their Telegram id is known.
func (b *Bot) HandleEvent(ctx context.Context, key string, body []byte) error {
	var ev events.BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch key {
	case events.BookingCreated:
		if b.adminChatID == 0 {
			return nil
		}
		return b.notifier.Notify(ctx, b.adminChatID, NewBookingText(ev))
	case events.BookingConfirmed:
		if ev.TelegramUserID == nil {
			return nil
		}
		return b.notifier.Notify(ctx, *ev.TelegramUserID, ConfirmedText(ev))
	case events.BookingCancelled:
		if ev.TelegramUserID == nil {
			return nil
		}
		return b.notifier.Notify(ctx, *ev.TelegramUserID, CancelledText(ev))
	default:
		log.Ctx(ctx).Debug().Str("key", key).Msg("skip unknown routing key")
		return nil
	}
}

// Consume acknowledges handled deliveries. Malformed bodies and sends that
// Telegram rejects for good are dropped. Other failures are requeued after a
// delay.
func (b *Bot) Consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			err := b.HandleEvent(ctx, d.RoutingKey, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, ErrMalformedEvent) || isPermanent(err):
				log.Ctx(ctx).Error().Err(err).Str("key", d.RoutingKey).Msg("drop booking event")
				_ = d.Nack(false, false)
			default:
				delay := b.retryAfter(err)
				log.Ctx(ctx).Warn().Err(err).Str("key", d.RoutingKey).Dur("delay", delay).Msg("handle booking event failed, requeue")
				select {
				case <-ctx.Done():
				case <-time.After(delay):
				}
				_ = d.Nack(false, true)
			}
		}
	}
}

// isPermanent reports a Telegram 4xx other than 429, such as a chat that
// blocked the bot or does not exist. Retrying those never succeeds.
func isPermanent(err error) bool {
	tgErr, ok := telegramError(err)
	if !ok {
		return false
	}
	return tgErr.Code >= http.StatusBadRequest &&
		tgErr.Code < http.StatusInternalServerError &&
		tgErr.Code != http.StatusTooManyRequests
}

// retryAfter honours the flood wait Telegram sends with a 429.
func (b *Bot) retryAfter(err error) time.Duration {
	if tgErr, ok := telegramError(err); ok && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	return b.retryDelay
}

// telegramError unwraps an API error. The client returns *tgbotapi.Error but
// the type also implements error by value.
func telegramError(err error) (tgbotapi.Error, bool) {
	var ptr *tgbotapi.Error
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	var val tgbotapi.Error
	if errors.As(err, &val) {
		return val, true
	}
	return tgbotapi.Error{}, false
}
