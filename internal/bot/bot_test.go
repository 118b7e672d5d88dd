package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

type notification struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	got []notification
	err error
}

func (f *fakeNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, notification{chatID, text})
	return nil
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text:     text,
			Chat:     &tgbotapi.Chat{ID: chatID},
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
		},
	}
}

func buttonURL(t *testing.T, msg tgbotapi.MessageConfig) string {
	t.Helper()
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok, "reply markup should be an inline keyboard")
	require.NotEmpty(t, kb.InlineKeyboard)
	require.NotNil(t, kb.InlineKeyboard[0][0].URL)
	return *kb.InlineKeyboard[0][0].URL
}

func TestHandleUpdate_Commands(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, &fakeNotifier{}, "https://chim.example.uz/", 0)
	ctx := context.Background()

	require.NoError(t, b.HandleUpdate(ctx, commandUpdate(42, "/start")))
	require.NoError(t, b.HandleUpdate(ctx, commandUpdate(42, "/admin")))
	require.NoError(t, b.HandleUpdate(ctx, commandUpdate(42, "/help")))
	require.NoError(t, b.HandleUpdate(ctx, commandUpdate(42, "/foo")))
	require.Len(t, sender.sent, 4)

	start := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(42), start.ChatID)
	assert.Contains(t, start.Text, "Chim Bron")
	assert.Equal(t, "https://chim.example.uz/", buttonURL(t, start))

	admin := sender.sent[1].(tgbotapi.MessageConfig)
	assert.Equal(t, "https://chim.example.uz/admin/login", buttonURL(t, admin))

	help := sender.sent[2].(tgbotapi.MessageConfig)
	assert.Contains(t, help.Text, "/admin")

	unknown := sender.sent[3].(tgbotapi.MessageConfig)
	assert.Equal(t, unknownText, unknown.Text)
}

func TestHandleUpdate_IgnoresPlainText(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, &fakeNotifier{}, "https://example.com", 0)

	u := tgbotapi.Update{Message: &tgbotapi.Message{Text: "salom", Chat: &tgbotapi.Chat{ID: 1}}}
	require.NoError(t, b.HandleUpdate(context.Background(), u))
	require.NoError(t, b.HandleUpdate(context.Background(), tgbotapi.Update{}))
	assert.Empty(t, sender.sent)
}

func TestHandleUpdate_SendError(t *testing.T) {
	b := New(&fakeSender{err: errors.New("network down")}, &fakeNotifier{}, "https://example.com", 0)
	assert.Error(t, b.HandleUpdate(context.Background(), commandUpdate(1, "/start")))
}

func eventBody(t *testing.T, ev events.BookingEvent) []byte {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return body
}

func TestHandleEvent(t *testing.T) {
	userID := int64(555)
	ev := events.BookingEvent{
		BookingID: "b1", FieldName: "Maydon 1", Date: "2024-01-01", StartTime: "18:00", EndTime: "19:00",
		CustomerName: "Aziz", CustomerPhone: "+998901234567", Price: 300000,
		TelegramUserID: &userID, TelegramUsername: "aziz", OccurredAt: time.Now(),
	}
	ctx := context.Background()

	t.Run("Created goes to admin chat", func(t *testing.T) {
		n := &fakeNotifier{}
		b := New(&fakeSender{}, n, "", 999)

		require.NoError(t, b.HandleEvent(ctx, events.BookingCreated, eventBody(t, ev)))
		require.Len(t, n.got, 1)
		assert.Equal(t, int64(999), n.got[0].chatID)
		assert.Contains(t, n.got[0].text, "Aziz")
		assert.Contains(t, n.got[0].text, "@aziz")
		assert.Contains(t, n.got[0].text, "300 000")
	})

	t.Run("Created without admin chat is dropped", func(t *testing.T) {
		n := &fakeNotifier{}
		b := New(&fakeSender{}, n, "", 0)

		require.NoError(t, b.HandleEvent(ctx, events.BookingCreated, eventBody(t, ev)))
		assert.Empty(t, n.got)
	})

	t.Run("Confirmed and cancelled go to the customer", func(t *testing.T) {
		n := &fakeNotifier{}
		b := New(&fakeSender{}, n, "", 999)

		require.NoError(t, b.HandleEvent(ctx, events.BookingConfirmed, eventBody(t, ev)))
		require.NoError(t, b.HandleEvent(ctx, events.BookingCancelled, eventBody(t, ev)))
		require.Len(t, n.got, 2)
		assert.Equal(t, userID, n.got[0].chatID)
		assert.Contains(t, n.got[0].text, "tasdiqlandi")
		assert.Contains(t, n.got[1].text, "bekor qilindi")
	})

	t.Run("Customer without Telegram id is skipped", func(t *testing.T) {
		n := &fakeNotifier{}
		b := New(&fakeSender{}, n, "", 999)
		anon := ev
		anon.TelegramUserID = nil

		require.NoError(t, b.HandleEvent(ctx, events.BookingConfirmed, eventBody(t, anon)))
		assert.Empty(t, n.got)
	})

	t.Run("Malformed body", func(t *testing.T) {
		b := New(&fakeSender{}, &fakeNotifier{}, "", 999)
		err := b.HandleEvent(ctx, events.BookingCreated, []byte("{"))
		assert.ErrorIs(t, err, ErrMalformedEvent)
	})

	t.Run("Send failure is returned", func(t *testing.T) {
		b := New(&fakeSender{}, &fakeNotifier{err: errors.New("429")}, "", 999)
		err := b.HandleEvent(ctx, events.BookingCreated, eventBody(t, ev))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMalformedEvent)
	})
}

type ackRecord struct {
	acked   bool
	nacked  bool
	requeue bool
}

type fakeAcknowledger struct {
	records map[uint64]*ackRecord
}

func (a *fakeAcknowledger) record(tag uint64) *ackRecord {
	if a.records == nil {
		a.records = map[uint64]*ackRecord{}
	}
	if a.records[tag] == nil {
		a.records[tag] = &ackRecord{}
	}
	return a.records[tag]
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.record(tag).acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	r := a.record(tag)
	r.nacked = true
	r.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestConsume(t *testing.T) {
	userID := int64(555)
	body := eventBody(t, events.BookingEvent{BookingID: "b1", FieldName: "Maydon 1", TelegramUserID: &userID})

	tests := []struct {
		name        string
		notifyErr   error
		body        []byte
		wantAck     bool
		wantRequeue bool
	}{
		{"Delivered", nil, body, true, false},
		{"Malformed body is dropped", nil, []byte("{"), false, false},
		{"Blocked by user is dropped", fmt.Errorf("send: %w", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}), body, false, false},
		{"Chat not found is dropped", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, body, false, false},
		{"Flood wait is requeued", &tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{}}, body, false, true},
		{"Server error is requeued", &tgbotapi.Error{Code: 502}, body, false, true},
		{"Network error is requeued", errors.New("connection reset"), body, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(&fakeSender{}, &fakeNotifier{err: tt.notifyErr}, "", 0)
			b.retryDelay = time.Millisecond

			ack := &fakeAcknowledger{}
			deliveries := make(chan amqp.Delivery, 1)
			deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: events.BookingConfirmed, Body: tt.body}
			close(deliveries)

			b.Consume(context.Background(), deliveries)

			r := ack.record(1)
			assert.Equal(t, tt.wantAck, r.acked)
			assert.Equal(t, !tt.wantAck, r.nacked)
			assert.Equal(t, tt.wantRequeue, r.requeue)
		})
	}
}

func TestConsume_WaitsBeforeRequeue(t *testing.T) {
	b := New(&fakeSender{}, &fakeNotifier{err: errors.New("timeout")}, "", 0)
	b.retryDelay = 50 * time.Millisecond

	ack := &fakeAcknowledger{}
	userID := int64(1)
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- amqp.Delivery{
		Acknowledger: ack, DeliveryTag: 7, RoutingKey: events.BookingCancelled,
		Body: eventBody(t, events.BookingEvent{TelegramUserID: &userID}),
	}
	close(deliveries)

	start := time.Now()
	b.Consume(context.Background(), deliveries)

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.True(t, ack.record(7).requeue)
}

func TestRetryAfter_UsesFloodWait(t *testing.T) {
	b := New(&fakeSender{}, &fakeNotifier{}, "", 0)
	err := &tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 3}}
	assert.Equal(t, 3*time.Second, b.retryAfter(err))
	assert.Equal(t, DefaultRetryDelay, b.retryAfter(errors.New("other")))
	assert.False(t, isPermanent(err))
	assert.True(t, isPermanent(tgbotapi.Error{Code: 403}))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{200000, "200 000"},
		{1234567, "1 234 567"},
		{-5000, "-5 000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in))
	}
}
