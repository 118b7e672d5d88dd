// Package events defines the booking notifications exchanged between the API
// server and the chat bot.
package events

import (
	"context"
	"time"
)

const (
	DefaultExchange = "booking.exchange"

	BookingCreated   = "booking.created"
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is the message body for every booking routing key.
type BookingEvent struct {
	BookingID        string    `json:"booking_id"`
	FieldID          string    `json:"field_id"`
	FieldName        string    `json:"field_name"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	Status           string    `json:"status"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	TeamName         string    `json:"team_name,omitempty"`
	Price            int64     `json:"price"`
	TelegramUserID   *int64    `json:"telegram_user_id,omitempty"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher publishes a JSON encoded payload under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, any) error { return nil }
