// Package reminder sends a Telegram reminder shortly before a confirmed
// booking starts.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	"github.com/nekogravitycat/pitch-booking-backend/internal/notify"
	"github.com/nekogravitycat/pitch-booking-backend/internal/timeslot"
)

const (
	DefaultInterval = time.Minute
	DefaultWindow   = 90 * time.Minute
)

// Store is the part of the booking repository the sweeper needs.
type Store interface {
	ListReminderCandidates(ctx context.Context, dates []string) ([]*booking.Booking, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// Sweeper finds confirmed bookings that start within the window and reminds
// their Telegram users once.
type Sweeper struct {
	store    Store
	notifier notify.Notifier
	clock    booking.Clock
	loc      *time.Location
	window   time.Duration
}

func NewSweeper(store Store, notifier notify.Notifier, clock booking.Clock, loc *time.Location, window time.Duration) *Sweeper {
	if clock == nil {
		clock = booking.RealClock{}
	}
	if loc == nil {
		loc = time.UTC
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Sweeper{store: store, notifier: notifier, clock: clock, loc: loc, window: window}
}

// Start runs RunOnce on every tick until ctx is cancelled. Ticks are handled
// by a single goroutine, so sweeps never overlap.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
					log.Ctx(ctx).Error().Err(err).Msg("reminder sweep failed")
				}
			}
		}
	}()
}

// RunOnce performs a single sweep and returns the number of reminders sent.
// A failed send leaves the flag unset so the next sweep retries it.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.clock.Now().In(s.loc)
	today := now.Format(timeslot.DateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(timeslot.DateLayout)

	candidates, err := s.store.ListReminderCandidates(ctx, []string{today, tomorrow})
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, b := range candidates {
		if b.TelegramUserID == nil {
			continue
		}
		startAt, err := timeslot.At(b.Date, b.StartTime, s.loc)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("booking_id", b.ID).Msg("skip reminder: bad start time")
			continue
		}
		until := startAt.Sub(now)
		if until <= 0 || until > s.window {
			continue
		}

		logger := log.Ctx(ctx).With().Str("booking_id", b.ID).Int64("chat_id", *b.TelegramUserID).Logger()
		if err := s.notifier.Notify(ctx, *b.TelegramUserID, Message(b, until)); err != nil {
			logger.Warn().Err(err).Msg("send reminder failed")
			continue
		}
		if err := s.store.MarkReminderSent(ctx, b.ID); err != nil {
			logger.Error().Err(err).Msg("mark reminder sent failed")
			continue
		}
		logger.Info().Msg("reminder sent")
		sent++
	}
	return sent, nil
}

// Message renders the reminder text.
func Message(b *booking.Booking, until time.Duration) string {
	minutes := int(until.Round(time.Minute) / time.Minute)
	return fmt.Sprintf(
		"⏰ Eslatma: bron qilingan o'yiningiz %d daqiqadan so'ng boshlanadi.\n\n🏟 %s\n📅 %s\n🕐 %s – %s",
		minutes, b.FieldName, b.Date, b.StartTime, b.EndTime,
	)
}
