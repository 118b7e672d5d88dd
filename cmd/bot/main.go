package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/bot"
	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
	"github.com/nekogravitycat/pitch-booking-backend/internal/notify"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/mq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := bot.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load bot config")
	}

	l := logger.Init(cfg.AppEnv == "prod")
	ctx = l.WithContext(ctx)

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect telegram bot api")
	}
	api.Debug = cfg.Debug
	l.Info().Str("bot", api.Self.UserName).Msg("bot authorized")

	b := bot.New(api, notify.NewTelegramNotifierWithAPI(api), cfg.WebAppURL, cfg.AdminChatID)

	if cfg.RabbitURL != "" {
		go consumeEvents(ctx, b, cfg)
	} else {
		l.Warn().Msg("RABBIT_URL not set, booking notifications disabled")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	l.Info().Msg("bot started")
	b.Poll(ctx, updates)

	api.StopReceivingUpdates()
	l.Info().Msg("bot stopped")
}

// consumeEvents keeps a consumer connected until ctx is cancelled.
func consumeEvents(ctx context.Context, b *bot.Bot, cfg bot.Config) {
	keys := []string{events.BookingCreated, events.BookingConfirmed, events.BookingCancelled}

	for ctx.Err() == nil {
		cons, err := mq.NewConsumer(cfg.RabbitURL, cfg.BookingExchange, cfg.BookingQueue, keys)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("rabbitmq connect failed, retry in 2s")
			sleep(ctx, 2*time.Second)
			continue
		}

		deliveries, err := cons.Deliveries(ctx)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("rabbitmq consume failed, retry in 2s")
			_ = cons.Close()
			sleep(ctx, 2*time.Second)
			continue
		}

		log.Ctx(ctx).Info().Str("queue", cfg.BookingQueue).Msg("consuming booking events")
		b.Consume(ctx, deliveries)
		_ = cons.Close()
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
