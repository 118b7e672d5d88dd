package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/app"
	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	"github.com/nekogravitycat/pitch-booking-backend/internal/config"
	"github.com/nekogravitycat/pitch-booking-backend/internal/db"
	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
	"github.com/nekogravitycat/pitch-booking-backend/internal/notify"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/mq"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/pitch-booking-backend/internal/reminder"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	l := logger.Init(cfg.IsProduction)
	ctx = l.WithContext(ctx)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			l.Fatal().Err(err).Msg("failed to migrate db")
		}
	}

	store, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to init storage")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		defer p.Close()
		publisher = p
	} else {
		l.Warn().Msg("RABBIT_URL not set, booking events are dropped")
	}

	container, err := app.NewContainer(app.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		SecureCookie:  cfg.SecureCookie,
		Logger:        l,
		DBPool:        pool,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTAccessTokenTTL,
		BcryptCost:    cfg.BcryptCost,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		Booking: booking.Config{
			Location:    cfg.Location,
			LeadTime:    cfg.BookingLeadTime,
			HorizonDays: cfg.BookingHorizonDays,
			SlotMinutes: cfg.SlotMinutes,
		},
		Clock:     booking.RealClock{},
		Publisher: publisher,
		Storage:   store,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("failed to build app")
	}

	// Reminders go straight to Telegram when a token is configured.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.BotToken != "" {
		tn, err := notify.NewTelegramNotifier(cfg.BotToken)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to init telegram notifier")
		}
		notifier = tn
	}
	sweeper := reminder.NewSweeper(container.BookingRepo, notifier, booking.RealClock{}, cfg.Location, cfg.ReminderWindow)
	sweeper.Start(ctx, cfg.ReminderInterval)

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		l.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	l.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("server exited gracefully")
}
