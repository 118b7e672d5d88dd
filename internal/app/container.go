package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/pitch-booking-backend/internal/api"
	"github.com/nekogravitycat/pitch-booking-backend/internal/auth"
	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	"github.com/nekogravitycat/pitch-booking-backend/internal/file"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	SecureCookie bool
	Logger       zerolog.Logger

	DBPool     *pgxpool.Pool
	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	AdminUsername string
	AdminPassword string

	Booking booking.Config
	Clock   booking.Clock
	// Publisher receives booking events. Nil drops them.
	Publisher events.Publisher
	// Storage holds field photos.
	Storage storage.Storage
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingRepo    booking.Repository
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authenticator, err := auth.NewAdminAuthenticator(cfg.AdminUsername, cfg.AdminPassword, passwordHasher)
	if err != nil {
		return nil, fmt.Errorf("init admin authenticator: %w", err)
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	// Field Module
	fieldRepo := field.NewPgxRepository(cfg.DBPool)
	fieldService := field.NewService(fieldRepo)

	// Settings Module
	settingsRepo := settings.NewPgxRepository(cfg.DBPool)
	settingsService := settings.NewService(settingsRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, fieldService, settingsService, publisher, cfg.Clock, cfg.Booking)

	// File Module
	fileRepo := file.NewRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, fieldService, cfg.Storage)

	// API Router Config
	routerParams := api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		SecureCookie:    cfg.SecureCookie,
		Logger:          cfg.Logger,
		FieldService:    fieldService,
		SettingsService: settingsService,
		BookingService:  bookingService,
		FileService:     fileService,
		JWTManager:      jwtManager,
		Authenticator:   authenticator,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingRepo:    bookingRepo,
		BookingService: bookingService,
	}, nil
}
