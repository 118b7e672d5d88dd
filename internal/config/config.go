package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	DBMaxConns        int
	DBAutoMigrate     bool
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int
	SecureCookie      bool

	AdminUsername string
	AdminPassword string

	Location           *time.Location
	BookingLeadTime    time.Duration
	BookingHorizonDays int
	SlotMinutes        int

	ReminderInterval time.Duration
	ReminderWindow   time.Duration

	BotToken        string
	RabbitURL       string
	BookingExchange string

	StorageDir string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	// Database DSN is required
	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 0); err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	if cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", true); err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}

	// Bcrypt cost for password hashing (default: 12)
	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	// Cookies are only marked Secure in production unless overridden.
	if cfg.SecureCookie, err = getEnvAsBool("SECURE_COOKIE", cfg.IsProduction); err != nil {
		return nil, fmt.Errorf("invalid SECURE_COOKIE: %w", err)
	}

	cfg.AdminUsername = getEnv("ADMIN_USERNAME", "admin")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	tz := getEnv("TIMEZONE", "Asia/Tashkent")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	if cfg.BookingLeadTime, err = getEnvAsDuration("BOOKING_LEAD_TIME", 30*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid BOOKING_LEAD_TIME: %w", err)
	}
	if cfg.BookingHorizonDays, err = getEnvAsInt("BOOKING_HORIZON_DAYS", 30); err != nil {
		return nil, fmt.Errorf("invalid BOOKING_HORIZON_DAYS: %w", err)
	}
	if cfg.SlotMinutes, err = getEnvAsInt("AVAILABILITY_SLOT_MINUTES", 60); err != nil {
		return nil, fmt.Errorf("invalid AVAILABILITY_SLOT_MINUTES: %w", err)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("AVAILABILITY_SLOT_MINUTES must be positive")
	}

	if cfg.ReminderInterval, err = getEnvAsDuration("REMINDER_INTERVAL", time.Minute); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL: %w", err)
	}
	if cfg.ReminderWindow, err = getEnvAsDuration("REMINDER_WINDOW", 90*time.Minute); err != nil {
		return nil, fmt.Errorf("invalid REMINDER_WINDOW: %w", err)
	}

	// Optional integrations. Empty disables them.
	cfg.BotToken = getEnv("BOT_TOKEN", "")
	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.BookingExchange = getEnv("BOOKING_EXCHANGE", "booking.exchange")

	cfg.StorageDir = getEnv("STORAGE_DIR", "./uploads")

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		// Return 0 and a wrapped error to provide context
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid bool: %w", key, valStr, err)
	}
	return val, nil
}

// getEnvAsDuration parses values like "15m" or "24h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}
