package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/pitch-booking-backend/internal/auth"
	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/pitch-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	fieldHttp "github.com/nekogravitycat/pitch-booking-backend/internal/field/http"
	"github.com/nekogravitycat/pitch-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/pitch-booking-backend/internal/file/http"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
	settingsHttp "github.com/nekogravitycat/pitch-booking-backend/internal/settings/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	SecureCookie bool
	Logger       zerolog.Logger

	FieldService    field.Service
	SettingsService settings.Service
	BookingService  booking.Service
	FileService     file.Service

	JWTManager    *auth.JWTManager
	Authenticator *auth.AdminAuthenticator
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: request-scoped zerolog logger plus one access line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logger.Middleware(cfg.Logger), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	// The admin panel authenticates with a cookie.
	config.AllowCredentials = true
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request carries a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks that the token holder is an admin.
	adminMiddleware := auth.RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	authHandler := NewAuthHandler(cfg.Authenticator, cfg.JWTManager, cfg.SecureCookie)
	fieldHandler := fieldHttp.NewHandler(cfg.FieldService)
	settingsHandler := settingsHttp.NewHandler(cfg.SettingsService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	fileHandler := fileHttp.NewHandler(cfg.FileService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, adminMiddleware, authHandler.Me)

		fieldHttp.RegisterRoutes(v1, fieldHandler, authMiddleware, adminMiddleware)
		settingsHttp.RegisterRoutes(v1, settingsHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware, adminMiddleware)
	}

	return r
}

// allowedOrigins returns the comma separated production origins, or the
// local dev servers outside production.
func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		// cors.New panics on an empty origin list.
		origins = []string{"http://localhost"}
	}
	return origins
}
