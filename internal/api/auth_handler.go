package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/auth"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
)

type AuthHandler struct {
	authenticator *auth.AdminAuthenticator
	jwtManager    *auth.JWTManager
	secureCookie  bool
}

func NewAuthHandler(
	authenticator *auth.AdminAuthenticator,
	jwtManager *auth.JWTManager,
	secureCookie bool,
) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		secureCookie:  secureCookie,
	}
}

//
// POST /v1/auth/login
//

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	role, err := h.authenticator.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Ctx(c.Request.Context()).Info().Str("username", req.Username).Msg("admin login rejected")
		response.Error(c, err)
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(req.Username, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	ttl := h.jwtManager.TTL()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(ttl.Seconds()), "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().UTC().Add(ttl),
		Admin:       AdminResponse{Username: req.Username, Role: role},
	})
}

//
// POST /v1/auth/logout
//

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

//
// GET /v1/auth/me
//

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, MeResponse{
		Admin: AdminResponse{Username: auth.GetUsername(c), Role: auth.GetRole(c)},
	})
}
