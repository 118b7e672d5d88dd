package api

import "time"

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminResponse describes the signed-in principal.
type AdminResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// LoginResponse is the response for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Admin       AdminResponse `json:"admin"`
}

// MeResponse is the response for GET /v1/auth/me.
type MeResponse struct {
	Admin AdminResponse `json:"admin"`
}
