package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/apperror"
)

var ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid username or password")

// AdminAuthenticator checks logins against the single configured admin
// account. The password is kept only as a bcrypt hash.
type AdminAuthenticator struct {
	username string
	hash     string
	hasher   PasswordHasher
}

// NewAdminAuthenticator hashes password once at startup.
func NewAdminAuthenticator(username, password string, hasher PasswordHasher) (*AdminAuthenticator, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("admin username and password are required")
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AdminAuthenticator{username: username, hash: hash, hasher: hasher}, nil
}

// Authenticate returns the role of the account on success.
func (a *AdminAuthenticator) Authenticate(username, password string) (string, error) {
	// The hash is checked even when the username is wrong.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := a.hasher.Compare(a.hash, password)
	if !userOK || passErr != nil {
		return "", ErrInvalidCredentials
	}
	return RoleAdmin, nil
}
