package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateAccessToken("admin", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = NewJWTManager("other-secret", time.Hour).ParseAndValidate(token)
	assert.Error(t, err, "Token signed with another secret must be rejected")

	expired, err := NewJWTManager("test-secret", -time.Minute).GenerateAccessToken("admin", RoleAdmin)
	require.NoError(t, err)
	_, err = m.ParseAndValidate(expired)
	assert.Error(t, err, "Expired token must be rejected")

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username:         "admin",
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.ParseAndValidate(foreign)
	assert.Error(t, err, "Token without our issuer must be rejected")
}

func TestAdminAuthenticator(t *testing.T) {
	a, err := NewAdminAuthenticator("admin", "s3cret", NewBcryptPasswordHasherWithCost(4))
	require.NoError(t, err)

	role, err := a.Authenticate("admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = a.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Authenticate("root", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = NewAdminAuthenticator("admin", "", NewBcryptPasswordHasherWithCost(4))
	assert.Error(t, err)
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasherWithCost(4)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.Error(t, h.Compare(hash, "other"))

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.Error(t, err)

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordHasherWithCost(0).cost)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("test-secret", time.Hour)

	r := gin.New()
	r.GET("/admin", AuthRequired(m), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, GetUsername(c))
	})

	adminToken, _ := m.GenerateAccessToken("admin", RoleAdmin)
	viewerToken, _ := m.GenerateAccessToken("viewer", "viewer")

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantCode int
	}{
		{"No credentials", "", "", http.StatusUnauthorized},
		{"Malformed header", "Token " + adminToken, "", http.StatusUnauthorized},
		{"Garbage token", "Bearer abc.def.ghi", "", http.StatusUnauthorized},
		{"Bearer admin", "Bearer " + adminToken, "", http.StatusOK},
		{"Cookie admin", "", adminToken, http.StatusOK},
		{"Wrong role", "Bearer " + viewerToken, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}
