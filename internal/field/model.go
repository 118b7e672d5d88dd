package field

import (
	"net/http"
	"regexp"
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "field not found")
	ErrIDExists     = apperror.New(http.StatusConflict, "field id already exists")
	ErrInvalidID    = apperror.New(http.StatusBadRequest, "field id may contain only lowercase letters, digits, '_' and '-'")
	ErrNameRequired = apperror.New(http.StatusBadRequest, "field name is required")
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,63}$`)

// Field is one playable pitch of the facility.
type Field struct {
	ID          string
	Name        string
	Surface     string
	Description string
	Order       int
	Active      bool
	CreatedAt   time.Time
}

// Filter defines parameters for listing fields.
type Filter struct {
	ActiveOnly bool
}
