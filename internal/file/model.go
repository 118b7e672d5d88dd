package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "file not found")
	ErrFieldNotFound        = apperror.New(http.StatusNotFound, "field not found")
	ErrThumbnailUnavailable = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrFileTooLarge         = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrUnsupportedType      = apperror.New(http.StatusUnsupportedMediaType, "unsupported file type")
)

// File is a photo attached to a field.
type File struct {
	ID            string
	FieldID       string
	Filename      string
	StoragePath   string  // Internal path
	ThumbnailPath *string // Internal path
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
