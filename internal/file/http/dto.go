package http

import (
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/file"
)

type PhotoResponse struct {
	ID           string    `json:"id"`
	FieldID      string    `json:"field_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewPhotoResponse(f *file.File) PhotoResponse {
	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}
	return PhotoResponse{
		ID:           f.ID,
		FieldID:      f.FieldID,
		Filename:     f.Filename,
		ContentType:  f.ContentType,
		Size:         f.Size,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
		CreatedAt:    f.CreatedAt,
	}
}
