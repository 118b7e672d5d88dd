package http

import (
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
)

type FieldResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Surface     string    `json:"surface"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewFieldResponse(f *field.Field) FieldResponse {
	return FieldResponse{
		ID:          f.ID,
		Name:        f.Name,
		Surface:     f.Surface,
		Description: f.Description,
		Order:       f.Order,
		Active:      f.Active,
		CreatedAt:   f.CreatedAt,
	}
}

// FieldTag is the compact form embedded in other resources.
type FieldTag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Surface     string `json:"surface"`
	Description string `json:"description"`
}

func NewFieldTag(f *field.Field) FieldTag {
	return FieldTag{ID: f.ID, Name: f.Name, Surface: f.Surface, Description: f.Description}
}

type CreateFieldRequest struct {
	ID          string `json:"id" binding:"required,max=64"`
	Name        string `json:"name" binding:"required"`
	Surface     string `json:"surface"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Active      *bool  `json:"active"`
}

type UpdateFieldRequest struct {
	Name        *string `json:"name"`
	Surface     *string `json:"surface"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	Active      *bool   `json:"active"`
}
