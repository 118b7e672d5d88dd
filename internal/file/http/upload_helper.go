package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/pitch-booking-backend/internal/file"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
)

// FileUploadConfig defines the configuration for photo uploads.
type FileUploadConfig struct {
	FormFieldName string   // The name of the form field containing the file (default: "file")
	MaxSizeBytes  int64    // The maximum file size in bytes (0 = file.DefaultMaxSize)
	AllowedTypes  []string // The list of allowed MIME types (empty = file.DefaultAllowedTypes)
}

// HandleFileUpload reads one multipart file and stores it as a photo of fieldID.
func (h *Handler) HandleFileUpload(c *gin.Context, fieldID string, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldName + " is required"})
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), file.UploadInput{
		FileHeader:   fileHeader,
		FieldID:      fieldID,
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoResponse(f))
}
