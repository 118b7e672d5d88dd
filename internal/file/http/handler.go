package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/file"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

// ServeFile serves the file content by ID
func (h *Handler) ServeFile(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	stream, fileInfo, err := h.fileService.Download(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", fileInfo.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.Filename+"\"")
	c.Header("Cache-Control", "public, max-age=86400")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Str("file_id", uri.ID).Msg("stream file failed")
	}
}

// ServeThumbnail serves the thumbnail image by file ID
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	stream, fileInfo, err := h.fileService.DownloadThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	// Thumbnails are always JPEG
	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.Filename+"_thumb.jpg\"")
	c.Header("Cache-Control", "public, max-age=86400")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Str("file_id", uri.ID).Msg("stream thumbnail failed")
	}
}

// ListFieldPhotos returns the photos of a field in upload order.
func (h *Handler) ListFieldPhotos(c *gin.Context) {
	var uri request.BySlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	files, err := h.fileService.ListByField(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PhotoResponse, len(files))
	for i, f := range files {
		items[i] = NewPhotoResponse(f)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) UploadFieldPhoto(c *gin.Context) {
	var uri request.BySlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}
	h.HandleFileUpload(c, uri.ID, FileUploadConfig{})
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
