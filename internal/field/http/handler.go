package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
)

type FieldHandler struct {
	service field.Service
}

func NewHandler(service field.Service) *FieldHandler {
	return &FieldHandler{service: service}
}

// ListActive returns the bookable fields in display order.
func (h *FieldHandler) ListActive(c *gin.Context) {
	fields, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toResponses(fields)})
}

// ListAll returns every field, including deactivated ones.
func (h *FieldHandler) ListAll(c *gin.Context) {
	fields, err := h.service.List(c.Request.Context(), field.Filter{})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": toResponses(fields)})
}

func (h *FieldHandler) Get(c *gin.Context) {
	var uri request.BySlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	f, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFieldResponse(f))
}

func (h *FieldHandler) Create(c *gin.Context) {
	var body CreateFieldRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}

	f, err := h.service.Create(c.Request.Context(), field.CreateFieldRequest{
		ID:          body.ID,
		Name:        body.Name,
		Surface:     body.Surface,
		Description: body.Description,
		Order:       body.Order,
		Active:      active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewFieldResponse(f))
}

func (h *FieldHandler) Update(c *gin.Context) {
	var uri request.BySlugRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid field id"})
		return
	}

	var body UpdateFieldRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	f, err := h.service.Update(c.Request.Context(), uri.ID, field.UpdateFieldRequest{
		Name:        body.Name,
		Surface:     body.Surface,
		Description: body.Description,
		Order:       body.Order,
		Active:      body.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFieldResponse(f))
}

func toResponses(fields []*field.Field) []FieldResponse {
	items := make([]FieldResponse, len(fields))
	for i, f := range fields {
		items[i] = NewFieldResponse(f)
	}
	return items
}
