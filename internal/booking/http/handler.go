package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// Availability returns the slot grid of every active field for a date.
func (h *Handler) Availability(c *gin.Context) {
	var query AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
		return
	}

	a, err := h.service.Availability(c.Request.Context(), query.Date, query.FieldID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

// Create submits a booking request from a customer. It starts as pending.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		FieldID:          body.FieldID,
		Date:             body.Date,
		StartTime:        body.StartTime,
		EndTime:          body.EndTime,
		CustomerName:     body.CustomerName,
		CustomerPhone:    body.CustomerPhone,
		TeamName:         body.TeamName,
		Note:             body.Note,
		TelegramUserID:   body.TelegramUserID,
		TelegramUsername: body.TelegramUsername,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCreatedBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var query ListBookingsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	query.Normalize()

	ctx := c.Request.Context()
	bookings, total, err := h.service.List(ctx, booking.Filter{
		Date:     query.Date,
		FieldID:  query.FieldID,
		Status:   booking.Status(query.Status),
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	stats, err := h.service.Stats(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, ListBookingsResponse{
		PageResponse: response.NewPageResponse(items, query.ListParams, total),
		Stats:        NewStatsResponse(stats),
	})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStatsResponse(stats))
}

func (h *Handler) AdminCreate(c *gin.Context) {
	var body AdminCreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	req := booking.AdminCreateRequest{
		FieldID:       body.FieldID,
		Date:          body.Date,
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
		CustomerName:  body.CustomerName,
		CustomerPhone: body.CustomerPhone,
		TeamName:      body.TeamName,
		Note:          body.Note,
		Price:         body.Price,
	}
	if body.Status != nil {
		st := booking.Status(*body.Status)
		req.Status = &st
	}

	b, err := h.service.AdminCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// Block closes a time range on a field.
func (h *Handler) Block(c *gin.Context) {
	var body BlockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.Block(c.Request.Context(), booking.BlockRequest{
		FieldID:   body.FieldID,
		Date:      body.Date,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Reason:    body.Reason,
		Note:      body.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	req := booking.UpdateRequest{
		FieldID:   body.FieldID,
		Date:      body.Date,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Note:      body.Note,
		Price:     body.Price,
	}
	if body.Status != nil {
		st := booking.Status(*body.Status)
		req.Status = &st
	}

	b, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
