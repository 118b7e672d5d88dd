package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
)

type SettingsHandler struct {
	service settings.Service
}

func NewHandler(service settings.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// Get returns the current facility settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	st, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSettingsResponse(st))
}

// Update applies a partial update to the settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var body UpdateSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	st, err := h.service.Update(c.Request.Context(), settings.UpdateRequest{
		OpeningTime:        body.OpeningTime,
		ClosingTime:        body.ClosingTime,
		SlotDurations:      body.SlotDurations,
		PricePerHour:       body.PricePerHour,
		PriceEvening:       body.PriceEvening,
		Currency:           body.Currency,
		ContactPhone:       body.ContactPhone,
		ContactTelegram:    body.ContactTelegram,
		LocationAddress:    body.LocationAddress,
		CancellationPolicy: body.CancellationPolicy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSettingsResponse(st))
}
