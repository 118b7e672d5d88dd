package http

import (
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
)

type SettingsResponse struct {
	OpeningTime        string    `json:"opening_time"`
	ClosingTime        string    `json:"closing_time"`
	CrossesMidnight    bool      `json:"crosses_midnight"`
	SlotDurations      []int     `json:"slot_durations"`
	PricePerHour       int64     `json:"price_per_hour"`
	PriceEvening       int64     `json:"price_evening"`
	EveningStartHour   int       `json:"evening_start_hour"`
	Currency           string    `json:"currency"`
	ContactPhone       string    `json:"contact_phone"`
	ContactTelegram    string    `json:"contact_telegram"`
	LocationAddress    string    `json:"location_address"`
	CancellationPolicy string    `json:"cancellation_policy"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewSettingsResponse(s settings.Settings) SettingsResponse {
	durations := s.SlotDurations
	if durations == nil {
		durations = []int{}
	}
	return SettingsResponse{
		OpeningTime:        s.OpeningTime,
		ClosingTime:        s.ClosingTime,
		CrossesMidnight:    s.CrossesMidnight(),
		SlotDurations:      durations,
		PricePerHour:       s.PricePerHour,
		PriceEvening:       s.PriceEvening,
		EveningStartHour:   settings.EveningStartHour,
		Currency:           s.Currency,
		ContactPhone:       s.ContactPhone,
		ContactTelegram:    s.ContactTelegram,
		LocationAddress:    s.LocationAddress,
		CancellationPolicy: s.CancellationPolicy,
		UpdatedAt:          s.UpdatedAt,
	}
}

type UpdateSettingsRequest struct {
	OpeningTime        *string `json:"opening_time"`
	ClosingTime        *string `json:"closing_time"`
	SlotDurations      []int   `json:"slot_durations" binding:"omitempty,min=1,dive,gt=0"`
	PricePerHour       *int64  `json:"price_per_hour" binding:"omitempty,min=0"`
	PriceEvening       *int64  `json:"price_evening" binding:"omitempty,min=0"`
	Currency           *string `json:"currency" binding:"omitempty,max=8"`
	ContactPhone       *string `json:"contact_phone"`
	ContactTelegram    *string `json:"contact_telegram"`
	LocationAddress    *string `json:"location_address"`
	CancellationPolicy *string `json:"cancellation_policy"`
}
