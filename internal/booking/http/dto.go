package http

import (
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/booking"
	fieldHttp "github.com/nekogravitycat/pitch-booking-backend/internal/field/http"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/response"
)

// AvailabilityQuery defines query parameters for the availability grid.
type AvailabilityQuery struct {
	Date    string `form:"date" binding:"required"`
	FieldID string `form:"field" binding:"omitempty,max=64"`
}

type AvailabilitySettings struct {
	PricePerHour  int64  `json:"price_per_hour"`
	PriceEvening  int64  `json:"price_evening"`
	SlotDurations []int  `json:"slot_durations"`
	Currency      string `json:"currency"`
}

// SlotBooking is the public view of the booking holding a slot. Contact
// details stay out of it.
type SlotBooking struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	TeamName    string `json:"team_name,omitempty"`
	BlockReason string `json:"block_reason,omitempty"`
}

type SlotResponse struct {
	Start      string       `json:"start"`
	End        string       `json:"end"`
	Status     string       `json:"status"`
	Booking    *SlotBooking `json:"booking"`
	ActualDate string       `json:"actual_date"`
}

type FieldAvailabilityResponse struct {
	Field fieldHttp.FieldTag `json:"field"`
	Slots []SlotResponse     `json:"slots"`
}

type AvailabilityResponse struct {
	Date         string                      `json:"date"`
	OpeningTime  string                      `json:"opening_time"`
	ClosingTime  string                      `json:"closing_time"`
	Settings     AvailabilitySettings        `json:"settings"`
	Availability []FieldAvailabilityResponse `json:"availability"`
}

func NewAvailabilityResponse(a *booking.Availability) AvailabilityResponse {
	durations := a.Settings.SlotDurations
	if durations == nil {
		durations = []int{}
	}

	rows := make([]FieldAvailabilityResponse, len(a.Fields))
	for i, row := range a.Fields {
		slots := make([]SlotResponse, len(row.Slots))
		for j, s := range row.Slots {
			slots[j] = SlotResponse{
				Start:      s.Start,
				End:        s.End,
				Status:     s.Status,
				ActualDate: s.ActualDate,
			}
			if b := s.Booking; b != nil {
				slots[j].Booking = &SlotBooking{
					ID:          b.ID,
					Status:      string(b.Status),
					StartTime:   b.StartTime,
					EndTime:     b.EndTime,
					TeamName:    b.TeamName,
					BlockReason: b.BlockReason,
				}
			}
		}
		rows[i] = FieldAvailabilityResponse{Field: fieldHttp.NewFieldTag(row.Field), Slots: slots}
	}

	return AvailabilityResponse{
		Date:        a.Date,
		OpeningTime: a.Settings.OpeningTime,
		ClosingTime: a.Settings.ClosingTime,
		Settings: AvailabilitySettings{
			PricePerHour:  a.Settings.PricePerHour,
			PriceEvening:  a.Settings.PriceEvening,
			SlotDurations: durations,
			Currency:      a.Settings.Currency,
		},
		Availability: rows,
	}
}

type BookingResponse struct {
	ID               string    `json:"id"`
	FieldID          string    `json:"field_id"`
	FieldName        string    `json:"field_name"`
	Date             string    `json:"date"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	Status           string    `json:"status"`
	CustomerName     string    `json:"customer_name"`
	CustomerPhone    string    `json:"customer_phone"`
	TeamName         string    `json:"team_name"`
	Note             string    `json:"note"`
	BlockReason      string    `json:"block_reason"`
	Price            int64     `json:"price"`
	TelegramUserID   *int64    `json:"telegram_user_id"`
	TelegramUsername string    `json:"telegram_username"`
	ReminderSent     bool      `json:"reminder_sent"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:               b.ID,
		FieldID:          b.FieldID,
		FieldName:        b.FieldName,
		Date:             b.Date,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		Status:           string(b.Status),
		CustomerName:     b.CustomerName,
		CustomerPhone:    b.CustomerPhone,
		TeamName:         b.TeamName,
		Note:             b.Note,
		BlockReason:      b.BlockReason,
		Price:            b.Price,
		TelegramUserID:   b.TelegramUserID,
		TelegramUsername: b.TelegramUsername,
		ReminderSent:     b.ReminderSent,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// CreatedBookingResponse is returned to customers. Only the fields needed to
// show a confirmation screen are echoed back.
type CreatedBookingResponse struct {
	ID        string `json:"id"`
	FieldID   string `json:"field_id"`
	FieldName string `json:"field_name"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
	Price     int64  `json:"price"`
}

func NewCreatedBookingResponse(b *booking.Booking) CreatedBookingResponse {
	return CreatedBookingResponse{
		ID:        b.ID,
		FieldID:   b.FieldID,
		FieldName: b.FieldName,
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    string(b.Status),
		Price:     b.Price,
	}
}

type StatsResponse struct {
	TodayBookings  int `json:"today_bookings"`
	PendingCount   int `json:"pending_count"`
	ConfirmedToday int `json:"confirmed_today"`
}

func NewStatsResponse(s *booking.Stats) StatsResponse {
	return StatsResponse{
		TodayBookings:  s.TodayBookings,
		PendingCount:   s.PendingCount,
		ConfirmedToday: s.ConfirmedToday,
	}
}

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	Date    string `form:"date"`
	FieldID string `form:"field" binding:"omitempty,max=64"`
	Status  string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled blocked"`
}

// ListBookingsResponse is the page envelope plus the dashboard counters.
type ListBookingsResponse struct {
	response.PageResponse[BookingResponse]
	Stats StatsResponse `json:"stats"`
}

type CreateBookingRequest struct {
	FieldID          string `json:"field_id" binding:"required"`
	Date             string `json:"date" binding:"required"`
	StartTime        string `json:"start_time" binding:"required"`
	EndTime          string `json:"end_time" binding:"required"`
	CustomerName     string `json:"customer_name" binding:"required,max=100"`
	CustomerPhone    string `json:"customer_phone" binding:"required"`
	TeamName         string `json:"team_name" binding:"max=100"`
	Note             string `json:"note" binding:"max=500"`
	TelegramUserID   *int64 `json:"telegram_user_id"`
	TelegramUsername string `json:"telegram_username" binding:"max=64"`
}

type AdminCreateBookingRequest struct {
	FieldID       string  `json:"field_id" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	StartTime     string  `json:"start_time" binding:"required"`
	EndTime       string  `json:"end_time" binding:"required"`
	CustomerName  string  `json:"customer_name" binding:"max=100"`
	CustomerPhone string  `json:"customer_phone"`
	TeamName      string  `json:"team_name" binding:"max=100"`
	Note          string  `json:"note" binding:"max=500"`
	Status        *string `json:"status" binding:"omitempty,oneof=pending confirmed"`
	Price         *int64  `json:"price" binding:"omitempty,min=0"`
}

type BlockRequest struct {
	FieldID   string `json:"field_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason" binding:"max=200"`
	Note      string `json:"note" binding:"max=500"`
}

type UpdateBookingRequest struct {
	Status    *string `json:"status" binding:"omitempty,oneof=pending confirmed cancelled blocked"`
	FieldID   *string `json:"field_id"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Note      *string `json:"note"`
	Price     *int64  `json:"price" binding:"omitempty,min=0"`
}
