package settings

import (
	"math"
	"net/http"
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/pitch-booking-backend/internal/timeslot"
)

// SingletonID is the primary key of the only settings row.
const SingletonID = "default"

// EveningStartHour is the first hour billed at the evening rate.
const EveningStartHour = 18

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "settings not found")
	ErrInvalidOpeningTime   = apperror.New(http.StatusBadRequest, "opening_time must be in HH:MM format, before 24:00")
	ErrInvalidClosingTime   = apperror.New(http.StatusBadRequest, "closing_time must be in HH:MM format")
	ErrInvalidPrice         = apperror.New(http.StatusBadRequest, "prices must not be negative")
	ErrInvalidSlotDurations = apperror.New(http.StatusBadRequest, "slot_durations must contain positive minute values")
	ErrInvalidCurrency      = apperror.New(http.StatusBadRequest, "currency must not be empty")
)

// Settings holds facility-wide opening hours, rates and contact details.
type Settings struct {
	OpeningTime        string
	ClosingTime        string
	SlotDurations      []int
	PricePerHour       int64
	PriceEvening       int64
	Currency           string
	ContactPhone       string
	ContactTelegram    string
	LocationAddress    string
	CancellationPolicy string
	UpdatedAt          time.Time
}

// Defaults is used until an admin saves settings for the first time.
func Defaults() Settings {
	return Settings{
		OpeningTime:        "06:00",
		ClosingTime:        "24:00",
		SlotDurations:      []int{60, 120},
		PricePerHour:       200000,
		PriceEvening:       300000,
		Currency:           "UZS",
		ContactPhone:       "+998901234567",
		ContactTelegram:    "@chim_admin",
		LocationAddress:    "Toshkent shahri",
		CancellationPolicy: "Bron qilingan vaqtdan kamida 2 soat oldin bekor qilish mumkin.",
	}
}

// CrossesMidnight reports whether closing time falls on the next day.
// Malformed hours never cross.
func (s Settings) CrossesMidnight() bool {
	crosses, err := timeslot.CrossesMidnight(s.OpeningTime, s.ClosingTime)
	return err == nil && crosses
}

// RateFor returns the hourly rate that applies to a booking starting at the
// given minute offset.
func (s Settings) RateFor(startMinute int) int64 {
	hour := (startMinute / 60) % 24
	if hour >= EveningStartHour {
		return s.PriceEvening
	}
	return s.PricePerHour
}

// PriceFor computes the price of [start, end). The rate is chosen once, by
// the start hour, and applied to the whole duration.
func (s Settings) PriceFor(start, end string) (int64, error) {
	sm, em, err := timeslot.Span(start, end)
	if err != nil {
		return 0, err
	}
	hours := float64(em-sm) / 60
	return int64(math.Round(float64(s.RateFor(sm)) * hours)), nil
}

// Validate checks the opening hours, rates and slot lengths.
func (s Settings) Validate() error {
	// "24:00" is only meaningful as a closing time.
	if open, err := timeslot.ToMinutes(s.OpeningTime); err != nil || open >= timeslot.MinutesPerDay {
		return ErrInvalidOpeningTime
	}
	if _, err := timeslot.ToMinutes(s.ClosingTime); err != nil {
		return ErrInvalidClosingTime
	}
	if s.PricePerHour < 0 || s.PriceEvening < 0 {
		return ErrInvalidPrice
	}
	if len(s.SlotDurations) == 0 {
		return ErrInvalidSlotDurations
	}
	for _, d := range s.SlotDurations {
		if d <= 0 || d > timeslot.MinutesPerDay {
			return ErrInvalidSlotDurations
		}
	}
	if s.Currency == "" {
		return ErrInvalidCurrency
	}
	return nil
}
