package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict      = apperror.New(http.StatusConflict, "time slot already booked")
	ErrFieldNotFound     = apperror.New(http.StatusNotFound, "field not found")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "date must be in YYYY-MM-DD format")
	ErrInvalidTime       = apperror.New(http.StatusBadRequest, "start_time and end_time must be in HH:MM format")
	ErrInvalidPhone      = apperror.New(http.StatusBadRequest, "invalid phone number format")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "booking status cannot be changed that way")
	ErrInvalidPrice      = apperror.New(http.StatusBadRequest, "price must not be negative")
	ErrTooSoon           = apperror.New(http.StatusBadRequest, "bookings must be made at least 30 minutes in advance")
	ErrTooFarAhead       = apperror.New(http.StatusBadRequest, "bookings can be made at most 30 days in advance")
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusBlocked   Status = "blocked"
)

// OccupyingStatuses are the states that hold a time slot.
var OccupyingStatuses = []Status{StatusPending, StatusConfirmed, StatusBlocked}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// ParseStatus converts s into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusBlocked:
		return true
	}
	return false
}

// Occupies reports whether a booking in this state blocks its slot.
func (s Status) Occupies() bool {
	return s.Valid() && s != StatusCancelled
}

// CanTransitionTo reports whether an admin may move a booking from s to next.
// Blocked and cancelled bookings are final. Staying in the same state is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a reservation of one field for a time range on a date.
// Date is YYYY-MM-DD, StartTime and EndTime are HH:MM in facility time. An
// EndTime earlier than StartTime ends on the following day.
type Booking struct {
	ID               string
	FieldID          string
	FieldName        string
	Date             string
	StartTime        string
	EndTime          string
	Status           Status
	CustomerName     string
	CustomerPhone    string
	TeamName         string
	Note             string
	BlockReason      string
	Price            int64
	TelegramUserID   *int64
	TelegramUsername string
	ReminderSent     bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Filter defines parameters for listing bookings.
type Filter struct {
	Date     string
	FieldID  string
	Status   Status
	Page     int
	PageSize int
}

// Stats summarises the booking load for the admin dashboard.
type Stats struct {
	TodayBookings  int
	PendingCount   int
	ConfirmedToday int
}
