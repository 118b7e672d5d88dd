// Package timeslot implements wall-clock arithmetic on "HH:MM" strings.
//
// Minutes are counted from midnight of the schedule date. An end time that is
// earlier than its start time belongs to the following day, so intervals may
// span midnight.
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of one calendar day in minutes.
const MinutesPerDay = 24 * 60

// DateLayout is the layout used for calendar dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var (
	ErrInvalidFormat   = errors.New("time must be in HH:MM format")
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidDuration = errors.New("slot duration must be positive")
)

// Slot is one bookable unit of a schedule.
// StartMinute and EndMinute are not wrapped, so a slot after midnight has
// offsets of 1440 or more.
type Slot struct {
	Start       string
	End         string
	StartMinute int
	EndMinute   int
}

// NextDay reports whether the slot starts on the calendar day after the
// schedule date.
func (s Slot) NextDay() bool {
	return s.StartMinute >= MinutesPerDay
}

// ToMinutes parses "HH:MM" into minutes after midnight.
// "24:00" is accepted as the end of the day and yields 1440.
func ToMinutes(hhmm string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok || len(h) < 1 || len(h) > 2 || len(m) != 2 || !digits(h) || !digits(m) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}

	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)

	if hours == 24 && mins == 0 {
		return MinutesPerDay, nil
	}
	if hours > 23 || mins > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, hhmm)
	}
	return hours*60 + mins, nil
}

// FormatMinutes renders minutes as "HH:MM", wrapping into a single day.
func FormatMinutes(m int) string {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Span parses an interval and returns unwrapped minute offsets.
// When end is earlier than start, end is moved to the next day.
// Equal endpoints produce an empty interval.
func Span(start, end string) (int, int, error) {
	s, err := ToMinutes(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := ToMinutes(end)
	if err != nil {
		return 0, 0, err
	}
	if e < s {
		e += MinutesPerDay
	}
	return s, e, nil
}

// DurationMinutes returns the length of the interval in minutes.
func DurationMinutes(start, end string) (int, error) {
	s, e, err := Span(start, end)
	if err != nil {
		return 0, err
	}
	return e - s, nil
}

// CrossesMidnight reports whether a schedule closes on the following day.
func CrossesMidnight(opening, closing string) (bool, error) {
	o, err := ToMinutes(opening)
	if err != nil {
		return false, err
	}
	c, err := ToMinutes(closing)
	if err != nil {
		return false, err
	}
	return c <= o, nil
}

// GenerateSlots splits the opening hours into consecutive slots of the
// given length. A trailing remainder shorter than duration is dropped.
func GenerateSlots(opening, closing string, duration int) ([]Slot, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	o, err := ToMinutes(opening)
	if err != nil {
		return nil, err
	}
	c, err := ToMinutes(closing)
	if err != nil {
		return nil, err
	}
	if c <= o {
		c += MinutesPerDay
	}

	slots := make([]Slot, 0, (c-o)/duration)
	for cur := o; cur+duration <= c; cur += duration {
		slots = append(slots, Slot{
			Start:       FormatMinutes(cur),
			End:         FormatMinutes(cur + duration),
			StartMinute: cur,
			EndMinute:   cur + duration,
		})
	}
	return slots, nil
}

// Overlaps reports whether two half-open intervals share at least one
// minute. Touching endpoints do not overlap.
func Overlaps(startA, endA, startB, endB string) (bool, error) {
	sa, ea, err := Span(startA, endA)
	if err != nil {
		return false, err
	}
	sb, eb, err := Span(startB, endB)
	if err != nil {
		return false, err
	}
	return OverlapsMinutes(sa, ea, sb, eb), nil
}

// OverlapsMinutes is Overlaps on already parsed minute offsets.
func OverlapsMinutes(startA, endA, startB, endB int) bool {
	if startA == endA || startB == endB {
		return false
	}
	return startA < endB && startB < endA
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// NextDate returns the calendar day after date.
func NextDate(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(DateLayout), nil
}

// At returns the instant of clock time hhmm on date in loc.
func At(date, hhmm string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	m, err := ToMinutes(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, m, 0, 0, loc), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
