package booking

import (
	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
	"github.com/nekogravitycat/pitch-booking-backend/internal/timeslot"
)

// SlotFree is the status of a slot no booking overlaps.
const SlotFree = "free"

// AvailabilityInput is everything the grid is computed from.
type AvailabilityInput struct {
	Date        string
	Settings    settings.Settings
	SlotMinutes int
	Fields      []*field.Field
	// Bookings must hold the occupying bookings of Date and, for schedules
	// that cross midnight, of the following day.
	Bookings []*Booking
}

// SlotAvailability is one cell of the grid.
type SlotAvailability struct {
	Start      string
	End        string
	Status     string
	Booking    *Booking
	ActualDate string
}

// FieldAvailability is the row of slots of one field.
type FieldAvailability struct {
	Field *field.Field
	Slots []SlotAvailability
}

// Availability is the full grid for a date.
type Availability struct {
	Date     string
	Settings settings.Settings
	Fields   []FieldAvailability
}

// BuildAvailability marks every slot of every field with the first
// occupying booking that overlaps it on the slot's calendar day. Slots that
// start after midnight of a crossing schedule belong to the next day.
func BuildAvailability(in AvailabilityInput) (*Availability, error) {
	nextDate, err := timeslot.NextDate(in.Date)
	if err != nil {
		return nil, err
	}

	slots, err := timeslot.GenerateSlots(in.Settings.OpeningTime, in.Settings.ClosingTime, in.SlotMinutes)
	if err != nil {
		return nil, err
	}

	type dayKey struct{ fieldID, date string }
	byDay := make(map[dayKey][]*Booking)
	for _, b := range in.Bookings {
		if !b.Status.Occupies() {
			continue
		}
		k := dayKey{b.FieldID, b.Date}
		byDay[k] = append(byDay[k], b)
	}

	out := &Availability{
		Date:     in.Date,
		Settings: in.Settings,
		Fields:   make([]FieldAvailability, 0, len(in.Fields)),
	}

	for _, f := range in.Fields {
		row := FieldAvailability{Field: f, Slots: make([]SlotAvailability, len(slots))}

		for i, slot := range slots {
			actual := in.Date
			if slot.NextDay() {
				actual = nextDate
			}

			cell := SlotAvailability{Start: slot.Start, End: slot.End, Status: SlotFree, ActualDate: actual}
			if b := firstOverlap(byDay[dayKey{f.ID, actual}], slot.Start, slot.End); b != nil {
				cell.Status = string(b.Status)
				cell.Booking = b
			}
			row.Slots[i] = cell
		}

		out.Fields = append(out.Fields, row)
	}

	return out, nil
}

// firstOverlap returns the first booking overlapping [start, end).
// Bookings with malformed times are skipped.
func firstOverlap(bookings []*Booking, start, end string) *Booking {
	for _, b := range bookings {
		overlap, err := timeslot.Overlaps(start, end, b.StartTime, b.EndTime)
		if err == nil && overlap {
			return b
		}
	}
	return nil
}
