package booking

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/pitch-booking-backend/internal/events"
	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/pitch-booking-backend/internal/pkg/phone"
	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
	"github.com/nekogravitycat/pitch-booking-backend/internal/timeslot"
)

const (
	DefaultBlockReason  = "Yopiq"
	BlockedCustomerName = "Admin"
)

// Clock is the time source of the service.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FieldReader looks up bookable fields.
type FieldReader interface {
	GetByID(ctx context.Context, id string) (*field.Field, error)
	ListActive(ctx context.Context) ([]*field.Field, error)
}

// SettingsReader returns the current facility settings.
type SettingsReader interface {
	Get(ctx context.Context) (settings.Settings, error)
}

// Config holds the booking window rules.
type Config struct {
	Location    *time.Location
	LeadTime    time.Duration
	HorizonDays int
	SlotMinutes int
}

// DefaultConfig returns the rules used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Location:    time.UTC,
		LeadTime:    30 * time.Minute,
		HorizonDays: 30,
		SlotMinutes: 60,
	}
}

// CreateRequest is a booking request submitted by a customer.
type CreateRequest struct {
	FieldID          string
	Date             string
	StartTime        string
	EndTime          string
	CustomerName     string
	CustomerPhone    string
	TeamName         string
	Note             string
	TelegramUserID   *int64
	TelegramUsername string
}

// AdminCreateRequest is a booking entered by staff. A nil Status means
// confirmed and a nil Price is computed from the rate table.
type AdminCreateRequest struct {
	FieldID       string
	Date          string
	StartTime     string
	EndTime       string
	CustomerName  string
	CustomerPhone string
	TeamName      string
	Note          string
	Status        *Status
	Price         *int64
}

// BlockRequest closes a time range for maintenance or private use.
type BlockRequest struct {
	FieldID   string
	Date      string
	StartTime string
	EndTime   string
	Reason    string
	Note      string
}

// UpdateRequest carries data for partial updates. Changing any of FieldID,
// Date, StartTime or EndTime reschedules the booking.
type UpdateRequest struct {
	Status    *Status
	FieldID   *string
	Date      *string
	StartTime *string
	EndTime   *string
	Note      *string
	Price     *int64
}

type Service interface {
	Availability(ctx context.Context, date, fieldID string) (*Availability, error)
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	AdminCreate(ctx context.Context, req AdminCreateRequest) (*Booking, error)
	Block(ctx context.Context, req BlockRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Stats(ctx context.Context) (*Stats, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	fields    FieldReader
	settings  SettingsReader
	publisher events.Publisher
	clock     Clock
	cfg       Config
}

func NewService(repo Repository, fields FieldReader, st SettingsReader, publisher events.Publisher, clock Clock, cfg Config) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if clock == nil {
		clock = RealClock{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SlotMinutes <= 0 {
		cfg.SlotMinutes = 60
	}
	return &service{
		repo:      repo,
		fields:    fields,
		settings:  st,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

func (s *service) Availability(ctx context.Context, date, fieldID string) (*Availability, error) {
	if _, err := timeslot.ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	active, err := s.fields.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	fields := active
	if fieldID != "" {
		fields = nil
		for _, f := range active {
			if f.ID == fieldID {
				fields = append(fields, f)
			}
		}
	}

	dates := []string{date}
	if st.CrossesMidnight() {
		next, _ := timeslot.NextDate(date)
		dates = append(dates, next)
	}

	var bookings []*Booking
	if len(fields) > 0 {
		bookings, err = s.repo.ListOccupying(ctx, fieldID, dates, "")
		if err != nil {
			return nil, err
		}
	}

	return BuildAvailability(AvailabilityInput{
		Date:        date,
		Settings:    st,
		SlotMinutes: s.cfg.SlotMinutes,
		Fields:      fields,
		Bookings:    bookings,
	})
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if err := requireFields(
		required{"field_id", req.FieldID},
		required{"date", req.Date},
		required{"start_time", req.StartTime},
		required{"end_time", req.EndTime},
		required{"customer_name", req.CustomerName},
		required{"customer_phone", req.CustomerPhone},
	); err != nil {
		return nil, err
	}
	start, end, err := normalizeInterval(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if !phone.Valid(req.CustomerPhone) {
		return nil, ErrInvalidPhone
	}

	f, err := s.activeField(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(req.Date, start); err != nil {
		return nil, err
	}

	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	price, err := st.PriceFor(start, end)
	if err != nil {
		return nil, ErrInvalidTime
	}

	b := &Booking{
		FieldID:          f.ID,
		FieldName:        f.Name,
		Date:             req.Date,
		StartTime:        start,
		EndTime:          end,
		Status:           StatusPending,
		CustomerName:     strings.TrimSpace(req.CustomerName),
		CustomerPhone:    phone.Normalize(req.CustomerPhone),
		TeamName:         strings.TrimSpace(req.TeamName),
		Note:             strings.TrimSpace(req.Note),
		Price:            price,
		TelegramUserID:   req.TelegramUserID,
		TelegramUsername: strings.TrimPrefix(strings.TrimSpace(req.TelegramUsername), "@"),
	}

	if err := s.insertGuarded(ctx, b); err != nil {
		return nil, err
	}

	s.publish(ctx, events.BookingCreated, b)
	return b, nil
}

func (s *service) AdminCreate(ctx context.Context, req AdminCreateRequest) (*Booking, error) {
	if err := requireFields(
		required{"field_id", req.FieldID},
		required{"date", req.Date},
		required{"start_time", req.StartTime},
		required{"end_time", req.EndTime},
	); err != nil {
		return nil, err
	}
	start, end, err := normalizeInterval(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	// Walk-in and phone-in entries may have no name on record.
	if req.CustomerPhone != "" && !phone.Valid(req.CustomerPhone) {
		return nil, ErrInvalidPhone
	}

	status := StatusConfirmed
	if req.Status != nil {
		status = *req.Status
	}
	if status != StatusConfirmed && status != StatusPending {
		return nil, ErrInvalidStatus
	}

	f, err := s.existingField(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}

	var price int64
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrInvalidPrice
		}
		price = *req.Price
	} else {
		st, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		if price, err = st.PriceFor(start, end); err != nil {
			return nil, ErrInvalidTime
		}
	}

	b := &Booking{
		FieldID:       f.ID,
		FieldName:     f.Name,
		Date:          req.Date,
		StartTime:     start,
		EndTime:       end,
		Status:        status,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: phone.Normalize(req.CustomerPhone),
		TeamName:      strings.TrimSpace(req.TeamName),
		Note:          strings.TrimSpace(req.Note),
		Price:         price,
	}

	if err := s.insertGuarded(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Block(ctx context.Context, req BlockRequest) (*Booking, error) {
	if err := requireFields(
		required{"field_id", req.FieldID},
		required{"date", req.Date},
		required{"start_time", req.StartTime},
		required{"end_time", req.EndTime},
	); err != nil {
		return nil, err
	}
	start, end, err := normalizeInterval(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	f, err := s.existingField(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = DefaultBlockReason
	}

	b := &Booking{
		FieldID:      f.ID,
		FieldName:    f.Name,
		Date:         req.Date,
		StartTime:    start,
		EndTime:      end,
		Status:       StatusBlocked,
		CustomerName: BlockedCustomerName,
		Note:         strings.TrimSpace(req.Note),
		BlockReason:  reason,
	}

	if err := s.insertGuarded(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	if filter.Date != "" {
		if _, err := timeslot.ParseDate(filter.Date); err != nil {
			return nil, 0, ErrInvalidDate
		}
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	today := s.clock.Now().In(s.cfg.Location).Format(timeslot.DateLayout)

	todayBookings, err := s.repo.Count(ctx, today, []Status{StatusPending, StatusConfirmed})
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.Count(ctx, "", []Status{StatusPending})
	if err != nil {
		return nil, err
	}
	confirmedToday, err := s.repo.Count(ctx, today, []Status{StatusConfirmed})
	if err != nil {
		return nil, err
	}

	return &Stats{
		TodayBookings:  todayBookings,
		PendingCount:   pending,
		ConfirmedToday: confirmedToday,
	}, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Booking, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, ErrInvalidPrice
	}

	var target *field.Field
	if req.FieldID != nil {
		f, err := s.existingField(ctx, *req.FieldID)
		if err != nil {
			return nil, err
		}
		target = f
	}

	// The row is read and written under its lock so a concurrent update
	// cannot be overwritten with stale columns.
	var current, next Booking
	err := s.repo.WithBookingLock(ctx, id, func(repo Repository, locked *Booking) error {
		current, next = *locked, *locked

		if req.Status != nil {
			if !current.Status.CanTransitionTo(*req.Status) {
				return ErrInvalidTransition
			}
			next.Status = *req.Status
		}
		if target != nil && target.ID != current.FieldID {
			next.FieldID, next.FieldName = target.ID, target.Name
		}
		if req.Date != nil {
			next.Date = *req.Date
		}
		if req.StartTime != nil {
			next.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			next.EndTime = *req.EndTime
		}
		if req.Note != nil {
			next.Note = strings.TrimSpace(*req.Note)
		}
		if req.Price != nil {
			next.Price = *req.Price
		}

		rescheduled := next.FieldID != current.FieldID || next.Date != current.Date ||
			next.StartTime != current.StartTime || next.EndTime != current.EndTime
		if !rescheduled {
			return repo.Update(ctx, &next)
		}

		var err error
		if next.StartTime, next.EndTime, err = normalizeInterval(next.Date, next.StartTime, next.EndTime); err != nil {
			return err
		}
		if next.Date != current.Date || next.StartTime != current.StartTime {
			next.ReminderSent = false
		}
		if !next.Status.Occupies() {
			return repo.Update(ctx, &next)
		}
		return repo.WithSlotLock(ctx, next.FieldID, next.Date, func(repo Repository) error {
			if err := checkConflict(ctx, repo, &next); err != nil {
				return err
			}
			return repo.Update(ctx, &next)
		})
	})
	if err != nil {
		return nil, err
	}

	if next.Status != current.Status {
		switch next.Status {
		case StatusConfirmed:
			s.publish(ctx, events.BookingConfirmed, &next)
		case StatusCancelled:
			s.publish(ctx, events.BookingCancelled, &next)
		}
	}

	return &next, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// insertGuarded creates b unless an occupying booking on the same field and
// date overlaps it. The check and the insert run under the slot lock.
func (s *service) insertGuarded(ctx context.Context, b *Booking) error {
	return s.repo.WithSlotLock(ctx, b.FieldID, b.Date, func(repo Repository) error {
		if err := checkConflict(ctx, repo, b); err != nil {
			return err
		}
		return repo.Create(ctx, b)
	})
}

func checkConflict(ctx context.Context, repo Repository, b *Booking) error {
	existing, err := repo.ListOccupying(ctx, b.FieldID, []string{b.Date}, b.ID)
	if err != nil {
		return err
	}
	if firstOverlap(existing, b.StartTime, b.EndTime) != nil {
		return ErrTimeConflict
	}
	return nil
}

// checkWindow enforces the minimum lead time and the booking horizon.
func (s *service) checkWindow(date, start string) error {
	startAt, err := timeslot.At(date, start, s.cfg.Location)
	if err != nil {
		return ErrInvalidTime
	}
	now := s.clock.Now().In(s.cfg.Location)

	if startAt.Before(now.Add(s.cfg.LeadTime)) {
		return ErrTooSoon
	}
	if s.cfg.HorizonDays > 0 && startAt.After(now.AddDate(0, 0, s.cfg.HorizonDays)) {
		return ErrTooFarAhead
	}
	return nil
}

func (s *service) activeField(ctx context.Context, id string) (*field.Field, error) {
	f, err := s.existingField(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Active {
		return nil, ErrFieldNotFound
	}
	return f, nil
}

func (s *service) existingField(ctx context.Context, id string) (*field.Field, error) {
	f, err := s.fields.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, field.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *service) publish(ctx context.Context, key string, b *Booking) {
	ev := events.BookingEvent{
		BookingID:        b.ID,
		FieldID:          b.FieldID,
		FieldName:        b.FieldName,
		Date:             b.Date,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		Status:           string(b.Status),
		CustomerName:     b.CustomerName,
		CustomerPhone:    b.CustomerPhone,
		TeamName:         b.TeamName,
		Price:            b.Price,
		TelegramUserID:   b.TelegramUserID,
		TelegramUsername: b.TelegramUsername,
		OccurredAt:       s.clock.Now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, key, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("booking_id", b.ID).Str("event", key).Msg("publish booking event failed")
	}
}

// normalizeInterval checks the date and both clock times and returns the
// times in zero-padded HH:MM form. The start must lie within the day; an end
// of "24:00" is stored as "00:00".
func normalizeInterval(date, start, end string) (string, string, error) {
	if _, err := timeslot.ParseDate(date); err != nil {
		return "", "", ErrInvalidDate
	}
	sm, err := timeslot.ToMinutes(start)
	if err != nil || sm >= timeslot.MinutesPerDay {
		return "", "", ErrInvalidTime
	}
	em, err := timeslot.ToMinutes(end)
	if err != nil {
		return "", "", ErrInvalidTime
	}
	return timeslot.FormatMinutes(sm), timeslot.FormatMinutes(em), nil
}

type required struct{ name, value string }

// requireFields reports the first blank value.
func requireFields(fields ...required) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return apperror.Newf(http.StatusBadRequest, "%s is required", f.name)
		}
	}
	return nil
}
