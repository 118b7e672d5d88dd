package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nekogravitycat/pitch-booking-backend/internal/field"
	"github.com/nekogravitycat/pitch-booking-backend/internal/settings"
)

// memRepo is an in-memory Repository. WithSlotLock and WithBookingLock each
// serialize callers with one mutex, which is stricter than the per-slot and
// per-row locks of the pgx version.
type memRepo struct {
	mu       sync.Mutex
	slotLock sync.Mutex
	rowLock  sync.Mutex
	seq      int
	rows     map[string]*Booking
	listErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]*Booking{}}
}

func (r *memRepo) put(b *Booking) *Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == "" {
		r.seq++
		b.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	}
	cp := *b
	r.rows[b.ID] = &cp
	return b
}

func (r *memRepo) Create(ctx context.Context, b *Booking) error {
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.put(b)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.rows {
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if filter.FieldID != "" && b.FieldID != filter.FieldID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *memRepo) Update(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[b.ID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now()
	cp := *b
	r.rows[b.ID] = &cp
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) ListOccupying(ctx context.Context, fieldID string, dates []string, excludeID string) ([]*Booking, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.rows {
		if !b.Status.Occupies() || b.ID == excludeID {
			continue
		}
		if fieldID != "" && b.FieldID != fieldID {
			continue
		}
		if !contains(dates, b.Date) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *memRepo) Count(ctx context.Context, date string, statuses []Status) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.rows {
		if date != "" && b.Date != date {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memRepo) ListReminderCandidates(ctx context.Context, dates []string) ([]*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Booking
	for _, b := range r.rows {
		if b.Status == StatusConfirmed && !b.ReminderSent && b.TelegramUserID != nil && contains(dates, b.Date) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memRepo) MarkReminderSent(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	b.ReminderSent = true
	return nil
}

func (r *memRepo) WithSlotLock(ctx context.Context, fieldID, date string, fn func(repo Repository) error) error {
	r.slotLock.Lock()
	defer r.slotLock.Unlock()
	return fn(r)
}

func (r *memRepo) WithBookingLock(ctx context.Context, id string, fn func(repo Repository, current *Booking) error) error {
	r.rowLock.Lock()
	defer r.rowLock.Unlock()
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fn(r, current)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type memFields struct {
	fields []*field.Field
}

func defaultFields() *memFields {
	return &memFields{fields: []*field.Field{
		{ID: "field_1", Name: "Maydon 1", Surface: "sun'iy chim", Order: 1, Active: true},
		{ID: "field_2", Name: "Maydon 2", Surface: "sun'iy chim", Order: 2, Active: true},
		{ID: "field_3", Name: "Maydon 3", Surface: "sun'iy chim", Order: 3, Active: false},
	}}
}

func (m *memFields) GetByID(ctx context.Context, id string) (*field.Field, error) {
	for _, f := range m.fields {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, field.ErrNotFound
}

func (m *memFields) ListActive(ctx context.Context) ([]*field.Field, error) {
	var out []*field.Field
	for _, f := range m.fields {
		if f.Active {
			out = append(out, f)
		}
	}
	return out, nil
}

type staticSettings struct {
	st settings.Settings
}

func (s staticSettings) Get(ctx context.Context) (settings.Settings, error) {
	return s.st, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type published struct {
	key string
	v   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key, v})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.key
	}
	return out
}
