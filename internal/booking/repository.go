package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	Update(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id string) error

	// ListOccupying returns the pending, confirmed and blocked bookings on the
	// given dates, ordered by start time. An empty fieldID matches every field.
	// excludeID skips one booking, so an edited booking does not conflict
	// with itself.
	ListOccupying(ctx context.Context, fieldID string, dates []string, excludeID string) ([]*Booking, error)

	// Count returns the number of bookings in any of statuses. An empty date
	// counts across all dates.
	Count(ctx context.Context, date string, statuses []Status) (int, error)

	// ListReminderCandidates returns confirmed bookings on the given dates
	// that have a Telegram user and no reminder sent yet.
	ListReminderCandidates(ctx context.Context, dates []string) ([]*Booking, error)
	MarkReminderSent(ctx context.Context, id string) error

	// WithSlotLock runs fn in a transaction that holds an exclusive lock on
	// (fieldID, date). Writers that check for conflicts inside fn are
	// serialized against each other for that field and day.
	WithSlotLock(ctx context.Context, fieldID, date string, fn func(repo Repository) error) error
	// WithBookingLock runs fn in a transaction holding the row lock on the
	// booking and passes the row as read under that lock.
	WithBookingLock(ctx context.Context, id string, fn func(repo Repository, current *Booking) error) error
}

// querier is the subset of pgx shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxRepository struct {
	pool *pgxpool.Pool
	db   querier
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var bookingColumns = []string{
	"b.id", "b.field_id", "f.name", "b.date", "b.start_time", "b.end_time", "b.status",
	"b.customer_name", "b.customer_phone", "b.team_name", "b.note", "b.block_reason", "b.price",
	"b.telegram_user_id", "b.telegram_username", "b.reminder_sent", "b.created_at", "b.updated_at",
}

func psql() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	return psql().Select(append(append([]string{}, bookingColumns...), extra...)...).
		From("public.bookings b").
		Join("public.fields f ON b.field_id = f.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.FieldID, &b.FieldName, &b.Date, &b.StartTime, &b.EndTime, &b.Status,
		&b.CustomerName, &b.CustomerPhone, &b.TeamName, &b.Note, &b.BlockReason, &b.Price,
		&b.TelegramUserID, &b.TelegramUsername, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *pgxRepository) collect(ctx context.Context, query squirrel.SelectBuilder, op string) ([]*Booking, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query failed: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	return bookings, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql().Insert("public.bookings").
		Columns(
			"field_id", "date", "start_time", "end_time", "status",
			"customer_name", "customer_phone", "team_name", "note", "block_reason", "price",
			"telegram_user_id", "telegram_username",
		).
		Values(
			b.FieldID, b.Date, b.StartTime, b.EndTime, b.Status,
			b.CustomerName, b.CustomerPhone, b.TeamName, b.Note, b.BlockReason, b.Price,
			b.TelegramUserID, b.TelegramUsername,
		).
		Suffix("RETURNING id, reminder_sent, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.ID, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings("count(*) OVER() as total_count")

	if filter.Date != "" {
		query = query.Where(squirrel.Eq{"b.date": filter.Date})
	}
	if filter.FieldID != "" {
		query = query.Where(squirrel.Eq{"b.field_id": filter.FieldID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}

	query = query.OrderBy("b.date DESC", "b.start_time ASC", "f.sort_order ASC")

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	query, args, err := psql().Update("public.bookings").
		Set("field_id", b.FieldID).
		Set("date", b.Date).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("status", b.Status).
		Set("note", b.Note).
		Set("price", b.Price).
		Set("reminder_sent", b.ReminderSent).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql().Delete("public.bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete booking query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete booking failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListOccupying(ctx context.Context, fieldID string, dates []string, excludeID string) ([]*Booking, error) {
	query := selectBookings().
		Where(squirrel.Eq{"b.date": dates}).
		Where(squirrel.Eq{"b.status": OccupyingStatuses})

	if fieldID != "" {
		query = query.Where(squirrel.Eq{"b.field_id": fieldID})
	}
	if excludeID != "" {
		query = query.Where(squirrel.NotEq{"b.id": excludeID})
	}
	query = query.OrderBy("b.date ASC", "b.start_time ASC", "b.created_at ASC")

	return r.collect(ctx, query, "list occupying bookings")
}

func (r *pgxRepository) Count(ctx context.Context, date string, statuses []Status) (int, error) {
	query := psql().Select("count(*)").
		From("public.bookings").
		Where(squirrel.Eq{"status": statuses})
	if date != "" {
		query = query.Where(squirrel.Eq{"date": date})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) ListReminderCandidates(ctx context.Context, dates []string) ([]*Booking, error) {
	query := selectBookings().
		Where(squirrel.Eq{"b.date": dates}).
		Where(squirrel.Eq{"b.status": StatusConfirmed}).
		Where(squirrel.Eq{"b.reminder_sent": false}).
		Where(squirrel.NotEq{"b.telegram_user_id": nil}).
		OrderBy("b.date ASC", "b.start_time ASC")

	return r.collect(ctx, query, "list reminder candidates")
}

func (r *pgxRepository) MarkReminderSent(ctx context.Context, id string) error {
	query, args, err := psql().Update("public.bookings").
		Set("reminder_sent", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark reminder query failed: %w", err)
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark reminder sent failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) WithSlotLock(ctx context.Context, fieldID, date string, fn func(repo Repository) error) error {
	// Already inside a transaction: advisory xact locks are reentrant per session.
	if r.pool == nil {
		if err := r.lockSlot(ctx, fieldID, date); err != nil {
			return err
		}
		return fn(r)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		txRepo := &pgxRepository{db: tx}
		if err := txRepo.lockSlot(ctx, fieldID, date); err != nil {
			return err
		}
		return fn(txRepo)
	})
}

func (r *pgxRepository) lockSlot(ctx context.Context, fieldID, date string) error {
	if _, err := r.db.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", fieldID+"|"+date); err != nil {
		return fmt.Errorf("acquire slot lock failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) WithBookingLock(ctx context.Context, id string, fn func(repo Repository, current *Booking) error) error {
	run := func(txRepo *pgxRepository) error {
		query, args, err := selectBookings().
			Where(squirrel.Eq{"b.id": id}).
			Suffix("FOR UPDATE OF b").
			ToSql()
		if err != nil {
			return fmt.Errorf("build lock booking query failed: %w", err)
		}

		current, err := scanBooking(txRepo.db.QueryRow(ctx, query, args...))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock booking failed: %w", err)
		}
		return fn(txRepo, current)
	}

	if r.pool == nil {
		return run(r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return run(&pgxRepository{db: tx})
	})
}
