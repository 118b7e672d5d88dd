package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores the settings singleton.
type Repository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Get(ctx context.Context) (*Settings, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"opening_time", "closing_time", "slot_durations", "price_per_hour", "price_evening",
		"currency", "contact_phone", "contact_telegram", "location_address", "cancellation_policy",
		"updated_at",
	).
		From("public.settings").
		Where(squirrel.Eq{"id": SingletonID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get settings query failed: %w", err)
	}

	var s Settings
	var durations []int32
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&s.OpeningTime, &s.ClosingTime, &durations, &s.PricePerHour, &s.PriceEvening,
		&s.Currency, &s.ContactPhone, &s.ContactTelegram, &s.LocationAddress, &s.CancellationPolicy,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get settings failed: %w", err)
	}

	s.SlotDurations = make([]int, len(durations))
	for i, d := range durations {
		s.SlotDurations[i] = int(d)
	}
	return &s, nil
}

// Save inserts the singleton row or overwrites it.
func (r *pgxRepository) Save(ctx context.Context, s *Settings) error {
	durations := make([]int32, len(s.SlotDurations))
	for i, d := range s.SlotDurations {
		durations[i] = int32(d)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.settings").
		Columns(
			"id", "opening_time", "closing_time", "slot_durations", "price_per_hour", "price_evening",
			"currency", "contact_phone", "contact_telegram", "location_address", "cancellation_policy",
		).
		Values(
			SingletonID, s.OpeningTime, s.ClosingTime, durations, s.PricePerHour, s.PriceEvening,
			s.Currency, s.ContactPhone, s.ContactTelegram, s.LocationAddress, s.CancellationPolicy,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			opening_time = EXCLUDED.opening_time,
			closing_time = EXCLUDED.closing_time,
			slot_durations = EXCLUDED.slot_durations,
			price_per_hour = EXCLUDED.price_per_hour,
			price_evening = EXCLUDED.price_evening,
			currency = EXCLUDED.currency,
			contact_phone = EXCLUDED.contact_phone,
			contact_telegram = EXCLUDED.contact_telegram,
			location_address = EXCLUDED.location_address,
			cancellation_policy = EXCLUDED.cancellation_policy,
			updated_at = now()
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save settings query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		return fmt.Errorf("save settings failed: %w", err)
	}
	return nil
}
