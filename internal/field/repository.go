package field

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for fields.
type Repository interface {
	Create(ctx context.Context, f *Field) error
	GetByID(ctx context.Context, id string) (*Field, error)
	List(ctx context.Context, filter Filter) ([]*Field, error)
	Update(ctx context.Context, f *Field) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var fieldColumns = []string{"id", "name", "surface", "description", "sort_order", "active", "created_at"}

func scanField(row pgx.Row) (*Field, error) {
	var f Field
	if err := row.Scan(&f.ID, &f.Name, &f.Surface, &f.Description, &f.Order, &f.Active, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *pgxRepository) Create(ctx context.Context, f *Field) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.fields").
		Columns("id", "name", "surface", "description", "sort_order", "active").
		Values(f.ID, f.Name, f.Surface, f.Description, f.Order, f.Active).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create field query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&f.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrIDExists
		}
		return fmt.Errorf("create field failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Field, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(fieldColumns...).
		From("public.fields").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get field query failed: %w", err)
	}

	f, err := scanField(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get field failed: %w", err)
	}
	return f, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Field, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(fieldColumns...).From("public.fields")

	if filter.ActiveOnly {
		query = query.Where(squirrel.Eq{"active": true})
	}
	query = query.OrderBy("sort_order ASC", "id ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list fields query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list fields failed: %w", err)
	}
	defer rows.Close()

	var fields []*Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field failed: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list fields failed: %w", err)
	}
	return fields, nil
}

func (r *pgxRepository) Update(ctx context.Context, f *Field) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.fields").
		Set("name", f.Name).
		Set("surface", f.Surface).
		Set("description", f.Description).
		Set("sort_order", f.Order).
		Set("active", f.Active).
		Where(squirrel.Eq{"id": f.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update field query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update field failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
