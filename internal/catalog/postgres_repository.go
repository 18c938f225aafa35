package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the repository needs; tests substitute a
// pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the catalog in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock connection for tests.
func NewPostgresRepositoryWithDB(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const serviceColumns = "id, name, description, duration_minutes, price, category, active, created_at"

// Create inserts a service row.
func (r *PostgresRepository) Create(ctx context.Context, svc *Service) error {
	if err := svc.Validate(); err != nil {
		return err
	}
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO services (id, name, description, duration_minutes, price, category, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		svc.ID,
		svc.Name,
		svc.Description,
		svc.DurationMinutes,
		svc.Price,
		svc.Category,
		svc.Active,
	).Scan(&svc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateService
		}
		return fmt.Errorf("catalog: insert failed: %w", err)
	}
	return nil
}

// Resolve finds an active service by name.
func (r *PostgresRepository) Resolve(ctx context.Context, name string) (*Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE lower(name) = $1 AND active = TRUE
	`
	return r.scanOne(r.db.QueryRow(ctx, query, NormalizeName(name)))
}

// GetByID finds an active service by identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE id = $1 AND active = TRUE
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// List returns active services ordered by category then name.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE active = TRUE AND ($1 = '' OR category = $1)
		ORDER BY category, name
	`
	rows, err := r.db.Query(ctx, query, filter.Category)
	if err != nil {
		return nil, fmt.Errorf("catalog: list failed: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

func scanServices(rows pgx.Rows) ([]Service, error) {
	var out []Service
	for rows.Next() {
		var svc Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Name,
			&svc.Description,
			&svc.DurationMinutes,
			&svc.Price,
			&svc.Category,
			&svc.Active,
			&svc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan failed: %w", err)
		}
		out = append(out, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: rows: %w", err)
	}
	return out, nil
}

// Search matches the term against service names and descriptions.
func (r *PostgresRepository) Search(ctx context.Context, term string) ([]Service, error) {
	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE active = TRUE AND (name ILIKE $1 OR description ILIKE $1)
		ORDER BY category, name
	`
	pattern := "%" + NormalizeName(term) + "%"
	rows, err := r.db.Query(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("catalog: search failed: %w", err)
	}
	defer rows.Close()
	return scanServices(rows)
}

// Deactivate hides a service from resolution.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `UPDATE services SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog: deactivate failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Service, error) {
	var svc Service
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Description,
		&svc.DurationMinutes,
		&svc.Price,
		&svc.Category,
		&svc.Active,
		&svc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("catalog: select failed: %w", err)
	}
	return &svc, nil
}

var _ Repository = (*PostgresRepository)(nil)
var _ Repository = (*InMemoryRepository)(nil)
