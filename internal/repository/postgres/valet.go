package postgres

import (
	"context"
	"database/sql"
	"errors"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// ValetRepository is a PostgreSQL implementation of repository.ValetRepository.
type ValetRepository struct {
	q Querier
}

// NewValetRepository creates a new PostgreSQL valet repository.
func NewValetRepository(db *sql.DB) *ValetRepository {
	return &ValetRepository{q: db}
}

// Create persists a new valet.
func (r *ValetRepository) Create(ctx context.Context, valet *domain.Valet) error {
	query := `
		INSERT INTO valets (id, name, phone, role, price_level, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		valet.ID,
		valet.Name,
		valet.Phone,
		valet.Role,
		valet.PriceLevel,
		valet.CreatedAt,
	)

	return err
}

// GetByID retrieves a valet by ID.
func (r *ValetRepository) GetByID(ctx context.Context, id string) (*domain.Valet, error) {
	query := `
		SELECT id, name, phone, role, price_level, created_at
		FROM valets WHERE id = $1
	`

	var valet domain.Valet
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&valet.ID,
		&valet.Name,
		&valet.Phone,
		&valet.Role,
		&valet.PriceLevel,
		&valet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &valet, nil
}

// GetAll retrieves all valets.
func (r *ValetRepository) GetAll(ctx context.Context) ([]*domain.Valet, error) {
	query := `
		SELECT id, name, phone, role, price_level, created_at
		FROM valets ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var valets []*domain.Valet
	for rows.Next() {
		var valet domain.Valet
		if err := rows.Scan(
			&valet.ID,
			&valet.Name,
			&valet.Phone,
			&valet.Role,
			&valet.PriceLevel,
			&valet.CreatedAt,
		); err != nil {
			return nil, err
		}
		valets = append(valets, &valet)
	}

	return valets, rows.Err()
}

// Ensure ValetRepository implements repository.ValetRepository.
var _ repository.ValetRepository = (*ValetRepository)(nil)
