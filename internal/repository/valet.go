package repository

import (
	"context"

	"tanapark/internal/domain"
)

// ValetRepository defines the persistence operations for valets.
type ValetRepository interface {
	// Create persists a new valet.
	Create(ctx context.Context, valet *domain.Valet) error

	// GetByID retrieves a valet by ID.
	GetByID(ctx context.Context, id string) (*domain.Valet, error)

	// GetAll retrieves all valets.
	GetAll(ctx context.Context) ([]*domain.Valet, error)
}
