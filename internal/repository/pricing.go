package repository

import (
	"context"

	"tanapark/internal/domain"
)

// PricingRepository defines the persistence operations for the pricing
// configuration. The configuration is small and read far more often than it
// is written, so it is loaded and saved as a whole.
type PricingRepository interface {
	// Get loads the full pricing configuration, levels in configured order.
	Get(ctx context.Context) (*domain.PricingConfiguration, error)

	// Save replaces the pricing configuration atomically.
	Save(ctx context.Context, cfg *domain.PricingConfiguration) error
}
