package repository

import (
	"context"
	"time"

	"tanapark/internal/domain"
)

// PendingPaymentRepository defines the persistence operations for
// payment-first package registrations awaiting confirmation.
type PendingPaymentRepository interface {
	// Create persists a new pending package payment keyed by its txRef.
	Create(ctx context.Context, pending *domain.PendingPackagePayment) error

	// GetByTxRef retrieves a pending payment by transaction reference.
	// Returns nil if no record exists (consumed or expired).
	GetByTxRef(ctx context.Context, txRef string) (*domain.PendingPackagePayment, error)

	// Consume deletes the pending payment for txRef and reports whether the
	// record still existed. At most one caller observes true, which makes the
	// package commit safe against duplicate verification successes.
	Consume(ctx context.Context, txRef string) (bool, error)

	// DeleteExpired removes records whose expiry passed before the cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
