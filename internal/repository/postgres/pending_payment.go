package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// PendingPaymentRepository is a PostgreSQL implementation of
// repository.PendingPaymentRepository.
type PendingPaymentRepository struct {
	q Querier
}

// NewPendingPaymentRepository creates a new PostgreSQL pending payment repository.
func NewPendingPaymentRepository(db *sql.DB) *PendingPaymentRepository {
	return &PendingPaymentRepository{q: db}
}

// NewPendingPaymentRepositoryWithTx creates a pending payment repository using a transaction.
func NewPendingPaymentRepositoryWithTx(tx *sql.Tx) *PendingPaymentRepository {
	return &PendingPaymentRepository{q: tx}
}

// Create persists a new pending package payment keyed by its txRef.
func (r *PendingPaymentRepository) Create(ctx context.Context, p *domain.PendingPackagePayment) error {
	query := `
		INSERT INTO pending_package_payments
			(tx_ref, plate_code, plate_region, plate_number, vehicle_type, duration_tier,
			 valet_id, customer_phone, base_amount, vat_amount, total_amount, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		p.TxRef,
		p.Plate.Code,
		p.Plate.Region,
		p.Plate.Number,
		p.VehicleType,
		p.DurationTier,
		p.ValetID,
		nullString(p.CustomerPhone),
		p.BaseAmount,
		p.VATAmount,
		p.TotalAmount,
		p.CreatedAt,
		p.ExpiresAt,
	)

	return err
}

// GetByTxRef retrieves a pending payment by transaction reference.
// Returns nil if no live record exists.
func (r *PendingPaymentRepository) GetByTxRef(ctx context.Context, txRef string) (*domain.PendingPackagePayment, error) {
	query := `
		SELECT tx_ref, plate_code, plate_region, plate_number, vehicle_type, duration_tier,
		       valet_id, customer_phone, base_amount, vat_amount, total_amount, created_at, expires_at
		FROM pending_package_payments
		WHERE tx_ref = $1 AND expires_at > NOW()
	`

	var p domain.PendingPackagePayment
	var customerPhone sql.NullString
	err := r.q.QueryRowContext(ctx, query, txRef).Scan(
		&p.TxRef,
		&p.Plate.Code,
		&p.Plate.Region,
		&p.Plate.Number,
		&p.VehicleType,
		&p.DurationTier,
		&p.ValetID,
		&customerPhone,
		&p.BaseAmount,
		&p.VATAmount,
		&p.TotalAmount,
		&p.CreatedAt,
		&p.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	p.CustomerPhone = customerPhone.String

	return &p, nil
}

// Consume deletes the pending payment for txRef and reports whether the record
// still existed. The delete is the atomicity point for the package commit:
// only the caller that observes true may create the vehicle.
func (r *PendingPaymentRepository) Consume(ctx context.Context, txRef string) (bool, error) {
	query := `DELETE FROM pending_package_payments WHERE tx_ref = $1`

	result, err := r.q.ExecContext(ctx, query, txRef)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// DeleteExpired removes records whose expiry passed before the cutoff.
func (r *PendingPaymentRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM pending_package_payments WHERE expires_at <= $1`

	result, err := r.q.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Ensure PendingPaymentRepository implements repository.PendingPaymentRepository.
var _ repository.PendingPaymentRepository = (*PendingPaymentRepository)(nil)
