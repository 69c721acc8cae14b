package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `
	id, plate_code, plate_region, plate_number, vehicle_type, service_mode,
	duration_tier, package_end_date, status, parked_at, checked_out_at,
	payment_method, base_amount, vat_amount, total_paid_amount, payment_reference,
	is_flagged, flagged_at, flagged_by, notification_sent, valet_id, customer_phone
`

// Create persists a new vehicle record.
func (r *VehicleRepository) Create(ctx context.Context, v *domain.ParkedVehicle) error {
	query := `
		INSERT INTO parked_vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.q.ExecContext(ctx, query,
		v.ID,
		v.Plate.Code,
		v.Plate.Region,
		v.Plate.Number,
		v.VehicleType,
		v.ServiceMode,
		nullString(string(v.DurationTier)),
		nullTime(v.PackageEndDate),
		v.Status,
		v.ParkedAt,
		nullTime(v.CheckedOutAt),
		nullString(string(v.PaymentMethod)),
		v.BaseAmount,
		v.VATAmount,
		v.TotalPaidAmount,
		nullString(v.PaymentReference),
		v.IsFlagged,
		nullTime(v.FlaggedAt),
		nullString(v.FlaggedBy),
		v.NotificationSent,
		v.ValetID,
		nullString(v.CustomerPhone),
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		// Partial unique index on (plate_code, plate_region, plate_number)
		// WHERE status = 'PARKED'.
		return repository.ErrDuplicatePlate
	}

	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.ParkedVehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM parked_vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

// GetByPaymentReference retrieves a vehicle by its gateway transaction reference.
// Returns nil if no vehicle carries the reference.
func (r *VehicleRepository) GetByPaymentReference(ctx context.Context, txRef string) (*domain.ParkedVehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM parked_vehicles WHERE payment_reference = $1`

	vehicle, err := scanVehicle(r.q.QueryRowContext(ctx, query, txRef))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return vehicle, nil
}

// ListByStatus retrieves vehicles in the given status, newest first.
func (r *VehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.ParkedVehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM parked_vehicles WHERE status = $1
		ORDER BY parked_at DESC LIMIT 200
	`

	rows, err := r.q.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.ParkedVehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

// Checkout performs the conditional checked-out transition. The WHERE clause
// guards on status so that concurrent confirmations for the same vehicle
// resolve to exactly one state change; the loser sees zero rows affected.
func (r *VehicleRepository) Checkout(ctx context.Context, id string, update repository.CheckoutUpdate) (bool, error) {
	query := `
		UPDATE parked_vehicles
		SET status = $1, checked_out_at = $2, payment_method = $3,
		    base_amount = $4, vat_amount = $5, total_paid_amount = $6,
		    payment_reference = $7,
		    is_flagged = FALSE, flagged_at = NULL, flagged_by = NULL, notification_sent = FALSE
		WHERE id = $8 AND status = $9
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.VehicleStatusCheckedOut,
		update.CheckedOutAt,
		update.PaymentMethod,
		update.BaseAmount,
		update.VATAmount,
		update.TotalPaidAmount,
		nullString(update.PaymentReference),
		id,
		domain.VehicleStatusParked,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

// UpdateFlag sets or clears the flag fields on a parked vehicle.
func (r *VehicleRepository) UpdateFlag(ctx context.Context, id string, update repository.FlagUpdate) error {
	query := `
		UPDATE parked_vehicles
		SET is_flagged = $1, flagged_at = $2, flagged_by = $3, notification_sent = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		update.Flagged,
		nullTime(update.FlaggedAt),
		nullString(update.FlaggedBy),
		update.NotificationSent,
		id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.ParkedVehicle, error) {
	var v domain.ParkedVehicle
	var durationTier, paymentMethod, paymentReference, flaggedBy, customerPhone sql.NullString
	var packageEndDate, checkedOutAt, flaggedAt sql.NullTime

	err := row.Scan(
		&v.ID,
		&v.Plate.Code,
		&v.Plate.Region,
		&v.Plate.Number,
		&v.VehicleType,
		&v.ServiceMode,
		&durationTier,
		&packageEndDate,
		&v.Status,
		&v.ParkedAt,
		&checkedOutAt,
		&paymentMethod,
		&v.BaseAmount,
		&v.VATAmount,
		&v.TotalPaidAmount,
		&paymentReference,
		&v.IsFlagged,
		&flaggedAt,
		&flaggedBy,
		&v.NotificationSent,
		&v.ValetID,
		&customerPhone,
	)
	if err != nil {
		return nil, err
	}

	v.DurationTier = domain.DurationTier(durationTier.String)
	v.PaymentMethod = domain.PaymentMethod(paymentMethod.String)
	v.PaymentReference = paymentReference.String
	v.FlaggedBy = flaggedBy.String
	v.CustomerPhone = customerPhone.String
	if packageEndDate.Valid {
		v.PackageEndDate = packageEndDate.Time
	}
	if checkedOutAt.Valid {
		v.CheckedOutAt = checkedOutAt.Time
	}
	if flaggedAt.Valid {
		v.FlaggedAt = flaggedAt.Time
	}

	return &v, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure VehicleRepository implements repository.VehicleRepository.
var _ repository.VehicleRepository = (*VehicleRepository)(nil)
