package repository

import (
	"context"
	"time"

	"tanapark/internal/domain"
)

// CheckoutUpdate carries the fields written by the checkout state transition.
type CheckoutUpdate struct {
	CheckedOutAt     time.Time
	PaymentMethod    domain.PaymentMethod
	BaseAmount       float64
	VATAmount        float64
	TotalPaidAmount  float64
	PaymentReference string
}

// FlagUpdate carries the unpaid-and-overdue flag fields.
type FlagUpdate struct {
	Flagged          bool
	FlaggedAt        time.Time
	FlaggedBy        string
	NotificationSent bool
}

// VehicleRepository defines the persistence operations for parked vehicles.
type VehicleRepository interface {
	// Create persists a new vehicle record.
	Create(ctx context.Context, vehicle *domain.ParkedVehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.ParkedVehicle, error)

	// GetByPaymentReference retrieves a vehicle by its gateway transaction
	// reference. Returns nil if no vehicle carries the reference.
	GetByPaymentReference(ctx context.Context, txRef string) (*domain.ParkedVehicle, error)

	// ListByStatus retrieves vehicles in the given status, newest first.
	ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.ParkedVehicle, error)

	// Checkout performs the conditional checked-out transition. The update is
	// applied only while the vehicle is still PARKED; it also clears any flag
	// fields. Returns false (and no error) when the row was already
	// transitioned, so duplicate confirmations resolve to at most one commit.
	Checkout(ctx context.Context, id string, update CheckoutUpdate) (bool, error)

	// UpdateFlag sets or clears the flag fields on a parked vehicle.
	UpdateFlag(ctx context.Context, id string, update FlagUpdate) error
}
