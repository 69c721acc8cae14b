package domain

import "time"

// PaymentStatus represents the gateway's authoritative status for a transaction.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
)

// Terminal reports whether the status can no longer change at the gateway.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccessful || s == PaymentStatusFailed || s == PaymentStatusCancelled
}

// PendingPackagePayment holds the intended vehicle attributes and amount for a
// package registration before the vehicle record exists. Package registrations
// are payment-first: the ParkedVehicle is only materialized once the gateway
// confirms payment, so abandoned attempts never leave unpaid ghost vehicles.
// A record is consumed (deleted) exactly once on success and expires after
// ExpiresAt if abandoned.
type PendingPackagePayment struct {
	TxRef         string
	Plate         Plate
	VehicleType   VehicleType
	DurationTier  DurationTier
	ValetID       string
	CustomerPhone string

	BaseAmount  float64
	VATAmount   float64
	TotalAmount float64

	CreatedAt time.Time
	ExpiresAt time.Time
}

// FeeBreakdown is the output of the fee calculator.
type FeeBreakdown struct {
	BaseAmount          float64
	VATAmount           float64
	TotalAmount         float64
	DurationDescription string // e.g. "1h 30min" or "MONTHLY package"
}
