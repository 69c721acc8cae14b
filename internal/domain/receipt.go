package domain

import "time"

// Receipt summarizes a completed checkout or package registration for the
// customer-facing response and the SMS body.
type Receipt struct {
	VehicleID   string
	Plate       Plate
	VehicleType VehicleType
	ServiceMode ServiceMode

	DurationTier   DurationTier
	PackageEndDate time.Time

	ParkedAt     time.Time
	CheckedOutAt time.Time

	DurationDescription string
	BaseAmount          float64
	VATAmount           float64
	TotalAmount         float64
	PaymentMethod       PaymentMethod
	PaymentReference    string

	CreatedAt time.Time
}
