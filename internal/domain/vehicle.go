package domain

import (
	"fmt"
	"time"
)

// VehicleStatus represents the lifecycle status of a parked vehicle.
type VehicleStatus string

const (
	VehicleStatusParked     VehicleStatus = "PARKED"
	VehicleStatusCheckedOut VehicleStatus = "CHECKED_OUT"
)

// VehicleType classifies a vehicle for pricing purposes.
type VehicleType string

const (
	VehicleTypeTwoWheeler VehicleType = "TWO_WHEELER" // motorcycles and bajaj three-wheelers
	VehicleTypeAutomobile VehicleType = "AUTOMOBILE"
	VehicleTypeTruck      VehicleType = "TRUCK"
	VehicleTypeTrailer    VehicleType = "TRAILER"
)

// ServiceMode distinguishes per-visit hourly billing from flat-fee packages.
type ServiceMode string

const (
	ServiceModeHourly  ServiceMode = "HOURLY"
	ServiceModePackage ServiceMode = "PACKAGE"
)

// DurationTier is the length of a package subscription.
type DurationTier string

const (
	DurationTierWeekly  DurationTier = "WEEKLY"
	DurationTierMonthly DurationTier = "MONTHLY"
	DurationTierYearly  DurationTier = "YEARLY"
)

// PaymentMethod records how a checkout was settled.
type PaymentMethod string

const (
	PaymentMethodManual PaymentMethod = "MANUAL"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// Plate is a human-readable license plate split into its registry fields.
type Plate struct {
	Code   string // plate code digit (vehicle class)
	Region string // issuing region abbreviation
	Number string
}

// String formats the plate the way it appears on receipts, e.g. "1-AA-12345".
func (p Plate) String() string {
	return fmt.Sprintf("%s-%s-%s", p.Code, p.Region, p.Number)
}

// ParkedVehicle represents a vehicle registered with the valet service.
// Hourly vehicles are created at check-in; package vehicles are created only
// after their registration payment is confirmed. Records are never hard-deleted
// so reporting can see checked-out history.
type ParkedVehicle struct {
	ID          string
	Plate       Plate
	VehicleType VehicleType
	ServiceMode ServiceMode

	// Package fields, set only when ServiceMode is PACKAGE.
	DurationTier   DurationTier
	PackageEndDate time.Time

	Status       VehicleStatus
	ParkedAt     time.Time
	CheckedOutAt time.Time

	// Payment fields, set on checkout (hourly) or creation (package).
	PaymentMethod    PaymentMethod
	BaseAmount       float64
	VATAmount        float64
	TotalPaidAmount  float64
	PaymentReference string // gateway transaction reference, empty for manual payments

	// Flag fields for unpaid-and-overdue vehicles.
	IsFlagged        bool
	FlaggedAt        time.Time
	FlaggedBy        string
	NotificationSent bool

	// ValetID references the valet who registered the vehicle; it resolves
	// the applicable price level.
	ValetID string

	CustomerPhone string
}

// PackageEndDateFor computes the subscription end for a tier starting at from.
// Monthly and yearly use calendar arithmetic, not fixed day counts.
func PackageEndDateFor(tier DurationTier, from time.Time) time.Time {
	switch tier {
	case DurationTierWeekly:
		return from.AddDate(0, 0, 7)
	case DurationTierMonthly:
		return from.AddDate(0, 1, 0)
	case DurationTierYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}
