package service

import "errors"

var (
	// ErrInvalidVehicleID is returned when vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidValetID is returned when valet ID is empty.
	ErrInvalidValetID = errors.New("invalid valet id")

	// ErrInvalidTxRef is returned when a transaction reference is empty.
	ErrInvalidTxRef = errors.New("invalid transaction reference")

	// ErrInvalidPlate is returned when plate fields are incomplete.
	ErrInvalidPlate = errors.New("invalid plate")

	// ErrInvalidVehicleType is returned when the vehicle type is not recognized.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidDurationTier is returned when the package tier is not recognized.
	ErrInvalidDurationTier = errors.New("invalid duration tier")

	// ErrInvalidPhone is returned when a customer phone is missing for an
	// online payment.
	ErrInvalidPhone = errors.New("invalid customer phone")

	// ErrPricingNotConfigured is returned when no price level is resolvable for
	// a checkout. Not retryable; an administrator has to fix the configuration.
	ErrPricingNotConfigured = errors.New("pricing not configured")

	// ErrPackageNotPriced is returned when the requested package tier has no
	// price for the vehicle type, rather than silently charging zero.
	ErrPackageNotPriced = errors.New("package not priced for vehicle type")

	// ErrInitializationFailed is returned when a payment session could not be
	// created. Retryable by explicit user action with a fresh txRef.
	ErrInitializationFailed = errors.New("payment initialization failed")

	// ErrPaymentRejected is returned when the gateway reports the transaction
	// failed or was cancelled. Retryable with a fresh txRef.
	ErrPaymentRejected = errors.New("payment rejected by gateway")

	// ErrPaymentStillPending is returned when verification polling exhausts its
	// attempts without a terminal status. The caller should advise checking
	// back later; re-verifying the same txRef is safe.
	ErrPaymentStillPending = errors.New("payment still pending")

	// ErrPaymentNotResolvable is returned when a confirmed payment cannot be
	// matched to a checkout session or pending registration. Operational
	// alert; surfaced to the user as a generic failure.
	ErrPaymentNotResolvable = errors.New("payment not resolvable to a checkout")

	// ErrVehicleAlreadyCheckedOut is returned when a checkout is requested for
	// a vehicle that already left.
	ErrVehicleAlreadyCheckedOut = errors.New("vehicle already checked out")

	// ErrVehicleNotFlagged is returned when unflagging a vehicle that carries
	// no flag.
	ErrVehicleNotFlagged = errors.New("vehicle not flagged")
)
