package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tanapark/internal/domain"
	"tanapark/internal/service"
)

// ──────────────────────────────────────────────
// 1. HOURLY ONLINE CHECKOUT FLOW
// ──────────────────────────────────────────────

func TestHourlyCheckout_FullFlow(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")

	// 90 minutes at 50 ETB/h: base 75.00, VAT 11.25, total 86.25.
	f.clock.Advance(90 * time.Minute)

	session, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.Fee.BaseAmount != 75.00 {
		t.Errorf("expected base 75.00, got %.2f", session.Fee.BaseAmount)
	}
	if session.Fee.VATAmount != 11.25 {
		t.Errorf("expected VAT 11.25, got %.2f", session.Fee.VATAmount)
	}
	if session.Fee.TotalAmount != 86.25 {
		t.Errorf("expected total 86.25, got %.2f", session.Fee.TotalAmount)
	}
	if !strings.HasPrefix(session.TxRef, "tanapark-") {
		t.Errorf("expected tanapark- prefixed txRef, got %q", session.TxRef)
	}
	if session.CheckoutURL == "" {
		t.Error("expected a checkout URL")
	}
	if !f.sessions.HasSession(session.TxRef) {
		t.Error("expected a stored checkout session")
	}

	receipt, err := f.svc.VerifyPayment(ctx, session.TxRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.TotalAmount != 86.25 {
		t.Errorf("expected receipt total 86.25, got %.2f", receipt.TotalAmount)
	}
	if receipt.PaymentMethod != domain.PaymentMethodOnline {
		t.Errorf("expected ONLINE payment method, got %s", receipt.PaymentMethod)
	}
	if receipt.PaymentReference != session.TxRef {
		t.Errorf("expected payment reference %s, got %s", session.TxRef, receipt.PaymentReference)
	}
	if receipt.DurationDescription != "1h 30min" {
		t.Errorf("expected duration description %q, got %q", "1h 30min", receipt.DurationDescription)
	}

	vehicle := f.vehicleRepo.GetVehicle("vehicle-1")
	if vehicle.Status != domain.VehicleStatusCheckedOut {
		t.Errorf("expected CHECKED_OUT, got %s", vehicle.Status)
	}
	if vehicle.TotalPaidAmount != 86.25 {
		t.Errorf("expected recorded total 86.25, got %.2f", vehicle.TotalPaidAmount)
	}

	if f.sessions.HasSession(session.TxRef) {
		t.Error("expected the committed session to be cleared")
	}
	if f.sms.CountMessages() != 1 {
		t.Errorf("expected 1 SMS, got %d", f.sms.CountMessages())
	}
}

func TestHourlyCheckout_ReVerifyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.clock.Advance(90 * time.Minute)

	session, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := f.svc.VerifyPayment(ctx, session.TxRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.svc.VerifyPayment(ctx, session.TxRef)
	if err != nil {
		t.Fatalf("unexpected error on re-verify: %v", err)
	}

	if second.TotalAmount != first.TotalAmount {
		t.Errorf("expected same total on re-verify, got %.2f vs %.2f", second.TotalAmount, first.TotalAmount)
	}
	if second.PaymentReference != first.PaymentReference {
		t.Errorf("expected same payment reference, got %s vs %s", second.PaymentReference, first.PaymentReference)
	}

	// The state transition must have applied exactly once.
	if f.vehicleRepo.CheckoutApplied != 1 {
		t.Errorf("expected checkout to apply once, applied %d times", f.vehicleRepo.CheckoutApplied)
	}
	if f.sms.CountMessages() != 1 {
		t.Errorf("expected 1 SMS total, got %d", f.sms.CountMessages())
	}
}

func TestHourlyCheckout_RetryGetsFreshTxRef(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.clock.Advance(30 * time.Minute)

	first, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.TxRef == second.TxRef {
		t.Errorf("expected a fresh txRef per attempt, got %s twice", first.TxRef)
	}
	if len(f.gateway.InitializedRefs) != 2 {
		t.Fatalf("expected 2 gateway sessions, got %d", len(f.gateway.InitializedRefs))
	}

	// The earlier session is discarded; only the latest can commit.
	if f.sessions.HasSession(first.TxRef) {
		t.Error("expected the superseded session to be discarded")
	}
	if !f.sessions.HasSession(second.TxRef) {
		t.Error("expected the latest session to be live")
	}
}

func TestHourlyCheckout_FlagClearedOnCheckout(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	vehicle := f.addParkedAutomobile("vehicle-1")
	vehicle.IsFlagged = true
	vehicle.FlaggedAt = parkedAtBase
	vehicle.FlaggedBy = "valet-1"
	f.clock.Advance(2 * time.Hour)

	session, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.VerifyPayment(ctx, session.TxRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.vehicleRepo.GetVehicle("vehicle-1")
	if stored.IsFlagged {
		t.Error("expected the flag to be cleared by checkout")
	}
	if stored.FlaggedBy != "" {
		t.Errorf("expected flaggedBy cleared, got %q", stored.FlaggedBy)
	}
}

func TestHourlyCheckout_AlreadyCheckedOut_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	vehicle := f.addParkedAutomobile("vehicle-1")
	vehicle.Status = domain.VehicleStatusCheckedOut

	_, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if !errors.Is(err, service.ErrVehicleAlreadyCheckedOut) {
		t.Errorf("expected ErrVehicleAlreadyCheckedOut, got %v", err)
	}
	if len(f.gateway.InitializedRefs) != 0 {
		t.Error("expected no gateway session for a checked-out vehicle")
	}
}

func TestHourlyCheckout_MissingPhone_Rejected(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	vehicle := f.addParkedAutomobile("vehicle-1")
	vehicle.CustomerPhone = ""

	_, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if !errors.Is(err, service.ErrInvalidPhone) {
		t.Errorf("expected ErrInvalidPhone, got %v", err)
	}
}

func TestHourlyCheckout_InitializeFailure_Wrapped(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.gateway.InitializeError = errors.New("gateway unavailable")

	_, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if !errors.Is(err, service.ErrInitializationFailed) {
		t.Errorf("expected ErrInitializationFailed, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. MANUAL CHECKOUT AND FEE QUOTE
// ──────────────────────────────────────────────

func TestManualCheckout_NoGatewayInvolved(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.clock.Advance(90 * time.Minute)

	receipt, err := f.svc.ManualCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.TotalAmount != 86.25 {
		t.Errorf("expected total 86.25, got %.2f", receipt.TotalAmount)
	}
	if receipt.PaymentMethod != domain.PaymentMethodManual {
		t.Errorf("expected MANUAL payment method, got %s", receipt.PaymentMethod)
	}
	if receipt.PaymentReference != "" {
		t.Errorf("expected empty payment reference, got %q", receipt.PaymentReference)
	}

	if len(f.gateway.InitializedRefs) != 0 || f.gateway.VerifyCallCount != 0 {
		t.Error("expected no gateway calls for a manual checkout")
	}
	if f.sms.CountMessages() != 1 {
		t.Errorf("expected 1 SMS, got %d", f.sms.CountMessages())
	}
}

func TestManualCheckout_SecondAttempt_Conflicts(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.clock.Advance(time.Hour)

	if _, err := f.svc.ManualCheckout(ctx, "vehicle-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.ManualCheckout(ctx, "vehicle-1")
	if !errors.Is(err, service.ErrVehicleAlreadyCheckedOut) {
		t.Errorf("expected ErrVehicleAlreadyCheckedOut, got %v", err)
	}
}

func TestQuoteHourlyFee_NoSideEffects(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.clock.Advance(90 * time.Minute)

	fee, err := f.svc.QuoteHourlyFee(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee.TotalAmount != 86.25 {
		t.Errorf("expected total 86.25, got %.2f", fee.TotalAmount)
	}

	vehicle := f.vehicleRepo.GetVehicle("vehicle-1")
	if vehicle.Status != domain.VehicleStatusParked {
		t.Errorf("expected vehicle still PARKED, got %s", vehicle.Status)
	}
	if len(f.gateway.InitializedRefs) != 0 {
		t.Error("expected no gateway session for a quote")
	}
}

// A lock held by another committer must route the caller through the
// already-committed resolution path instead of double-applying.
func TestCommit_LockHeld_ResolvesCommittedVehicle(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.addParkedAutomobile("vehicle-1")
	f.clock.Advance(time.Hour)

	session, err := f.svc.InitiateHourlyCheckout(ctx, "vehicle-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// First verify commits normally.
	if _, err := f.svc.VerifyPayment(ctx, session.TxRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate a concurrent holder for the same txRef.
	f.locks.Hold(session.TxRef)

	receipt, err := f.svc.VerifyPayment(ctx, session.TxRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.PaymentReference != session.TxRef {
		t.Errorf("expected the committed receipt, got reference %q", receipt.PaymentReference)
	}
	if f.vehicleRepo.CheckoutApplied != 1 {
		t.Errorf("expected checkout applied once, applied %d times", f.vehicleRepo.CheckoutApplied)
	}
}
