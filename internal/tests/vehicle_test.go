package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
	"tanapark/internal/service"
)

// ──────────────────────────────────────────────
// 6. CHECK-IN AND FLAGGING
// ──────────────────────────────────────────────

type vehicleFixture struct {
	vehicleRepo *MockVehicleRepository
	valetRepo   *MockValetRepository
	sms         *MockSMSSender
	svc         *service.VehicleService
}

func newVehicleFixture() *vehicleFixture {
	f := &vehicleFixture{
		vehicleRepo: NewMockVehicleRepository(),
		valetRepo:   NewMockValetRepository(),
		sms:         NewMockSMSSender(),
	}

	f.valetRepo.AddValet(&domain.Valet{
		ID:         "valet-1",
		Name:       "Abebe",
		Role:       domain.RoleValet,
		PriceLevel: "standard",
	})

	logger := zerolog.Nop()
	f.svc = service.NewVehicleService(
		f.vehicleRepo,
		f.valetRepo,
		service.NewNotificationService(f.sms, logger),
		logger,
	)
	return f
}

func checkInRequest() service.CheckInRequest {
	return service.CheckInRequest{
		Plate:         domain.Plate{Code: "1", Region: "AA", Number: "12345"},
		VehicleType:   domain.VehicleTypeAutomobile,
		ValetID:       "valet-1",
		CustomerPhone: "911223344",
	}
}

func TestCheckIn_CreatesParkedHourlyVehicle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVehicleFixture()

	vehicle, err := f.svc.CheckIn(ctx, checkInRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if vehicle.ID == "" {
		t.Error("expected a generated vehicle ID")
	}
	if vehicle.Status != domain.VehicleStatusParked {
		t.Errorf("expected PARKED, got %s", vehicle.Status)
	}
	if vehicle.ServiceMode != domain.ServiceModeHourly {
		t.Errorf("expected HOURLY, got %s", vehicle.ServiceMode)
	}
	if vehicle.ParkedAt.IsZero() {
		t.Error("expected parkedAt to be set")
	}
	if f.vehicleRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 create call, got %d", f.vehicleRepo.CreateCallCount)
	}
}

func TestCheckIn_InvalidRequest_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.CheckInRequest)
		wantErr error
	}{
		{
			name:    "missing plate region",
			mutate:  func(r *service.CheckInRequest) { r.Plate.Region = "" },
			wantErr: service.ErrInvalidPlate,
		},
		{
			name:    "unknown vehicle type",
			mutate:  func(r *service.CheckInRequest) { r.VehicleType = "HOVERCRAFT" },
			wantErr: service.ErrInvalidVehicleType,
		},
		{
			name:    "missing valet",
			mutate:  func(r *service.CheckInRequest) { r.ValetID = "" },
			wantErr: service.ErrInvalidValetID,
		},
		{
			name:    "unknown valet",
			mutate:  func(r *service.CheckInRequest) { r.ValetID = "valet-missing" },
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newVehicleFixture()

			req := checkInRequest()
			tc.mutate(&req)

			_, err := f.svc.CheckIn(ctx, req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if f.vehicleRepo.CreateCallCount != 0 {
				t.Error("expected no vehicle to be created")
			}
		})
	}
}

func TestFlagVehicle_RecordsNotificationOutcome(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVehicleFixture()

	created, err := f.svc.CheckIn(ctx, checkInRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flagged, err := f.svc.FlagVehicle(ctx, created.ID, "valet-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !flagged.IsFlagged {
		t.Error("expected the vehicle to be flagged")
	}
	if flagged.FlaggedBy != "valet-1" {
		t.Errorf("expected flaggedBy valet-1, got %q", flagged.FlaggedBy)
	}
	if !flagged.NotificationSent {
		t.Error("expected notificationSent after a delivered SMS")
	}
	if f.sms.CountMessages() != 1 {
		t.Errorf("expected 1 SMS, got %d", f.sms.CountMessages())
	}
}

func TestFlagVehicle_SMSFailure_StillFlags(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVehicleFixture()
	f.sms.SendError = errors.New("provider down")

	created, err := f.svc.CheckIn(ctx, checkInRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	flagged, err := f.svc.FlagVehicle(ctx, created.ID, "valet-1")
	if err != nil {
		t.Fatalf("expected the flag to survive an SMS failure, got %v", err)
	}
	if !flagged.IsFlagged {
		t.Error("expected the vehicle to be flagged")
	}
	if flagged.NotificationSent {
		t.Error("expected notificationSent false after a failed SMS")
	}
}

func TestUnflagVehicle_ClearsFlagFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVehicleFixture()

	created, err := f.svc.CheckIn(ctx, checkInRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.FlagVehicle(ctx, created.ID, "valet-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cleared, err := f.svc.UnflagVehicle(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared.IsFlagged {
		t.Error("expected the flag to be cleared")
	}
	if cleared.FlaggedBy != "" {
		t.Errorf("expected flaggedBy cleared, got %q", cleared.FlaggedBy)
	}
}

func TestUnflagVehicle_NotFlagged_Rejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newVehicleFixture()

	created, err := f.svc.CheckIn(ctx, checkInRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = f.svc.UnflagVehicle(ctx, created.ID)
	if !errors.Is(err, service.ErrVehicleNotFlagged) {
		t.Errorf("expected ErrVehicleNotFlagged, got %v", err)
	}
}
