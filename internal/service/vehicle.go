package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// VehicleService handles vehicle registration and flag operations.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	valetRepo   repository.ValetRepository
	notifier    *NotificationService
	log         zerolog.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	valetRepo repository.ValetRepository,
	notifier *NotificationService,
	log zerolog.Logger,
) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		valetRepo:   valetRepo,
		notifier:    notifier,
		log:         log,
	}
}

// CheckInRequest contains the parameters for an hourly check-in.
type CheckInRequest struct {
	Plate         domain.Plate
	VehicleType   domain.VehicleType
	ValetID       string
	CustomerPhone string
	ParkedAt      time.Time // zero means now
}

// CheckIn registers an hourly vehicle as parked. Package vehicles are never
// created here; they come out of a confirmed package payment.
func (s *VehicleService) CheckIn(ctx context.Context, req CheckInRequest) (*domain.ParkedVehicle, error) {
	if req.Plate.Code == "" || req.Plate.Region == "" || req.Plate.Number == "" {
		return nil, ErrInvalidPlate
	}
	if !validVehicleType(req.VehicleType) {
		return nil, ErrInvalidVehicleType
	}
	if req.ValetID == "" {
		return nil, ErrInvalidValetID
	}

	// The valet must exist; it anchors the price level at checkout.
	if _, err := s.valetRepo.GetByID(ctx, req.ValetID); err != nil {
		return nil, err
	}

	parkedAt := req.ParkedAt
	if parkedAt.IsZero() {
		parkedAt = time.Now()
	}

	vehicle := &domain.ParkedVehicle{
		ID:            uuid.New().String(),
		Plate:         req.Plate,
		VehicleType:   req.VehicleType,
		ServiceMode:   domain.ServiceModeHourly,
		Status:        domain.VehicleStatusParked,
		ParkedAt:      parkedAt,
		ValetID:       req.ValetID,
		CustomerPhone: req.CustomerPhone,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	s.log.Info().Str("vehicle_id", vehicle.ID).Str("plate", vehicle.Plate.String()).Msg("vehicle checked in")

	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *VehicleService) GetVehicle(ctx context.Context, vehicleID string) (*domain.ParkedVehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	return s.vehicleRepo.GetByID(ctx, vehicleID)
}

// ListVehicles retrieves vehicles by status.
func (s *VehicleService) ListVehicles(ctx context.Context, status domain.VehicleStatus) ([]*domain.ParkedVehicle, error) {
	return s.vehicleRepo.ListByStatus(ctx, status)
}

// FlagVehicle marks a parked vehicle as unpaid-and-overdue and sends the
// follow-up SMS. The notification outcome is recorded but never fails the
// flag operation.
func (s *VehicleService) FlagVehicle(ctx context.Context, vehicleID, flaggedBy string) (*domain.ParkedVehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if vehicle.Status != domain.VehicleStatusParked {
		return nil, ErrVehicleAlreadyCheckedOut
	}

	sent := s.notifier.NotifyFlagged(ctx, vehicle)

	update := repository.FlagUpdate{
		Flagged:          true,
		FlaggedAt:        time.Now(),
		FlaggedBy:        flaggedBy,
		NotificationSent: sent,
	}
	if err := s.vehicleRepo.UpdateFlag(ctx, vehicleID, update); err != nil {
		return nil, err
	}

	vehicle.IsFlagged = true
	vehicle.FlaggedAt = update.FlaggedAt
	vehicle.FlaggedBy = flaggedBy
	vehicle.NotificationSent = sent

	return vehicle, nil
}

// UnflagVehicle clears the flag fields on a vehicle.
func (s *VehicleService) UnflagVehicle(ctx context.Context, vehicleID string) (*domain.ParkedVehicle, error) {
	if vehicleID == "" {
		return nil, ErrInvalidVehicleID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if !vehicle.IsFlagged {
		return nil, ErrVehicleNotFlagged
	}

	if err := s.vehicleRepo.UpdateFlag(ctx, vehicleID, repository.FlagUpdate{}); err != nil {
		return nil, err
	}

	vehicle.IsFlagged = false
	vehicle.FlaggedAt = time.Time{}
	vehicle.FlaggedBy = ""
	vehicle.NotificationSent = false

	return vehicle, nil
}
