package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tanapark/internal/domain"
)

// SMSSender abstracts the SMS provider client.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// NotificationService composes and dispatches customer SMS messages.
// Dispatch is strictly best-effort: a committed payment is the source of
// truth, so delivery failures are logged and swallowed, never propagated.
type NotificationService struct {
	sender SMSSender
	log    zerolog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender SMSSender, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		sender: sender,
		log:    log,
	}
}

// NotifyCheckout sends the checkout receipt summary.
func (s *NotificationService) NotifyCheckout(ctx context.Context, receipt *domain.Receipt, phone string) {
	message := fmt.Sprintf(
		"TanaPark: vehicle %s checked out. Parked %s, total %.2f ETB (incl. VAT %.2f). Thank you.",
		receipt.Plate, receipt.DurationDescription, receipt.TotalAmount, receipt.VATAmount,
	)
	s.dispatch(ctx, phone, message, "checkout")
}

// NotifyPackageRegistered sends the package activation summary.
func (s *NotificationService) NotifyPackageRegistered(ctx context.Context, receipt *domain.Receipt, phone string) {
	message := fmt.Sprintf(
		"TanaPark: %s package active for vehicle %s until %s. Paid %.2f ETB. Thank you.",
		receipt.DurationTier, receipt.Plate,
		receipt.PackageEndDate.Format("Jan 02, 2006"), receipt.TotalAmount,
	)
	s.dispatch(ctx, phone, message, "package_registered")
}

// NotifyFlagged warns the customer about an unpaid-and-overdue vehicle.
// Returns whether the message was handed to the provider, so the caller can
// record notificationSent.
func (s *NotificationService) NotifyFlagged(ctx context.Context, vehicle *domain.ParkedVehicle) bool {
	if vehicle.CustomerPhone == "" {
		return false
	}

	message := fmt.Sprintf(
		"TanaPark: vehicle %s has an outstanding parking balance. Please settle at the valet desk.",
		vehicle.Plate,
	)
	return s.dispatch(ctx, vehicle.CustomerPhone, message, "flagged")
}

func (s *NotificationService) dispatch(ctx context.Context, phone, message, kind string) bool {
	if phone == "" || s.sender == nil {
		return false
	}

	if err := s.sender.Send(ctx, phone, message); err != nil {
		s.log.Warn().Err(err).Str("kind", kind).Msg("sms dispatch failed")
		return false
	}

	s.log.Debug().Str("kind", kind).Msg("sms dispatched")
	return true
}
