package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tanapark/internal/domain"
	"tanapark/internal/gateway"
	internalRedis "tanapark/internal/redis"
	"tanapark/internal/repository"
)

// Gateway is the interface for the payment gateway client.
type Gateway interface {
	Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.Session, error)
	Verify(ctx context.Context, txRef string) (*gateway.VerifyResult, error)
	PublicKey() string
}

// CheckoutConfig tunes the payment workflow.
type CheckoutConfig struct {
	Currency          string
	VerifyInterval    time.Duration
	VerifyMaxAttempts int
	PendingTTL        time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// CheckoutService sequences the payment workflow: fee calculation, session
// initialization, verification polling, and the one-shot checkout commit.
type CheckoutService struct {
	vehicleRepo repository.VehicleRepository
	pendingRepo repository.PendingPaymentRepository
	pricingRepo repository.PricingRepository
	valetRepo   repository.ValetRepository
	gateway     Gateway
	feeCalc     *FeeCalculator
	sessions    internalRedis.SessionStoreInterface
	locks       internalRedis.LockStoreInterface
	notifier    *NotificationService
	log         zerolog.Logger

	currency          string
	verifyInterval    time.Duration
	verifyMaxAttempts int
	pendingTTL        time.Duration
	now               func() time.Time
}

// commitLockTTL bounds how long a txRef commit lock can be held; generous
// enough to cover the DB round trips, short enough that a crashed holder
// does not block a manual re-verify for long.
const commitLockTTL = 30 * time.Second

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	vehicleRepo repository.VehicleRepository,
	pendingRepo repository.PendingPaymentRepository,
	pricingRepo repository.PricingRepository,
	valetRepo repository.ValetRepository,
	gw Gateway,
	feeCalc *FeeCalculator,
	sessions internalRedis.SessionStoreInterface,
	locks internalRedis.LockStoreInterface,
	notifier *NotificationService,
	log zerolog.Logger,
	cfg CheckoutConfig,
) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "ETB"
	}
	if cfg.VerifyInterval <= 0 {
		cfg.VerifyInterval = time.Second
	}
	if cfg.VerifyMaxAttempts <= 0 {
		cfg.VerifyMaxAttempts = 10
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &CheckoutService{
		vehicleRepo:       vehicleRepo,
		pendingRepo:       pendingRepo,
		pricingRepo:       pricingRepo,
		valetRepo:         valetRepo,
		gateway:           gw,
		feeCalc:           feeCalc,
		sessions:          sessions,
		locks:             locks,
		notifier:          notifier,
		log:               log,
		currency:          cfg.Currency,
		verifyInterval:    cfg.VerifyInterval,
		verifyMaxAttempts: cfg.VerifyMaxAttempts,
		pendingTTL:        cfg.PendingTTL,
		now:               cfg.Now,
	}
}

// SessionInfo is returned by the initiation calls; the caller renders the
// gateway's hosted checkout from it.
type SessionInfo struct {
	TxRef       string
	PublicKey   string
	CheckoutURL string
	Fee         domain.FeeBreakdown
}

// InitiateHourlyCheckout opens an online payment session for a parked hourly
// vehicle. Every call generates a fresh txRef; any previous session for the
// same vehicle is discarded so a retry never resumes stale state.
func (s *CheckoutService) InitiateHourlyCheckout(ctx context.Context, vehicleID string) (*SessionInfo, error) {
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

	if vehicle.CustomerPhone == "" {
		return nil, ErrInvalidPhone
	}

	fee, err := s.currentHourlyFee(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	txRef := newTxRef()
	session, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		TxRef:       txRef,
		Amount:      fee.TotalAmount,
		Currency:    s.currency,
		Phone:       vehicle.CustomerPhone,
		Title:       "TanaPark",
		Description: fmt.Sprintf("Parking fee for %s", vehicle.Plate),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	err = s.sessions.Put(ctx, &internalRedis.CheckoutSession{
		TxRef:     txRef,
		Kind:      internalRedis.SessionKindHourly,
		VehicleID: vehicle.ID,
		Fee:       *fee,
		Phone:     vehicle.CustomerPhone,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	return &SessionInfo{
		TxRef:       txRef,
		PublicKey:   session.PublicKey,
		CheckoutURL: session.CheckoutURL,
		Fee:         *fee,
	}, nil
}

// PackageRegistrationRequest contains the parameters for a payment-first
// package registration.
type PackageRegistrationRequest struct {
	Plate         domain.Plate
	VehicleType   domain.VehicleType
	DurationTier  domain.DurationTier
	ValetID       string
	CustomerPhone string
}

// InitiatePackageRegistration opens a payment session for a package
// registration. No vehicle record exists yet; the intended attributes are
// parked in a PendingPackagePayment keyed by the fresh txRef and the vehicle
// is only materialized once the payment is confirmed.
func (s *CheckoutService) InitiatePackageRegistration(ctx context.Context, req PackageRegistrationRequest) (*SessionInfo, error) {
	if req.Plate.Code == "" || req.Plate.Region == "" || req.Plate.Number == "" {
		return nil, ErrInvalidPlate
	}
	if !validVehicleType(req.VehicleType) {
		return nil, ErrInvalidVehicleType
	}
	if !validDurationTier(req.DurationTier) {
		return nil, ErrInvalidDurationTier
	}
	if req.ValetID == "" {
		return nil, ErrInvalidValetID
	}
	if req.CustomerPhone == "" {
		return nil, ErrInvalidPhone
	}

	priceLevel, err := s.priceLevelFor(ctx, req.ValetID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.pricingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	fee, err := s.feeCalc.PackageFee(cfg, priceLevel, req.VehicleType, req.DurationTier)
	if err != nil {
		return nil, err
	}

	txRef := newTxRef()
	session, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		TxRef:       txRef,
		Amount:      fee.TotalAmount,
		Currency:    s.currency,
		Phone:       req.CustomerPhone,
		Title:       "TanaPark",
		Description: fmt.Sprintf("%s parking package for %s", req.DurationTier, req.Plate),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	now := s.now()
	err = s.pendingRepo.Create(ctx, &domain.PendingPackagePayment{
		TxRef:         txRef,
		Plate:         req.Plate,
		VehicleType:   req.VehicleType,
		DurationTier:  req.DurationTier,
		ValetID:       req.ValetID,
		CustomerPhone: req.CustomerPhone,
		BaseAmount:    fee.BaseAmount,
		VATAmount:     fee.VATAmount,
		TotalAmount:   fee.TotalAmount,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.pendingTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitializationFailed, err)
	}

	_ = s.sessions.Put(ctx, &internalRedis.CheckoutSession{
		TxRef:     txRef,
		Kind:      internalRedis.SessionKindPackage,
		Fee:       *fee,
		Phone:     req.CustomerPhone,
		CreatedAt: now,
	})

	return &SessionInfo{
		TxRef:       txRef,
		PublicKey:   session.PublicKey,
		CheckoutURL: session.CheckoutURL,
		Fee:         *fee,
	}, nil
}

// VerifyPayment polls the gateway for the authoritative status of txRef and,
// on confirmation, commits the corresponding state transition exactly once.
// Safe to call repeatedly for the same txRef: re-verification of an already
// committed payment returns the same receipt without further side effects.
func (s *CheckoutService) VerifyPayment(ctx context.Context, txRef string) (*domain.Receipt, error) {
	if txRef == "" {
		return nil, ErrInvalidTxRef
	}

	result, err := s.pollVerification(ctx, txRef)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, txRef, result)
}

// pollVerification asks the gateway for txRef's status until a terminal state
// or attempt exhaustion. Transport and parse errors are deliberately treated
// like a pending status and retried; they are logged separately so the two
// conditions stay distinguishable in operations.
func (s *CheckoutService) pollVerification(ctx context.Context, txRef string) (*gateway.VerifyResult, error) {
	for attempt := 1; attempt <= s.verifyMaxAttempts; attempt++ {
		result, err := s.gateway.Verify(ctx, txRef)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("tx_ref", txRef).Int("attempt", attempt).
				Msg("verification transport error, retrying as pending")
		case result.Status == domain.PaymentStatusSuccessful:
			return result, nil
		case result.Status == domain.PaymentStatusFailed ||
			result.Status == domain.PaymentStatusCancelled:
			s.abandonAttempt(ctx, txRef)
			return nil, ErrPaymentRejected
		default:
			s.log.Debug().Str("tx_ref", txRef).Int("attempt", attempt).
				Str("status", string(result.Status)).Msg("payment not settled yet")
		}

		if attempt == s.verifyMaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.verifyInterval):
		}
	}

	// The session and any pending record are intentionally retained here so a
	// later manual re-verify can still resolve the payment.
	return nil, ErrPaymentStillPending
}

// abandonAttempt clears the artifacts of a rejected attempt so the next
// attempt starts clean with a fresh txRef.
func (s *CheckoutService) abandonAttempt(ctx context.Context, txRef string) {
	if _, err := s.pendingRepo.Consume(ctx, txRef); err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("failed to drop pending payment for rejected attempt")
	}
	if err := s.sessions.Delete(ctx, txRef); err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("failed to drop checkout session for rejected attempt")
	}
}

// commit applies the confirmed payment exactly once. A Redis lock funnels
// concurrent confirmations for the same txRef into one worker; the database
// conditional write (status guard, delete-and-check-existed) remains the
// authoritative duplicate barrier underneath it.
func (s *CheckoutService) commit(ctx context.Context, txRef string, result *gateway.VerifyResult) (*domain.Receipt, error) {
	acquired, err := s.locks.AcquireTxRefLock(ctx, txRef, commitLockTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("commit lock unavailable, relying on conditional write")
		acquired = true // degrade to the DB guard alone
	} else if acquired {
		defer func() {
			_ = s.locks.ReleaseTxRefLock(ctx, txRef)
		}()
	}

	if !acquired {
		return s.resolveCommitted(ctx, txRef)
	}

	session, err := s.sessions.Get(ctx, txRef)
	if err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("session lookup failed during commit")
	}

	if session != nil && session.Kind == internalRedis.SessionKindHourly {
		return s.commitHourly(ctx, txRef, session)
	}

	return s.commitPackage(ctx, txRef)
}

func (s *CheckoutService) commitHourly(ctx context.Context, txRef string, session *internalRedis.CheckoutSession) (*domain.Receipt, error) {
	applied, err := s.vehicleRepo.Checkout(ctx, session.VehicleID, repository.CheckoutUpdate{
		CheckedOutAt:     s.now(),
		PaymentMethod:    domain.PaymentMethodOnline,
		BaseAmount:       session.Fee.BaseAmount,
		VATAmount:        session.Fee.VATAmount,
		TotalPaidAmount:  session.Fee.TotalAmount,
		PaymentReference: txRef,
	})
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, session.VehicleID)
	if err != nil {
		return nil, err
	}

	receipt := BuildReceipt(vehicle, feeFromVehicle(vehicle))

	if applied {
		s.notifier.NotifyCheckout(ctx, receipt, session.Phone)
	}

	if err := s.sessions.Delete(ctx, txRef); err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("failed to clear committed session")
	}

	return receipt, nil
}

func (s *CheckoutService) commitPackage(ctx context.Context, txRef string) (*domain.Receipt, error) {
	pending, err := s.pendingRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return nil, err
	}

	if pending == nil {
		// Already processed, or the pending record expired before confirmation.
		return s.resolveCommitted(ctx, txRef)
	}

	consumed, err := s.pendingRepo.Consume(ctx, txRef)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return s.resolveCommitted(ctx, txRef)
	}

	now := s.now()
	vehicle := &domain.ParkedVehicle{
		ID:               uuid.New().String(),
		Plate:            pending.Plate,
		VehicleType:      pending.VehicleType,
		ServiceMode:      domain.ServiceModePackage,
		DurationTier:     pending.DurationTier,
		PackageEndDate:   domain.PackageEndDateFor(pending.DurationTier, now),
		Status:           domain.VehicleStatusParked,
		ParkedAt:         now,
		PaymentMethod:    domain.PaymentMethodOnline,
		BaseAmount:       pending.BaseAmount,
		VATAmount:        pending.VATAmount,
		TotalPaidAmount:  pending.TotalAmount,
		PaymentReference: txRef,
		ValetID:          pending.ValetID,
		CustomerPhone:    pending.CustomerPhone,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	receipt := BuildReceipt(vehicle, &domain.FeeBreakdown{
		BaseAmount:          pending.BaseAmount,
		VATAmount:           pending.VATAmount,
		TotalAmount:         pending.TotalAmount,
		DurationDescription: fmt.Sprintf("%s package", pending.DurationTier),
	})

	s.notifier.NotifyPackageRegistered(ctx, receipt, pending.CustomerPhone)

	if err := s.sessions.Delete(ctx, txRef); err != nil {
		s.log.Warn().Err(err).Str("tx_ref", txRef).Msg("failed to clear committed session")
	}

	return receipt, nil
}

// resolveCommitted handles the already-applied path: the txRef's resources
// are gone, so the transition happened before. Locating the committed vehicle
// turns the duplicate into an idempotent success; failing to locate it is an
// operational inconsistency.
func (s *CheckoutService) resolveCommitted(ctx context.Context, txRef string) (*domain.Receipt, error) {
	vehicle, err := s.vehicleRepo.GetByPaymentReference(ctx, txRef)
	if err != nil {
		return nil, err
	}

	if vehicle == nil {
		s.log.Error().Str("tx_ref", txRef).Msg("confirmed payment has no checkout session, pending record, or vehicle")
		return nil, ErrPaymentNotResolvable
	}

	return BuildReceipt(vehicle, feeFromVehicle(vehicle)), nil
}

// ManualCheckout settles an hourly vehicle in cash at the valet desk, with no
// gateway involvement.
func (s *CheckoutService) ManualCheckout(ctx context.Context, vehicleID string) (*domain.Receipt, error) {
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

	fee, err := s.currentHourlyFee(ctx, vehicle)
	if err != nil {
		return nil, err
	}

	applied, err := s.vehicleRepo.Checkout(ctx, vehicle.ID, repository.CheckoutUpdate{
		CheckedOutAt:    s.now(),
		PaymentMethod:   domain.PaymentMethodManual,
		BaseAmount:      fee.BaseAmount,
		VATAmount:       fee.VATAmount,
		TotalPaidAmount: fee.TotalAmount,
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrVehicleAlreadyCheckedOut
	}

	vehicle, err = s.vehicleRepo.GetByID(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}

	receipt := BuildReceipt(vehicle, fee)
	s.notifier.NotifyCheckout(ctx, receipt, vehicle.CustomerPhone)

	return receipt, nil
}

// QuoteHourlyFee computes the current fee for a parked vehicle without any
// side effects, for display before the customer chooses a payment method.
func (s *CheckoutService) QuoteHourlyFee(ctx context.Context, vehicleID string) (*domain.FeeBreakdown, error) {
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

	return s.currentHourlyFee(ctx, vehicle)
}

// RunPendingSweeper periodically deletes expired pending package payments
// until the context is cancelled. Intended to run in its own goroutine.
func (s *CheckoutService) RunPendingSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.pendingRepo.DeleteExpired(ctx, s.now())
			if err != nil {
				s.log.Warn().Err(err).Msg("pending payment sweep failed")
				continue
			}
			if removed > 0 {
				s.log.Info().Int64("removed", removed).Msg("expired pending payments swept")
			}
		}
	}
}

func (s *CheckoutService) currentHourlyFee(ctx context.Context, vehicle *domain.ParkedVehicle) (*domain.FeeBreakdown, error) {
	priceLevel, err := s.priceLevelFor(ctx, vehicle.ValetID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.pricingRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	return s.feeCalc.HourlyFee(cfg, priceLevel, vehicle.VehicleType, vehicle.ParkedAt, s.now())
}

// priceLevelFor resolves the registering valet's assigned price level. An
// unknown valet degrades to the empty level, which the fee calculator treats
// as "use the first configured level".
func (s *CheckoutService) priceLevelFor(ctx context.Context, valetID string) (string, error) {
	if valetID == "" {
		return "", nil
	}

	valet, err := s.valetRepo.GetByID(ctx, valetID)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil
		}
		return "", err
	}

	return valet.PriceLevel, nil
}

// feeFromVehicle rebuilds the fee breakdown recorded on a committed vehicle.
func feeFromVehicle(v *domain.ParkedVehicle) *domain.FeeBreakdown {
	description := string(v.DurationTier) + " package"
	if v.ServiceMode == domain.ServiceModeHourly && !v.CheckedOutAt.IsZero() {
		description = describeDuration(billableMinutes(v.ParkedAt, v.CheckedOutAt))
	}

	return &domain.FeeBreakdown{
		BaseAmount:          v.BaseAmount,
		VATAmount:           v.VATAmount,
		TotalAmount:         v.TotalPaidAmount,
		DurationDescription: description,
	}
}

// newTxRef generates a fresh transaction reference. References are never
// reused across attempts; the gateway rejects duplicates.
func newTxRef() string {
	return "tanapark-" + uuid.New().String()
}

func validVehicleType(t domain.VehicleType) bool {
	switch t {
	case domain.VehicleTypeTwoWheeler, domain.VehicleTypeAutomobile,
		domain.VehicleTypeTruck, domain.VehicleTypeTrailer:
		return true
	}
	return false
}

func validDurationTier(t domain.DurationTier) bool {
	switch t {
	case domain.DurationTierWeekly, domain.DurationTierMonthly, domain.DurationTierYearly:
		return true
	}
	return false
}
