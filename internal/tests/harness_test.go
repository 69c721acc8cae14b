package tests

import (
	"time"

	"github.com/rs/zerolog"

	"tanapark/internal/domain"
	"tanapark/internal/service"
)

// parkedAtBase is the reference instant all clock-driven tests start from.
var parkedAtBase = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// standardPricing mirrors a typical production configuration: one default
// level plus a discounted one, 15% VAT.
func standardPricing() *domain.PricingConfiguration {
	return &domain.PricingConfiguration{
		VATRate: 0.15,
		Levels: []domain.PriceLevel{
			{
				Name: "standard",
				Rates: map[domain.VehicleType]domain.VehicleRates{
					domain.VehicleTypeTwoWheeler: {HourlyRate: 20, WeeklyPrice: 150, MonthlyPrice: 500, YearlyPrice: 5000},
					domain.VehicleTypeAutomobile: {HourlyRate: 50, WeeklyPrice: 300, MonthlyPrice: 1000, YearlyPrice: 10000},
					domain.VehicleTypeTruck:      {HourlyRate: 80, WeeklyPrice: 500, MonthlyPrice: 1600, YearlyPrice: 16000},
				},
			},
			{
				Name: "discount",
				Rates: map[domain.VehicleType]domain.VehicleRates{
					domain.VehicleTypeAutomobile: {HourlyRate: 30, WeeklyPrice: 200, MonthlyPrice: 700, YearlyPrice: 7000},
				},
			},
		},
	}
}

// checkoutFixture bundles the mocks behind one CheckoutService.
type checkoutFixture struct {
	clock       *FakeClock
	vehicleRepo *MockVehicleRepository
	pendingRepo *MockPendingPaymentRepository
	pricingRepo *MockPricingRepository
	valetRepo   *MockValetRepository
	gateway     *MockGateway
	sessions    *MockSessionStore
	locks       *MockLockStore
	sms         *MockSMSSender
	svc         *service.CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		clock:       NewFakeClock(parkedAtBase),
		vehicleRepo: NewMockVehicleRepository(),
		pendingRepo: NewMockPendingPaymentRepository(),
		pricingRepo: NewMockPricingRepository(standardPricing()),
		valetRepo:   NewMockValetRepository(),
		gateway:     NewMockGateway(),
		sessions:    NewMockSessionStore(),
		locks:       NewMockLockStore(),
		sms:         NewMockSMSSender(),
	}

	f.valetRepo.AddValet(&domain.Valet{
		ID:         "valet-1",
		Name:       "Abebe",
		Role:       domain.RoleValet,
		PriceLevel: "standard",
	})

	logger := zerolog.Nop()
	notifier := service.NewNotificationService(f.sms, logger)

	f.svc = service.NewCheckoutService(
		f.vehicleRepo,
		f.pendingRepo,
		f.pricingRepo,
		f.valetRepo,
		f.gateway,
		service.NewFeeCalculator(),
		f.sessions,
		f.locks,
		notifier,
		logger,
		service.CheckoutConfig{
			VerifyInterval: time.Millisecond,
			Now:            f.clock.Now,
		},
	)

	return f
}

// addParkedAutomobile seeds an hourly automobile parked at the base instant.
func (f *checkoutFixture) addParkedAutomobile(id string) *domain.ParkedVehicle {
	vehicle := &domain.ParkedVehicle{
		ID:            id,
		Plate:         domain.Plate{Code: "1", Region: "AA", Number: "12345"},
		VehicleType:   domain.VehicleTypeAutomobile,
		ServiceMode:   domain.ServiceModeHourly,
		Status:        domain.VehicleStatusParked,
		ParkedAt:      parkedAtBase,
		ValetID:       "valet-1",
		CustomerPhone: "911223344",
	}
	f.vehicleRepo.AddVehicle(vehicle)
	return vehicle
}
