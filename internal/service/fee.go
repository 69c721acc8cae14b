package service

import (
	"fmt"
	"math"
	"time"

	"tanapark/internal/domain"
)

// FeeCalculator computes parking fees from the pricing configuration. Pure and
// deterministic: given the same inputs it always produces the same breakdown,
// which is what keeps it testable in isolation.
type FeeCalculator struct{}

// NewFeeCalculator creates a new FeeCalculator.
func NewFeeCalculator() *FeeCalculator {
	return &FeeCalculator{}
}

// HourlyFee computes the fee for an hourly vehicle checked out at now.
// Duration is floored at one minute and rounded up to whole minutes, so a
// vehicle parked 61 seconds is billed for 2 minutes and one parked 10 seconds
// for 1 minute, never 0.
func (f *FeeCalculator) HourlyFee(
	cfg *domain.PricingConfiguration,
	priceLevel string,
	vehicleType domain.VehicleType,
	parkedAt, now time.Time,
) (*domain.FeeBreakdown, error) {
	rates, err := resolveRates(cfg, priceLevel, vehicleType)
	if err != nil {
		return nil, err
	}

	minutes := billableMinutes(parkedAt, now)
	base := round2(rates.HourlyRate * float64(minutes) / 60)

	return f.withVAT(cfg, base, describeDuration(minutes)), nil
}

// PackageFee computes the flat fee for a package registration.
func (f *FeeCalculator) PackageFee(
	cfg *domain.PricingConfiguration,
	priceLevel string,
	vehicleType domain.VehicleType,
	tier domain.DurationTier,
) (*domain.FeeBreakdown, error) {
	rates, err := resolveRates(cfg, priceLevel, vehicleType)
	if err != nil {
		return nil, err
	}

	price := rates.PackagePrice(tier)
	if price <= 0 {
		return nil, ErrPackageNotPriced
	}

	return f.withVAT(cfg, round2(price), fmt.Sprintf("%s package", tier)), nil
}

func (f *FeeCalculator) withVAT(cfg *domain.PricingConfiguration, base float64, description string) *domain.FeeBreakdown {
	vat := round2(base * cfg.EffectiveVATRate())
	return &domain.FeeBreakdown{
		BaseAmount:          base,
		VATAmount:           vat,
		TotalAmount:         round2(base + vat),
		DurationDescription: description,
	}
}

// resolveRates picks the rates for the valet's price level, falling back to
// the first configured level when the valet's level is absent.
func resolveRates(cfg *domain.PricingConfiguration, priceLevel string, vehicleType domain.VehicleType) (domain.VehicleRates, error) {
	if cfg == nil || len(cfg.Levels) == 0 {
		return domain.VehicleRates{}, ErrPricingNotConfigured
	}

	level := cfg.Level(priceLevel)
	if level == nil {
		level = &cfg.Levels[0]
	}

	rates, ok := level.Rates[vehicleType]
	if !ok {
		return domain.VehicleRates{}, ErrPricingNotConfigured
	}

	return rates, nil
}

// billableMinutes returns the parked duration in whole minutes, rounded up,
// with a one-minute floor.
func billableMinutes(parkedAt, now time.Time) int64 {
	d := now.Sub(parkedAt)
	if d < time.Minute {
		return 1
	}

	minutes := int64(d / time.Minute)
	if d%time.Minute != 0 {
		minutes++
	}
	return minutes
}

func describeDuration(minutes int64) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
