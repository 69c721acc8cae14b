package service

import (
	"errors"
	"testing"
	"time"

	"tanapark/internal/domain"
)

func feeTestConfig() *domain.PricingConfiguration {
	return &domain.PricingConfiguration{
		VATRate: 0.15,
		Levels: []domain.PriceLevel{
			{
				Name: "standard",
				Rates: map[domain.VehicleType]domain.VehicleRates{
					domain.VehicleTypeAutomobile: {HourlyRate: 50, WeeklyPrice: 300, MonthlyPrice: 1000, YearlyPrice: 10000},
					domain.VehicleTypeTwoWheeler: {HourlyRate: 20},
				},
			},
			{
				Name: "discount",
				Rates: map[domain.VehicleType]domain.VehicleRates{
					domain.VehicleTypeAutomobile: {HourlyRate: 30},
				},
			},
		},
	}
}

func TestHourlyFee_Amounts(t *testing.T) {
	calc := NewFeeCalculator()
	cfg := feeTestConfig()
	parkedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		duration time.Duration
		wantBase float64
		wantVAT  float64
		wantTot  float64
		wantDesc string
	}{
		{"ninety minutes", 90 * time.Minute, 75.00, 11.25, 86.25, "1h 30min"},
		{"one hour exact", time.Hour, 50.00, 7.50, 57.50, "1h 0min"},
		{"round up to next minute", 61 * time.Second, 1.67, 0.25, 1.92, "2min"},
		{"one minute floor", 10 * time.Second, 0.83, 0.12, 0.95, "1min"},
		{"full day", 24 * time.Hour, 1200.00, 180.00, 1380.00, "24h 0min"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fee, err := calc.HourlyFee(cfg, "standard", domain.VehicleTypeAutomobile, parkedAt, parkedAt.Add(tc.duration))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fee.BaseAmount != tc.wantBase {
				t.Errorf("base = %.2f, want %.2f", fee.BaseAmount, tc.wantBase)
			}
			if fee.VATAmount != tc.wantVAT {
				t.Errorf("vat = %.2f, want %.2f", fee.VATAmount, tc.wantVAT)
			}
			if fee.TotalAmount != tc.wantTot {
				t.Errorf("total = %.2f, want %.2f", fee.TotalAmount, tc.wantTot)
			}
			if fee.DurationDescription != tc.wantDesc {
				t.Errorf("description = %q, want %q", fee.DurationDescription, tc.wantDesc)
			}
		})
	}
}

func TestHourlyFee_UnknownLevelFallsBackToFirst(t *testing.T) {
	calc := NewFeeCalculator()
	parkedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	fee, err := calc.HourlyFee(feeTestConfig(), "no-such-level", domain.VehicleTypeAutomobile, parkedAt, parkedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Falls back to the first configured level (50/h), not the discount one.
	if fee.BaseAmount != 50.00 {
		t.Errorf("base = %.2f, want 50.00", fee.BaseAmount)
	}
}

func TestHourlyFee_NoConfiguration(t *testing.T) {
	calc := NewFeeCalculator()
	now := time.Now()

	_, err := calc.HourlyFee(nil, "standard", domain.VehicleTypeAutomobile, now.Add(-time.Hour), now)
	if !errors.Is(err, ErrPricingNotConfigured) {
		t.Errorf("expected ErrPricingNotConfigured for nil config, got %v", err)
	}

	_, err = calc.HourlyFee(&domain.PricingConfiguration{}, "standard", domain.VehicleTypeAutomobile, now.Add(-time.Hour), now)
	if !errors.Is(err, ErrPricingNotConfigured) {
		t.Errorf("expected ErrPricingNotConfigured for empty config, got %v", err)
	}
}

func TestHourlyFee_UnratedVehicleType(t *testing.T) {
	calc := NewFeeCalculator()
	now := time.Now()

	_, err := calc.HourlyFee(feeTestConfig(), "standard", domain.VehicleTypeTrailer, now.Add(-time.Hour), now)
	if !errors.Is(err, ErrPricingNotConfigured) {
		t.Errorf("expected ErrPricingNotConfigured, got %v", err)
	}
}

func TestPackageFee_FlatPriceWithVAT(t *testing.T) {
	calc := NewFeeCalculator()

	testCases := []struct {
		tier     domain.DurationTier
		wantBase float64
		wantTot  float64
	}{
		{domain.DurationTierWeekly, 300.00, 345.00},
		{domain.DurationTierMonthly, 1000.00, 1150.00},
		{domain.DurationTierYearly, 10000.00, 11500.00},
	}

	for _, tc := range testCases {
		t.Run(string(tc.tier), func(t *testing.T) {
			fee, err := calc.PackageFee(feeTestConfig(), "standard", domain.VehicleTypeAutomobile, tc.tier)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if fee.BaseAmount != tc.wantBase {
				t.Errorf("base = %.2f, want %.2f", fee.BaseAmount, tc.wantBase)
			}
			if fee.TotalAmount != tc.wantTot {
				t.Errorf("total = %.2f, want %.2f", fee.TotalAmount, tc.wantTot)
			}
		})
	}
}

func TestPackageFee_UnpricedTier(t *testing.T) {
	calc := NewFeeCalculator()

	// Two-wheelers have an hourly rate but no package prices configured.
	_, err := calc.PackageFee(feeTestConfig(), "standard", domain.VehicleTypeTwoWheeler, domain.DurationTierMonthly)
	if !errors.Is(err, ErrPackageNotPriced) {
		t.Errorf("expected ErrPackageNotPriced, got %v", err)
	}
}

func TestBillableMinutes(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		d    time.Duration
		want int64
	}{
		{"zero", 0, 1},
		{"under a minute", 59 * time.Second, 1},
		{"exactly a minute", time.Minute, 1},
		{"just over a minute", 61 * time.Second, 2},
		{"exact hour", time.Hour, 60},
		{"hour and a second", time.Hour + time.Second, 61},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := billableMinutes(base, base.Add(tc.d)); got != tc.want {
				t.Errorf("billableMinutes(%v) = %d, want %d", tc.d, got, tc.want)
			}
		})
	}
}

func TestEffectiveVATRate_Default(t *testing.T) {
	cfg := feeTestConfig()
	cfg.VATRate = 0

	calc := NewFeeCalculator()
	fee, err := calc.PackageFee(cfg, "standard", domain.VehicleTypeAutomobile, domain.DurationTierMonthly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Unset VAT falls back to the 15% default.
	if fee.VATAmount != 150.00 {
		t.Errorf("vat = %.2f, want 150.00", fee.VATAmount)
	}
}
