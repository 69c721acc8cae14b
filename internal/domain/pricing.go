package domain

// DefaultVATRate applies when the pricing configuration does not set one.
const DefaultVATRate = 0.15

// VehicleRates holds the rates for one vehicle type under a price level.
// A zero package price means the package is not offered for this type.
type VehicleRates struct {
	HourlyRate   float64
	WeeklyPrice  float64
	MonthlyPrice float64
	YearlyPrice  float64
}

// PackagePrice returns the flat price for a duration tier.
func (r VehicleRates) PackagePrice(tier DurationTier) float64 {
	switch tier {
	case DurationTierWeekly:
		return r.WeeklyPrice
	case DurationTierMonthly:
		return r.MonthlyPrice
	case DurationTierYearly:
		return r.YearlyPrice
	default:
		return 0
	}
}

// PriceLevel is a named pricing tier assigned to valets.
type PriceLevel struct {
	Name  string
	Rates map[VehicleType]VehicleRates
}

// PricingConfiguration maps price levels to per-vehicle-type rates, plus the
// global VAT rate. It is read-only input to the fee calculator; Levels keeps
// configuration order so the first level can serve as a fallback.
type PricingConfiguration struct {
	VATRate float64
	Levels  []PriceLevel
}

// Level returns the named price level, or nil if not configured.
func (c *PricingConfiguration) Level(name string) *PriceLevel {
	for i := range c.Levels {
		if c.Levels[i].Name == name {
			return &c.Levels[i]
		}
	}
	return nil
}

// EffectiveVATRate returns the configured VAT rate, defaulting when unset.
func (c *PricingConfiguration) EffectiveVATRate() float64 {
	if c.VATRate <= 0 {
		return DefaultVATRate
	}
	return c.VATRate
}
