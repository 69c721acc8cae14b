package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// PricingHandler handles HTTP requests for the pricing configuration.
type PricingHandler struct {
	pricingRepo repository.PricingRepository
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricingRepo repository.PricingRepository) *PricingHandler {
	return &PricingHandler{pricingRepo: pricingRepo}
}

// RatesPayload mirrors domain.VehicleRates on the wire.
type RatesPayload struct {
	HourlyRate   float64 `json:"hourly_rate"`
	WeeklyPrice  float64 `json:"weekly_price"`
	MonthlyPrice float64 `json:"monthly_price"`
	YearlyPrice  float64 `json:"yearly_price"`
}

// PriceLevelPayload is one named level with per-vehicle-type rates.
type PriceLevelPayload struct {
	Name  string                  `json:"name"`
	Rates map[string]RatesPayload `json:"rates"`
}

// PricingPayload is the full configuration on the wire.
type PricingPayload struct {
	VATRate float64             `json:"vat_rate"`
	Levels  []PriceLevelPayload `json:"levels"`
}

// GetPricing handles GET /v1/pricing
func (h *PricingHandler) GetPricing(c *gin.Context) {
	cfg, err := h.pricingRepo.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	payload := PricingPayload{VATRate: cfg.VATRate}
	for _, level := range cfg.Levels {
		lp := PriceLevelPayload{Name: level.Name, Rates: make(map[string]RatesPayload)}
		for vehicleType, rates := range level.Rates {
			lp.Rates[string(vehicleType)] = RatesPayload{
				HourlyRate:   rates.HourlyRate,
				WeeklyPrice:  rates.WeeklyPrice,
				MonthlyPrice: rates.MonthlyPrice,
				YearlyPrice:  rates.YearlyPrice,
			}
		}
		payload.Levels = append(payload.Levels, lp)
	}

	respondJSON(c, http.StatusOK, payload)
}

// SavePricing handles PUT /v1/pricing
func (h *PricingHandler) SavePricing(c *gin.Context) {
	var payload PricingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if payload.VATRate < 0 || payload.VATRate >= 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "vat_rate must be in [0, 1)"})
		return
	}

	cfg := &domain.PricingConfiguration{VATRate: payload.VATRate}
	for _, lp := range payload.Levels {
		if lp.Name == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "price level name is required"})
			return
		}
		level := domain.PriceLevel{Name: lp.Name, Rates: make(map[domain.VehicleType]domain.VehicleRates)}
		for vehicleType, rates := range lp.Rates {
			level.Rates[domain.VehicleType(vehicleType)] = domain.VehicleRates{
				HourlyRate:   rates.HourlyRate,
				WeeklyPrice:  rates.WeeklyPrice,
				MonthlyPrice: rates.MonthlyPrice,
				YearlyPrice:  rates.YearlyPrice,
			}
		}
		cfg.Levels = append(cfg.Levels, level)
	}

	if err := h.pricingRepo.Save(c.Request.Context(), cfg); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, payload)
}
