package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tanapark/internal/domain"
	"tanapark/internal/service"
)

// PaymentHandler handles HTTP requests for the online payment workflow.
type PaymentHandler struct {
	checkoutService *service.CheckoutService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(checkoutService *service.CheckoutService) *PaymentHandler {
	return &PaymentHandler{checkoutService: checkoutService}
}

// SessionResponse is the HTTP response for payment initiation.
type SessionResponse struct {
	TxRef       string      `json:"tx_ref"`
	PublicKey   string      `json:"public_key"`
	CheckoutURL string      `json:"checkout_url"`
	Fee         FeeResponse `json:"fee"`
}

// FeeResponse is the fee breakdown in HTTP responses.
type FeeResponse struct {
	BaseAmount          float64 `json:"base_amount"`
	VATAmount           float64 `json:"vat_amount"`
	TotalAmount         float64 `json:"total_amount"`
	DurationDescription string  `json:"duration_description"`
}

// ReceiptResponse is the HTTP response for a settled checkout.
type ReceiptResponse struct {
	VehicleID      string      `json:"vehicle_id"`
	Plate          string      `json:"plate"`
	ServiceMode    string      `json:"service_mode"`
	DurationTier   string      `json:"duration_tier,omitempty"`
	PackageEndDate string      `json:"package_end_date,omitempty"`
	CheckedOutAt   string      `json:"checked_out_at,omitempty"`
	PaymentMethod  string      `json:"payment_method"`
	Reference      string      `json:"payment_reference,omitempty"`
	Fee            FeeResponse `json:"fee"`
	Slip           string      `json:"slip"`
}

func toFeeResponse(fee domain.FeeBreakdown) FeeResponse {
	return FeeResponse{
		BaseAmount:          fee.BaseAmount,
		VATAmount:           fee.VATAmount,
		TotalAmount:         fee.TotalAmount,
		DurationDescription: fee.DurationDescription,
	}
}

func toReceiptResponse(receipt *domain.Receipt) ReceiptResponse {
	resp := ReceiptResponse{
		VehicleID:     receipt.VehicleID,
		Plate:         receipt.Plate.String(),
		ServiceMode:   string(receipt.ServiceMode),
		DurationTier:  string(receipt.DurationTier),
		PaymentMethod: string(receipt.PaymentMethod),
		Reference:     receipt.PaymentReference,
		Fee: FeeResponse{
			BaseAmount:          receipt.BaseAmount,
			VATAmount:           receipt.VATAmount,
			TotalAmount:         receipt.TotalAmount,
			DurationDescription: receipt.DurationDescription,
		},
		Slip: service.FormatReceipt(receipt),
	}
	if !receipt.PackageEndDate.IsZero() {
		resp.PackageEndDate = receipt.PackageEndDate.Format(timeFormat)
	}
	if !receipt.CheckedOutAt.IsZero() {
		resp.CheckedOutAt = receipt.CheckedOutAt.Format(timeFormat)
	}
	return resp
}

// QuoteFee handles GET /v1/vehicles/:id/fee
func (h *PaymentHandler) QuoteFee(c *gin.Context) {
	fee, err := h.checkoutService.QuoteHourlyFee(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toFeeResponse(*fee))
}

// InitiateHourlyCheckout handles POST /v1/vehicles/:id/checkout/initialize
func (h *PaymentHandler) InitiateHourlyCheckout(c *gin.Context) {
	session, err := h.checkoutService.InitiateHourlyCheckout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{
		TxRef:       session.TxRef,
		PublicKey:   session.PublicKey,
		CheckoutURL: session.CheckoutURL,
		Fee:         toFeeResponse(session.Fee),
	})
}

// ManualCheckout handles POST /v1/vehicles/:id/checkout
func (h *PaymentHandler) ManualCheckout(c *gin.Context) {
	receipt, err := h.checkoutService.ManualCheckout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReceiptResponse(receipt))
}

// PackageInitializeRequest is the HTTP request body for starting a package
// registration payment.
type PackageInitializeRequest struct {
	PlateCode     string `json:"plate_code"`
	PlateRegion   string `json:"plate_region"`
	PlateNumber   string `json:"plate_number"`
	VehicleType   string `json:"vehicle_type"`
	DurationTier  string `json:"duration_tier"` // WEEKLY, MONTHLY, YEARLY
	ValetID       string `json:"valet_id"`
	CustomerPhone string `json:"customer_phone"`
}

// InitiatePackageRegistration handles POST /v1/packages/initialize
func (h *PaymentHandler) InitiatePackageRegistration(c *gin.Context) {
	var req PackageInitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.checkoutService.InitiatePackageRegistration(c.Request.Context(), service.PackageRegistrationRequest{
		Plate: domain.Plate{
			Code:   req.PlateCode,
			Region: req.PlateRegion,
			Number: req.PlateNumber,
		},
		VehicleType:   domain.VehicleType(req.VehicleType),
		DurationTier:  domain.DurationTier(req.DurationTier),
		ValetID:       req.ValetID,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SessionResponse{
		TxRef:       session.TxRef,
		PublicKey:   session.PublicKey,
		CheckoutURL: session.CheckoutURL,
		Fee:         toFeeResponse(session.Fee),
	})
}

// VerifyPayment handles POST /v1/payments/:txRef/verify
//
// Verification is idempotent; re-invoking it for an already settled txRef
// returns the same receipt, so the gateway callback page and a manual
// re-check can share this endpoint.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	receipt, err := h.checkoutService.VerifyPayment(c.Request.Context(), c.Param("txRef"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toReceiptResponse(receipt))
}
