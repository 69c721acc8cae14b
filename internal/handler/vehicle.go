package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tanapark/internal/domain"
	"tanapark/internal/service"
)

// VehicleHandler handles HTTP requests for parked vehicles.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// CheckInRequest is the HTTP request body for checking in a vehicle.
type CheckInRequest struct {
	PlateCode     string `json:"plate_code"`
	PlateRegion   string `json:"plate_region"`
	PlateNumber   string `json:"plate_number"`
	VehicleType   string `json:"vehicle_type"` // TWO_WHEELER, AUTOMOBILE, TRUCK, TRAILER
	ValetID       string `json:"valet_id"`
	CustomerPhone string `json:"customer_phone,omitempty"`
}

// FlagRequest is the HTTP request body for flagging a vehicle.
type FlagRequest struct {
	FlaggedBy string `json:"flagged_by"`
}

// VehicleResponse is the HTTP response for vehicle operations.
type VehicleResponse struct {
	ID               string  `json:"id"`
	Plate            string  `json:"plate"`
	VehicleType      string  `json:"vehicle_type"`
	ServiceMode      string  `json:"service_mode"`
	DurationTier     string  `json:"duration_tier,omitempty"`
	PackageEndDate   string  `json:"package_end_date,omitempty"`
	Status           string  `json:"status"`
	ParkedAt         string  `json:"parked_at"`
	CheckedOutAt     string  `json:"checked_out_at,omitempty"`
	PaymentMethod    string  `json:"payment_method,omitempty"`
	BaseAmount       float64 `json:"base_amount"`
	VATAmount        float64 `json:"vat_amount"`
	TotalPaidAmount  float64 `json:"total_paid_amount"`
	PaymentReference string  `json:"payment_reference,omitempty"`
	IsFlagged        bool    `json:"is_flagged"`
	FlaggedAt        string  `json:"flagged_at,omitempty"`
	FlaggedBy        string  `json:"flagged_by,omitempty"`
	NotificationSent bool    `json:"notification_sent"`
	ValetID          string  `json:"valet_id"`
}

func toVehicleResponse(v *domain.ParkedVehicle) VehicleResponse {
	resp := VehicleResponse{
		ID:               v.ID,
		Plate:            v.Plate.String(),
		VehicleType:      string(v.VehicleType),
		ServiceMode:      string(v.ServiceMode),
		DurationTier:     string(v.DurationTier),
		Status:           string(v.Status),
		ParkedAt:         v.ParkedAt.Format(timeFormat),
		PaymentMethod:    string(v.PaymentMethod),
		BaseAmount:       v.BaseAmount,
		VATAmount:        v.VATAmount,
		TotalPaidAmount:  v.TotalPaidAmount,
		PaymentReference: v.PaymentReference,
		IsFlagged:        v.IsFlagged,
		FlaggedBy:        v.FlaggedBy,
		NotificationSent: v.NotificationSent,
		ValetID:          v.ValetID,
	}
	if !v.PackageEndDate.IsZero() {
		resp.PackageEndDate = v.PackageEndDate.Format(timeFormat)
	}
	if !v.CheckedOutAt.IsZero() {
		resp.CheckedOutAt = v.CheckedOutAt.Format(timeFormat)
	}
	if !v.FlaggedAt.IsZero() {
		resp.FlaggedAt = v.FlaggedAt.Format(timeFormat)
	}
	return resp
}

// CheckIn handles POST /v1/vehicles
func (h *VehicleHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.vehicleService.CheckIn(c.Request.Context(), service.CheckInRequest{
		Plate: domain.Plate{
			Code:   req.PlateCode,
			Region: req.PlateRegion,
			Number: req.PlateNumber,
		},
		VehicleType:   domain.VehicleType(req.VehicleType),
		ValetID:       req.ValetID,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toVehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// ListVehicles handles GET /v1/vehicles?status=PARKED
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	status := domain.VehicleStatus(c.DefaultQuery("status", string(domain.VehicleStatusParked)))
	if status != domain.VehicleStatusParked && status != domain.VehicleStatusCheckedOut {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid status filter"})
		return
	}

	vehicles, err := h.vehicleService.ListVehicles(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, toVehicleResponse(v))
	}

	respondJSON(c, http.StatusOK, resp)
}

// FlagVehicle handles POST /v1/vehicles/:id/flag
func (h *VehicleHandler) FlagVehicle(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	vehicle, err := h.vehicleService.FlagVehicle(c.Request.Context(), c.Param("id"), req.FlaggedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

// UnflagVehicle handles POST /v1/vehicles/:id/unflag
func (h *VehicleHandler) UnflagVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.UnflagVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toVehicleResponse(vehicle))
}

const timeFormat = "2006-01-02T15:04:05Z07:00"
