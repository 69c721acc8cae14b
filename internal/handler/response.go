package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tanapark/internal/repository"
	"tanapark/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Advice string `json:"advice,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Every terminal error carries one human-readable message; payment errors add
// a follow-up action so the user is never left in a "maybe charged" state.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error(), Advice: adviceFor(err)})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidValetID),
		errors.Is(err, service.ErrInvalidTxRef),
		errors.Is(err, service.ErrInvalidPlate),
		errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrInvalidDurationTier),
		errors.Is(err, service.ErrInvalidPhone):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrVehicleAlreadyCheckedOut),
		errors.Is(err, service.ErrVehicleNotFlagged),
		errors.Is(err, repository.ErrDuplicatePlate):
		return http.StatusConflict

	// Configuration errors - the request is fine, the pricing setup is not
	case errors.Is(err, service.ErrPricingNotConfigured),
		errors.Is(err, service.ErrPackageNotPriced):
		return http.StatusUnprocessableEntity

	// Gateway outcomes
	case errors.Is(err, service.ErrPaymentRejected):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrPaymentStillPending):
		return http.StatusAccepted
	case errors.Is(err, service.ErrInitializationFailed):
		return http.StatusBadGateway

	// Default to internal server error (covers ErrPaymentNotResolvable)
	default:
		return http.StatusInternalServerError
	}
}

// adviceFor returns the user-facing follow-up action for payment errors.
func adviceFor(err error) string {
	switch {
	case errors.Is(err, service.ErrPricingNotConfigured),
		errors.Is(err, service.ErrPackageNotPriced):
		return "Pricing is not set up for this vehicle. Please contact an administrator."
	case errors.Is(err, service.ErrInitializationFailed):
		return "The payment session could not be created. Please retry; a new reference will be issued."
	case errors.Is(err, service.ErrPaymentRejected):
		return "The payment did not go through. You have not been charged; please retry."
	case errors.Is(err, service.ErrPaymentStillPending):
		return "The payment is still being processed. Check back shortly and re-verify with the same reference."
	case errors.Is(err, service.ErrPaymentNotResolvable):
		return "Something went wrong finalizing the payment. Please contact support with your reference."
	default:
		return ""
	}
}
