package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tanapark/internal/domain"
	"tanapark/internal/repository"
)

// ValetHandler handles HTTP requests for valets.
type ValetHandler struct {
	valetRepo repository.ValetRepository
}

// NewValetHandler creates a new ValetHandler.
func NewValetHandler(valetRepo repository.ValetRepository) *ValetHandler {
	return &ValetHandler{valetRepo: valetRepo}
}

// RegisterValetRequest is the HTTP request body for registering a valet.
type RegisterValetRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Role       string `json:"role,omitempty"` // ADMIN, MANAGER, VALET
	PriceLevel string `json:"price_level"`
}

// ValetResponse is the HTTP response for valet operations.
type ValetResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	PriceLevel string `json:"price_level"`
}

// Register handles POST /v1/valets
func (h *ValetHandler) Register(c *gin.Context) {
	var req RegisterValetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	role := domain.ValetRole(req.Role)
	switch role {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleValet:
	case "":
		role = domain.RoleValet
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid role"})
		return
	}

	valet := &domain.Valet{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Phone:      req.Phone,
		Role:       role,
		PriceLevel: req.PriceLevel,
		CreatedAt:  time.Now(),
	}

	if err := h.valetRepo.Create(c.Request.Context(), valet); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, ValetResponse{
		ID:         valet.ID,
		Name:       valet.Name,
		Phone:      valet.Phone,
		Role:       string(valet.Role),
		PriceLevel: valet.PriceLevel,
	})
}

// GetAll handles GET /v1/valets
func (h *ValetHandler) GetAll(c *gin.Context) {
	valets, err := h.valetRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]ValetResponse, 0, len(valets))
	for _, v := range valets {
		resp = append(resp, ValetResponse{
			ID:         v.ID,
			Name:       v.Name,
			Phone:      v.Phone,
			Role:       string(v.Role),
			PriceLevel: v.PriceLevel,
		})
	}

	respondJSON(c, http.StatusOK, resp)
}
