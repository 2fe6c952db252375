package handler

import (
	"campus-pay/internal/adapter/http/dto"
	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/pkg/apperror"
	"campus-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles administrative account provisioning.
type AdminHandler struct {
	provisionSvc ports.ProvisionService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(provisionSvc ports.ProvisionService) *AdminHandler {
	return &AdminHandler{provisionSvc: provisionSvc}
}

// CreateAccount handles POST /api/v1/admin/accounts.
func (h *AdminHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	account, err := h.provisionSvc.CreateAccount(c.Request.Context(), ports.ProvisionRequest{
		Email:       req.Email,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.AccountResponse{
		ID:          account.ID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
		Balance:     account.Balance,
	})
}
