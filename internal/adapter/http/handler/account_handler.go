package handler

import (
	"strconv"

	"campus-pay/internal/adapter/http/dto"
	"campus-pay/internal/adapter/http/middleware"
	"campus-pay/internal/core/ports"
	"campus-pay/pkg/apperror"
	"campus-pay/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account and ledger read endpoints.
type AccountHandler struct {
	ledgerSvc ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerSvc ports.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerSvc: ledgerSvc}
}

// GetMe handles GET /api/v1/accounts/me.
func (h *AccountHandler) GetMe(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	account, err := h.ledgerSvc.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.AccountResponse{
		ID:          account.ID.String(),
		Email:       account.Email,
		DisplayName: account.DisplayName,
		Role:        string(account.Role),
		Balance:     account.Balance,
	})
}

// ListTransactions handles GET /api/v1/transactions. It returns the
// authenticated account's received transfers, most recent first.
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.ledgerSvc.ListTransactions(c.Request.Context(), accountID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.LedgerEntryResponse{
			ID:               e.ID.String(),
			PayerID:          e.PayerID.String(),
			PayerDisplayName: e.PayerDisplayName,
			Amount:           e.Amount,
			CreatedAt:        e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	response.OK(c, dto.TransactionListResponse{
		Items: items,
		Count: len(items),
	})
}
