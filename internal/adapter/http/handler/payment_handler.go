package handler

import (
	"campus-pay/internal/adapter/http/dto"
	"campus-pay/internal/adapter/http/middleware"
	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/pkg/apperror"
	"campus-pay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles transfer execution.
type PaymentHandler struct {
	transferSvc ports.TransferService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(transferSvc ports.TransferService) *PaymentHandler {
	return &PaymentHandler{transferSvc: transferSvc}
}

// ExecutePayment handles POST /api/v1/payments. The payer is always
// the authenticated account; it cannot be supplied in the body.
func (h *PaymentHandler) ExecutePayment(c *gin.Context) {
	payerID, ok := middleware.AccountID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	payeeID, err := uuid.Parse(req.PayeeID)
	if err != nil {
		response.Error(c, apperror.Validation("payee_id must be a UUID"))
		return
	}

	txn, err := h.transferSvc.ExecuteTransfer(c.Request.Context(), payerID, payeeID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toTransactionResponse(txn))
}

// toTransactionResponse converts domain.Transaction to DTO.
func toTransactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:        txn.ID.String(),
		PayerID:   txn.PayerID.String(),
		PayeeID:   txn.PayeeID.String(),
		Amount:    txn.Amount,
		CreatedAt: txn.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
