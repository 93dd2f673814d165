package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/service"
)

type WithdrawalsHandler struct {
	withdrawalService WithdrawalServicer
}

func NewWithdrawalsHandler(withdrawalService WithdrawalServicer) *WithdrawalsHandler {
	return &WithdrawalsHandler{
		withdrawalService: withdrawalService,
	}
}

type WithdrawalParams struct {
	Amount        decimal.Decimal `binding:"required"         json:"amount"`
	BankName      string          `binding:"required,max=100" json:"bank_name"`
	AccountNumber string          `binding:"required,max=34"  json:"account_number"`
	AccountName   string          `binding:"required,max=100" json:"account_name"`
}

// Create POST RouteGroup + WithdrawalsRoute. Подача заявки на вывод средств.
// 403 — аккаунт моложе 48 часов, 402 — недостаточно средств, 422 — сумма меньше
// минимальной.
func (h *WithdrawalsHandler) Create(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params WithdrawalParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := h.withdrawalService.Submit(ctx, service.SubmitWithdrawalArgs{
		UserID:        currentUserID,
		Amount:        params.Amount,
		BankName:      params.BankName,
		AccountNumber: params.AccountNumber,
		AccountName:   params.AccountName,
	}, time.Now())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, withdrawalResponse(withdrawal))
}

type WithdrawalResponse struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Amount      float64    `json:"amount"`
	BankName    string     `json:"bank_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

func withdrawalResponse(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:          w.ID,
		UserID:      w.UserID,
		Amount:      w.Amount.InexactFloat64(),
		BankName:    w.BankName,
		Status:      string(w.Status),
		CreatedAt:   w.CreatedAt,
		ProcessedAt: w.ProcessedAt,
	}
}

func withdrawalsResponse(withdrawals []domain.Withdrawal) []WithdrawalResponse {
	response := make([]WithdrawalResponse, len(withdrawals))
	for i := range withdrawals {
		response[i] = withdrawalResponse(&withdrawals[i])
	}
	return response
}

// Index GET RouteGroup + WithdrawalsRoute. Заявки текущего юзера, новые первыми.
func (h *WithdrawalsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawals, err := h.withdrawalService.GetByUserID(ctx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawalsResponse(withdrawals))
}
