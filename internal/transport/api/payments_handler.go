package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentsHandler принимает колбэки платежного шлюза о зачислении пополнений.
// Проверка подписи колбэка — забота обвязки конкретного шлюза перед роутером;
// здесь обрабатывается уже доверенный запрос.
type PaymentsHandler struct {
	userService UserServicer
}

func NewPaymentsHandler(userService UserServicer) *PaymentsHandler {
	return &PaymentsHandler{
		userService: userService,
	}
}

type PaymentCallbackParams struct {
	Reference string          `binding:"required,max=191" json:"reference"`
	UserID    int64           `binding:"required,gt=0"    json:"user_id"`
	Amount    decimal.Decimal `binding:"required"         json:"amount"`
	Status    string          `binding:"required"         json:"status"`
}

// Callback POST RouteGroup + PaymentsCallbackRoute. Успешный платеж зачисляется на
// баланс юзера; любой другой статус подтверждается без движения средств.
func (h *PaymentsHandler) Callback(c *gin.Context) {
	var params PaymentCallbackParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	if params.Status != "success" {
		c.AbortWithStatus(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.userService.Deposit(ctx, params.UserID, params.Amount); err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.AbortWithStatus(http.StatusOK)
}
