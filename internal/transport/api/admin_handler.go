package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/service"
)

// AdminHandler обслуживает админские операции: управление каталогом и обработку
// заявок на вывод. Все роуты закрыты middlewares.AdminRequired.
type AdminHandler struct {
	catalogService    CatalogServicer
	withdrawalService WithdrawalServicer
}

func NewAdminHandler(catalogService CatalogServicer, withdrawalService WithdrawalServicer) *AdminHandler {
	return &AdminHandler{
		catalogService:    catalogService,
		withdrawalService: withdrawalService,
	}
}

type CreateMinerParams struct {
	Name         string          `binding:"required,max=100" json:"name"`
	Description  string          `binding:"max=500"          json:"description"`
	Price        decimal.Decimal `binding:"required"         json:"price"`
	DurationDays int32           `binding:"required,gt=0"    json:"duration_days"`
}

// CreateMiner POST RouteGroup + AdminMinersRoute. Создает шаблон пакета; сумма
// выплаты выводится сервисом из цены и срока.
func (h *AdminHandler) CreateMiner(c *gin.Context) {
	var params CreateMinerParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	miner, err := h.catalogService.Create(ctx, service.CreateMinerArgs{
		Name:         params.Name,
		Description:  params.Description,
		Price:        params.Price,
		DurationDays: params.DurationDays,
	})
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, minerResponse(miner))
}

// ListMiners GET RouteGroup + AdminMinersRoute. Все шаблоны, включая скрытые.
func (h *AdminHandler) ListMiners(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	miners, err := h.catalogService.ListAll(ctx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, minersResponse(miners))
}

// ToggleMiner PATCH RouteGroup + AdminMinersRoute + /:id/toggle.
func (h *AdminHandler) ToggleMiner(c *gin.Context) {
	id, idErr := getIDParam(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	miner, err := h.catalogService.ToggleActive(ctx, id)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, minerResponse(miner))
}

// ListWithdrawals GET RouteGroup + AdminWithdrawalsRoute. Все заявки, pending первыми.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawals, err := h.withdrawalService.GetAll(ctx)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawalsResponse(withdrawals))
}

// ApproveWithdrawal POST RouteGroup + AdminWithdrawalsRoute + /:id/approve.
// 409 — заявка уже обработана.
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	h.transitionWithdrawal(c, h.withdrawalService.Approve)
}

// RejectWithdrawal POST RouteGroup + AdminWithdrawalsRoute + /:id/reject.
// Зарезервированная сумма возвращается на баланс юзера. 409 — заявка уже обработана.
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	h.transitionWithdrawal(c, h.withdrawalService.Reject)
}

func (h *AdminHandler) transitionWithdrawal(
	c *gin.Context,
	transition func(ctx context.Context, id int64, now time.Time) (*domain.Withdrawal, error),
) {
	id, idErr := getIDParam(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	withdrawal, err := transition(ctx, id, time.Now())
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, withdrawalResponse(withdrawal))
}
