package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/minegrid/internal/domain"
)

type ProfileHandler struct {
	userService UserServicer
}

func NewProfileHandler(userService UserServicer) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

type ProfileResponse struct {
	UserResponse
	CanWithdraw               bool  `json:"can_withdraw"`
	WithdrawalUnlockInSeconds int64 `json:"withdrawal_unlock_in_seconds"`
}

// Index GET RouteGroup + ProfileRoute. Профиль текущего юзера: баланс, счетчики
// и статус доступности вывода с обратным отсчетом.
func (h *ProfileHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userService.GetByID(ctx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	canWithdraw, remaining := domain.WithdrawalEligibility(user.CreatedAt, time.Now())

	c.JSON(http.StatusOK, ProfileResponse{
		UserResponse:              userResponse(user),
		CanWithdraw:               canWithdraw,
		WithdrawalUnlockInSeconds: int64(remaining.Seconds()),
	})
}

type UpdateProfileParams struct {
	Name string `binding:"required,max=100" json:"name"`
}

// Update PATCH RouteGroup + ProfileRoute. Смена отображаемого имени.
func (h *ProfileHandler) Update(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params UpdateProfileParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, err := h.userService.UpdateName(ctx, currentUserID, params.Name)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}
