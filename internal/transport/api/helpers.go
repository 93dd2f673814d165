package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/minegrid/internal/domain"
	"github.com/fsdevblog/minegrid/internal/transport/api/middlewares"
)

func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}

func getIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return id, nil
}

// abortWithDomainError мапит доменные ошибки на HTTP статусы. Всё, что не является
// доменной ошибкой, уходит как 500 с приватным типом (не светим внутренности).
func abortWithDomainError(c *gin.Context, err error) {
	var ineligible *domain.IneligibleWithdrawalError

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrNotEnoughBalance):
		c.AbortWithStatus(http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrValidation):
		c.AbortWithStatus(http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrStaleState):
		c.AbortWithStatus(http.StatusConflict)
	case errors.As(err, &ineligible):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":             "account is not eligible for withdrawals yet",
			"remaining_seconds": int64(ineligible.Remaining.Seconds()),
		})
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
