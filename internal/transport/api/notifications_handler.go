package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct {
	notificationService NotificationServicer
}

func NewNotificationsHandler(notificationService NotificationServicer) *NotificationsHandler {
	return &NotificationsHandler{
		notificationService: notificationService,
	}
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Index GET RouteGroup + NotificationsRoute. Последние уведомления текущего юзера.
func (h *NotificationsHandler) Index(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	notifications, err := h.notificationService.GetByUserID(ctx, currentUserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]NotificationResponse, len(notifications))
	for i, notification := range notifications {
		response[i] = NotificationResponse{
			ID:        notification.ID,
			Title:     notification.Title,
			Message:   notification.Message,
			Severity:  string(notification.Severity),
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

// MarkRead POST RouteGroup + NotificationsRoute + /:id/read.
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	id, idErr := getIDParam(c, "id")
	if idErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, idErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.notificationService.MarkRead(ctx, currentUserID, id); err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.AbortWithStatus(http.StatusOK)
}
