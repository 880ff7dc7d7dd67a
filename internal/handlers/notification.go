package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/middleware"
	"messenger-service/internal/repositories"
)

// NotificationHandler lists stored notifications for users who were offline
// when the realtime event fired.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

func (h *NotificationHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	notifications, err := h.notificationRepo.ListNotifications(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := pathID(c, "notificationId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.notificationRepo.MarkRead(c.Request.Context(), middleware.UserIDFromContext(c), notificationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationRepo.MarkAllRead(c.Request.Context(), middleware.UserIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications read"})
}
