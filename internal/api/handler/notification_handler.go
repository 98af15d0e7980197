package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobsnearby/internal/api/domain"
	"github.com/cuongbtq/jobsnearby/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// ListNotifications handles GET /{user,employer}/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	sess := CurrentSession(c)

	notifications, err := h.notifications.ListNotifications(c.Request.Context(), sess.UserID, notificationLimit)
	if err != nil {
		internalError(c, h.logger, "Failed to list notifications", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": dto.NewNotificationDTOs(notifications),
	})
}

// MarkRead handles POST /{user,employer}/notifications/:notification_id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	sess := CurrentSession(c)
	notificationID := c.Param("notification_id")

	h.logger.Info("MarkRead called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("notification_id", notificationID),
	)

	err := h.notifications.MarkNotificationRead(c.Request.Context(), notificationID, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(c, "Notification not found")
			return
		}
		internalError(c, h.logger, "Failed to mark notification read", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
