package handler

import (
	"net/http"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListNotifications returns the caller's notifications, newest first
func ListNotifications(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)

	var notifications []model.Notification
	query := database.GetDB().Where("user_id = ?", userID)

	if c.QueryParam("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		log.Error("Failed to list notifications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list notifications"})
	}

	return c.JSON(http.StatusOK, echo.Map{"notifications": notifications, "count": len(notifications)})
}

// MarkNotificationRead marks one of the caller's notifications as read
func MarkNotificationRead(c echo.Context) error {
	userID := currentUserID(c)
	id := c.Param("id")

	var notification model.Notification
	if err := database.GetDB().First(&notification, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
	}

	if notification.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your notification"})
	}

	now := time.Now()
	if err := database.GetDB().Model(&notification).Update("read_at", now).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notification"})
	}

	return c.JSON(http.StatusOK, echo.Map{"notification": notification})
}
