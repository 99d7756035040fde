package notify

import (
	"encoding/json"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Send queues a notification for a user. Delivery is fire-and-forget: a
// failure here must never roll back the state change that triggered it, so
// the error is logged and swallowed. Contextual data is JSON-encoded onto
// the row for the email template.
func Send(db *gorm.DB, userID uint, notifType, title, message string, data map[string]interface{}) {
	log := logger.GetLogger()

	notification := model.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	if len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			log.Warn("Failed to encode notification data",
				zap.String("type", notifType), zap.Error(err))
		} else {
			notification.Data = string(encoded)
		}
	}

	if err := db.Create(&notification).Error; err != nil {
		log.Error("Failed to queue notification",
			zap.Uint("user_id", userID),
			zap.String("type", notifType),
			zap.Error(err))
		prometheus.RecordNotification(notifType, "failed")
		return
	}

	prometheus.RecordNotification(notifType, "queued")
}
