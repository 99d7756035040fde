package handler

import (
	"net/http"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/notify"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Review actions
const (
	reviewActionApprove = "approve"
	reviewActionReject  = "reject"
	reviewActionReview  = "review"
)

// ListApplications returns the caller's applications, tenant or landlord side
func ListApplications(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)

	var applications []model.Application
	query := database.GetDB().Where("tenant_id = ? OR landlord_id = ?", userID, userID)

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if err := query.Order("created_at DESC").Find(&applications).Error; err != nil {
		log.Error("Failed to list applications", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list applications"})
	}

	return c.JSON(http.StatusOK, echo.Map{"applications": applications, "count": len(applications)})
}

// ReviewApplication handles landlord review transitions on an application:
// approve, reject (with a reason), or move to under_review.
func ReviewApplication(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		Action          string `json:"action"`
		RejectionReason string `json:"rejection_reason,omitempty"`
		NextSteps       string `json:"next_steps,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse review request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Action != reviewActionApprove && req.Action != reviewActionReject && req.Action != reviewActionReview {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be approve, reject, or review"})
	}

	var application model.Application
	if err := database.GetDB().First(&application, "id = ?", id).Error; err != nil {
		log.Warn("Application not found", zap.String("application_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	}

	// Only the application's landlord may review it
	if application.LandlordID != currentUserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the landlord of this property can review the application"})
	}

	// Approved and rejected are terminal
	if !application.Reviewable() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application is already " + application.Status})
	}

	now := time.Now()
	updates := map[string]interface{}{"reviewed_at": now}

	switch req.Action {
	case reviewActionApprove:
		updates["status"] = model.ApplicationStatusApproved
		updates["approved_at"] = now
		if req.NextSteps != "" {
			updates["next_steps"] = req.NextSteps
		}
	case reviewActionReject:
		if req.RejectionReason == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a rejection reason is required"})
		}
		updates["status"] = model.ApplicationStatusRejected
		updates["rejected_at"] = now
		updates["rejection_reason"] = req.RejectionReason
	case reviewActionReview:
		updates["status"] = model.ApplicationStatusUnderReview
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Model(&application).Updates(updates).Error; err != nil {
		log.Error("Failed to update application", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update application"})
	}

	prometheus.ApplicationReviewCounter.With(map[string]string{"action": req.Action}).Inc()
	log.Info("Application reviewed",
		zap.Uint("application_id", application.ID),
		zap.String("action", req.Action))

	// Tenant is notified of the outcome with contextual data. Lookups here
	// are best effort: a missing title must not fail the transition.
	if req.Action == reviewActionApprove || req.Action == reviewActionReject {
		var property model.Property
		var landlord model.User
		database.GetDB().Select("title").First(&property, "id = ?", application.PropertyID)
		database.GetDB().Select("first_name", "last_name").First(&landlord, "id = ?", application.LandlordID)

		data := map[string]interface{}{
			"application_id": application.ID,
			"property_id":    application.PropertyID,
			"property_title": property.Title,
			"landlord_name":  landlord.FullName(),
		}

		if req.Action == reviewActionApprove {
			if req.NextSteps != "" {
				data["next_steps"] = req.NextSteps
			}
			notify.Send(database.GetDB(), application.TenantID, model.NotificationApplicationApproved,
				"Application approved",
				"Your application for "+property.Title+" was approved",
				data)
		} else {
			data["rejection_reason"] = req.RejectionReason
			notify.Send(database.GetDB(), application.TenantID, model.NotificationApplicationRejected,
				"Application rejected",
				"Your application for "+property.Title+" was rejected",
				data)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"application": application})
}
