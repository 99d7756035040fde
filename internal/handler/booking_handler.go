package handler

import (
	"net/http"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/lease"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/notify"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingRequest covers both viewing requests and lease applications,
// discriminated by Type.
type BookingRequest struct {
	PropertyID          uint            `json:"property_id"`
	Type                string          `json:"type"`
	ViewingDate         *time.Time      `json:"viewing_date,omitempty"`
	ViewingTime         string          `json:"viewing_time,omitempty"`
	MoveInDate          *time.Time      `json:"move_in_date,omitempty"`
	LeaseDurationMonths int             `json:"lease_duration_months,omitempty"`
	MonthlyIncome       decimal.Decimal `json:"monthly_income,omitempty"`
	Employer            string          `json:"employer,omitempty"`
	References          string          `json:"references,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

// CreateBooking accepts a viewing request or a lease application for an
// available property.
func CreateBooking(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID := currentUserID(c)

	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse booking request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Type != model.BookingTypeViewing && req.Type != model.BookingTypeApplication {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be viewing or application"})
	}

	var property model.Property
	if err := database.GetDB().First(&property, "id = ?", req.PropertyID).Error; err != nil {
		log.Warn("Property not found", zap.Uint("property_id", req.PropertyID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}

	if property.Status != model.PropertyStatusAvailable {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "property is not available"})
	}

	switch req.Type {
	case model.BookingTypeViewing:
		return createViewing(c, &req, &property, tenantID)
	default:
		return createApplication(c, &req, &property, tenantID)
	}
}

func createViewing(c echo.Context, req *BookingRequest, property *model.Property, tenantID uint) error {
	log := logger.FromContext(c)

	if req.ViewingDate == nil || req.ViewingTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "viewing date and time are required"})
	}

	booking := model.Booking{
		PropertyID:  property.ID,
		TenantID:    tenantID,
		LandlordID:  property.LandlordID,
		Type:        model.BookingTypeViewing,
		Status:      model.BookingStatusPending,
		ViewingDate: req.ViewingDate,
		ViewingTime: req.ViewingTime,
		Notes:       req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&booking).Error; err != nil {
		log.Error("Failed to create viewing booking", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	prometheus.BookingCounter.With(map[string]string{"type": model.BookingTypeViewing}).Inc()
	log.Info("Viewing booking created",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("property_id", property.ID))

	notify.Send(database.GetDB(), property.LandlordID, model.NotificationBookingReceived,
		"New viewing request",
		"A tenant requested a viewing of "+property.Title,
		map[string]interface{}{
			"booking_id":     booking.ID,
			"property_id":    property.ID,
			"property_title": property.Title,
			"viewing_date":   req.ViewingDate,
			"viewing_time":   req.ViewingTime,
		})

	return c.JSON(http.StatusCreated, echo.Map{"booking": booking})
}

func createApplication(c echo.Context, req *BookingRequest, property *model.Property, tenantID uint) error {
	log := logger.FromContext(c)

	if req.MoveInDate == nil || req.LeaseDurationMonths == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "move-in date and lease duration are required"})
	}

	if req.LeaseDurationMonths < property.MinimumStayMonths {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "lease duration is below the minimum stay for this property",
			"details": echo.Map{"minimum_stay_months": property.MinimumStayMonths},
		})
	}

	// Income check: declared monthly income must cover the rent with margin
	if !req.MonthlyIncome.IsZero() {
		required := property.MonthlyRent.Mul(lease.MinIncomeRatio)
		if req.MonthlyIncome.LessThan(required) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":   "monthly income does not meet the requirement for this property",
				"details": echo.Map{"required_monthly_income": required},
			})
		}
	}

	application := model.Application{
		PropertyID:          property.ID,
		TenantID:            tenantID,
		LandlordID:          property.LandlordID,
		Status:              model.ApplicationStatusSubmitted,
		MoveInDate:          *req.MoveInDate,
		LeaseDurationMonths: req.LeaseDurationMonths,
		MonthlyIncome:       req.MonthlyIncome,
		Employer:            req.Employer,
		References:          req.References,
	}

	booking := model.Booking{
		PropertyID: property.ID,
		TenantID:   tenantID,
		LandlordID: property.LandlordID,
		Type:       model.BookingTypeApplication,
		Status:     model.BookingStatusPending,
		Notes:      req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// The application and its tracking booking must land together
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&application).Error; err != nil {
			return err
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		log.Error("Failed to create application", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create application"})
	}

	prometheus.BookingCounter.With(map[string]string{"type": model.BookingTypeApplication}).Inc()
	log.Info("Lease application submitted",
		zap.Uint("application_id", application.ID),
		zap.Uint("booking_id", booking.ID),
		zap.Uint("property_id", property.ID))

	notify.Send(database.GetDB(), property.LandlordID, model.NotificationApplicationReceived,
		"New lease application",
		"A tenant applied to lease "+property.Title,
		map[string]interface{}{
			"application_id": application.ID,
			"property_id":    property.ID,
			"property_title": property.Title,
			"move_in_date":   req.MoveInDate,
			"lease_duration": req.LeaseDurationMonths,
		})

	return c.JSON(http.StatusCreated, echo.Map{
		"application": application,
		"booking":     booking,
	})
}

// ListBookings returns the caller's bookings, on whichever side of the
// marketplace they are.
func ListBookings(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)

	var bookings []model.Booking
	query := database.GetDB().Where("tenant_id = ? OR landlord_id = ?", userID, userID)

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if bookingType := c.QueryParam("type"); bookingType != "" {
		query = query.Where("type = ?", bookingType)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		log.Error("Failed to list bookings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list bookings"})
	}

	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings, "count": len(bookings)})
}

var bookingTransitions = map[string]string{
	"confirm":  model.BookingStatusConfirmed,
	"complete": model.BookingStatusCompleted,
	"cancel":   model.BookingStatusCancelled,
}

// UpdateBooking lets the landlord confirm, complete, or cancel a booking
func UpdateBooking(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	newStatus, ok := bookingTransitions[req.Action]
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be confirm, complete, or cancel"})
	}

	var booking model.Booking
	if err := database.GetDB().First(&booking, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}

	if booking.LandlordID != currentUserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the landlord can update this booking"})
	}

	// Completed and cancelled are terminal
	if booking.Status == model.BookingStatusCompleted || booking.Status == model.BookingStatusCancelled {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "booking is already " + booking.Status})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Model(&booking).Update("status", newStatus).Error; err != nil {
		log.Error("Failed to update booking", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}

	log.Info("Booking updated",
		zap.Uint("booking_id", booking.ID),
		zap.String("status", newStatus))

	return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}
