package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/cache"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PropertyRequest defines the structure for property creation/update requests
type PropertyRequest struct {
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Address           string          `json:"address"`
	City              string          `json:"city"`
	Bedrooms          int             `json:"bedrooms"`
	Bathrooms         int             `json:"bathrooms"`
	AreaSqm           float64         `json:"area_sqm"`
	Status            string          `json:"status"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent"`
	SecurityDeposit   decimal.Decimal `json:"security_deposit"`
	MinimumStayMonths int             `json:"minimum_stay_months"`
	AvailableFrom     *time.Time      `json:"available_from"`
}

var propertyStatuses = map[string]bool{
	model.PropertyStatusDraft:       true,
	model.PropertyStatusAvailable:   true,
	model.PropertyStatusRented:      true,
	model.PropertyStatusMaintenance: true,
}

func propertyCacheKey(id string) string {
	return fmt.Sprintf("property:%s", id)
}

// CreateProperty creates a new listing for the authenticated landlord
func CreateProperty(c echo.Context) error {
	log := logger.FromContext(c)

	if currentRole(c) != model.RoleLandlord {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only landlords can create properties"})
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse property request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if !req.MonthlyRent.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "monthly rent must be positive"})
	}

	status := req.Status
	if status == "" {
		status = model.PropertyStatusDraft
	}
	if !propertyStatuses[status] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property status"})
	}

	minStay := req.MinimumStayMonths
	if minStay < 1 {
		minStay = 1
	}

	property := model.Property{
		LandlordID:        currentUserID(c),
		Title:             req.Title,
		Description:       req.Description,
		Address:           req.Address,
		City:              req.City,
		Bedrooms:          req.Bedrooms,
		Bathrooms:         req.Bathrooms,
		AreaSqm:           req.AreaSqm,
		Status:            status,
		MonthlyRent:       req.MonthlyRent,
		SecurityDeposit:   req.SecurityDeposit,
		MinimumStayMonths: minStay,
		AvailableFrom:     req.AvailableFrom,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&property).Error; err != nil {
		log.Error("Failed to create property", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create property"})
	}

	log.Info("Property created", zap.Uint("property_id", property.ID), zap.Uint("landlord_id", property.LandlordID))

	return c.JSON(http.StatusCreated, echo.Map{"property": property})
}

// ListProperties returns available listings with optional filters
func ListProperties(c echo.Context) error {
	log := logger.FromContext(c)

	db := database.GetDB()
	var properties []model.Property

	query := db.Where("status = ?", model.PropertyStatusAvailable)

	if city := c.QueryParam("city"); city != "" {
		query = query.Where("city = ?", city)
	}
	if bedrooms := c.QueryParam("bedrooms"); bedrooms != "" {
		if n, err := strconv.Atoi(bedrooms); err == nil {
			query = query.Where("bedrooms >= ?", n)
		} else {
			log.Warn("Invalid bedrooms parameter", zap.String("value", bedrooms))
		}
	}
	if maxRent := c.QueryParam("max_rent"); maxRent != "" {
		if rent, err := decimal.NewFromString(maxRent); err == nil {
			query = query.Where("monthly_rent <= ?", rent)
		} else {
			log.Warn("Invalid max_rent parameter", zap.String("value", maxRent))
		}
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if err := query.Order("created_at DESC").Find(&properties).Error; err != nil {
		log.Error("Failed to list properties", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list properties"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"properties": properties,
		"count":      len(properties),
	})
}

// GetProperty returns a single listing, served from cache when possible
func GetProperty(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var property model.Property
	if cache.GetJSON(c.Request().Context(), propertyCacheKey(id), &property) {
		return c.JSON(http.StatusOK, echo.Map{"property": property})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	if err := database.GetDB().First(&property, "id = ?", id).Error; err != nil {
		log.Warn("Property not found", zap.String("property_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}

	cache.SetJSON(c.Request().Context(), propertyCacheKey(id), property)

	return c.JSON(http.StatusOK, echo.Map{"property": property})
}

// UpdateProperty updates a listing owned by the authenticated landlord
func UpdateProperty(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var property model.Property
	if err := database.GetDB().First(&property, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}

	if property.LandlordID != currentUserID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not own this property"})
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse property update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Status != "" {
		if !propertyStatuses[req.Status] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid property status"})
		}
		updates["status"] = req.Status
	}
	if req.MonthlyRent.IsPositive() {
		updates["monthly_rent"] = req.MonthlyRent
	}
	if req.SecurityDeposit.IsPositive() {
		updates["security_deposit"] = req.SecurityDeposit
	}
	if req.MinimumStayMonths > 0 {
		updates["minimum_stay_months"] = req.MinimumStayMonths
	}

	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no updatable fields supplied"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Model(&property).Updates(updates).Error; err != nil {
		log.Error("Failed to update property", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update property"})
	}

	cache.Invalidate(c.Request().Context(), propertyCacheKey(id))

	return c.JSON(http.StatusOK, echo.Map{"property": property})
}
