package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestApplication(t *testing.T, property *model.Property, tenantID uint, status string) *model.Application {
	t.Helper()
	application := &model.Application{
		PropertyID:          property.ID,
		TenantID:            tenantID,
		LandlordID:          property.LandlordID,
		Status:              status,
		MoveInDate:          time.Now().Add(30 * 24 * time.Hour),
		LeaseDurationMonths: 12,
	}
	require.NoError(t, database.GetDB().Create(application).Error)
	return application
}

func TestApproveApplication(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusSubmitted)

	c, rec := newJSONContext(t, http.MethodPatch, "/applications/1", map[string]interface{}{
		"action":     "approve",
		"next_steps": "We will send the contract shortly",
	}, landlord)
	c.SetParamNames("id")
	c.SetParamValues(intToString(application.ID))

	require.NoError(t, ReviewApplication(c))
	assertStatus(t, rec, http.StatusOK)

	var updated model.Application
	require.NoError(t, database.GetDB().First(&updated, application.ID).Error)
	assert.Equal(t, model.ApplicationStatusApproved, updated.Status)
	assert.NotNil(t, updated.ApprovedAt)
	assert.NotNil(t, updated.ReviewedAt)

	assert.Equal(t, int64(1), countNotifications(t, tenant.ID, model.NotificationApplicationApproved))
}

func TestRejectApplicationRequiresReason(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusUnderReview)

	c, rec := newJSONContext(t, http.MethodPatch, "/applications/1", map[string]interface{}{
		"action": "reject",
	}, landlord)
	c.SetParamNames("id")
	c.SetParamValues(intToString(application.ID))

	require.NoError(t, ReviewApplication(c))
	assertStatus(t, rec, http.StatusBadRequest)

	// Row unchanged
	var unchanged model.Application
	require.NoError(t, database.GetDB().First(&unchanged, application.ID).Error)
	assert.Equal(t, model.ApplicationStatusUnderReview, unchanged.Status)
}

func TestRejectApplication(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusSubmitted)

	c, rec := newJSONContext(t, http.MethodPatch, "/applications/1", map[string]interface{}{
		"action":           "reject",
		"rejection_reason": "income verification failed",
	}, landlord)
	c.SetParamNames("id")
	c.SetParamValues(intToString(application.ID))

	require.NoError(t, ReviewApplication(c))
	assertStatus(t, rec, http.StatusOK)

	var updated model.Application
	require.NoError(t, database.GetDB().First(&updated, application.ID).Error)
	assert.Equal(t, model.ApplicationStatusRejected, updated.Status)
	assert.Equal(t, "income verification failed", updated.RejectionReason)
	assert.NotNil(t, updated.RejectedAt)

	assert.Equal(t, int64(1), countNotifications(t, tenant.ID, model.NotificationApplicationRejected))
}

func TestReviewApplicationWrongLandlord(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	otherLandlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusSubmitted)

	c, rec := newJSONContext(t, http.MethodPatch, "/applications/1", map[string]interface{}{
		"action": "approve",
	}, otherLandlord)
	c.SetParamNames("id")
	c.SetParamValues(intToString(application.ID))

	require.NoError(t, ReviewApplication(c))
	assertStatus(t, rec, http.StatusForbidden)
}

func TestReviewApplicationFromTerminalState(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)

	for _, status := range []string{model.ApplicationStatusApproved, model.ApplicationStatusRejected} {
		application := createTestApplication(t, property, tenant.ID, status)

		c, rec := newJSONContext(t, http.MethodPatch, "/applications/1", map[string]interface{}{
			"action": "approve",
		}, landlord)
		c.SetParamNames("id")
		c.SetParamValues(intToString(application.ID))

		require.NoError(t, ReviewApplication(c))
		assertStatus(t, rec, http.StatusBadRequest)

		// Terminal status untouched
		var unchanged model.Application
		require.NoError(t, database.GetDB().First(&unchanged, application.ID).Error)
		assert.Equal(t, status, unchanged.Status)
	}
}

func TestMoveApplicationUnderReview(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusSubmitted)

	c, rec := newJSONContext(t, http.MethodPatch, "/applications/1", map[string]interface{}{
		"action": "review",
	}, landlord)
	c.SetParamNames("id")
	c.SetParamValues(intToString(application.ID))

	require.NoError(t, ReviewApplication(c))
	assertStatus(t, rec, http.StatusOK)

	var updated model.Application
	require.NoError(t, database.GetDB().First(&updated, application.ID).Error)
	assert.Equal(t, model.ApplicationStatusUnderReview, updated.Status)
	assert.NotNil(t, updated.ReviewedAt)

	// No tenant notification for the intermediate state
	assert.Zero(t, countNotifications(t, tenant.ID, model.NotificationApplicationApproved))
	assert.Zero(t, countNotifications(t, tenant.ID, model.NotificationApplicationRejected))
}
