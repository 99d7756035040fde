package handler

import (
	"net/http"
	"testing"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractLifecycle(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusApproved)

	// Generate the contract from the approved application
	c, rec := newJSONContext(t, http.MethodPost, "/contracts", map[string]interface{}{
		"application_id": application.ID,
	}, landlord)
	require.NoError(t, CreateContract(c))
	assertStatus(t, rec, http.StatusCreated)

	var contract model.Contract
	require.NoError(t, database.GetDB().First(&contract, "application_id = ?", application.ID).Error)
	assert.Equal(t, model.ContractStatusDraft, contract.Status)
	assert.Equal(t, application.MoveInDate.Unix(), contract.LeaseStartDate.Unix())
	assert.Equal(t, application.MoveInDate.AddDate(0, application.LeaseDurationMonths, 0).Unix(),
		contract.LeaseEndDate.Unix())
	assert.True(t, contract.MonthlyRent.Equal(property.MonthlyRent))

	// Both parties are told the contract is ready
	assert.Equal(t, int64(1), countNotifications(t, tenant.ID, model.NotificationContractReady))
	assert.Equal(t, int64(1), countNotifications(t, landlord.ID, model.NotificationContractReady))

	// Tenant signs first: not fully signed yet
	c, rec = newJSONContext(t, http.MethodPatch, "/contracts/1", map[string]interface{}{
		"action":         "sign",
		"signature_data": "data:image/png;base64,tenant",
	}, tenant)
	c.SetParamNames("id")
	c.SetParamValues(intToString(contract.ID))
	require.NoError(t, SignContract(c))
	assertStatus(t, rec, http.StatusOK)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["is_fully_signed"])

	require.NoError(t, database.GetDB().First(&contract, contract.ID).Error)
	assert.Equal(t, model.ContractStatusDraft, contract.Status)
	assert.NotNil(t, contract.TenantSignedAt)
	assert.Nil(t, contract.LandlordSignedAt)

	// Only the landlord is nudged about the outstanding signature
	assert.Equal(t, int64(1), countNotifications(t, landlord.ID, model.NotificationAwaitingSignature))
	assert.Zero(t, countNotifications(t, tenant.ID, model.NotificationAwaitingSignature))

	// Landlord signs: contract flips to signed
	c, rec = newJSONContext(t, http.MethodPatch, "/contracts/1", map[string]interface{}{
		"action":         "sign",
		"signature_data": "data:image/png;base64,landlord",
	}, landlord)
	c.SetParamNames("id")
	c.SetParamValues(intToString(contract.ID))
	require.NoError(t, SignContract(c))
	assertStatus(t, rec, http.StatusOK)

	body = decodeBody(t, rec)
	assert.Equal(t, true, body["is_fully_signed"])

	require.NoError(t, database.GetDB().First(&contract, contract.ID).Error)
	assert.Equal(t, model.ContractStatusSigned, contract.Status)
	assert.NotNil(t, contract.LandlordSignedAt)
	assert.NotNil(t, contract.CompletedAt)

	// Both parties hear about the fully signed contract
	assert.Equal(t, int64(1), countNotifications(t, tenant.ID, model.NotificationContractSigned))
	assert.Equal(t, int64(1), countNotifications(t, landlord.ID, model.NotificationContractSigned))

	// The property comes off the market
	var updatedProperty model.Property
	require.NoError(t, database.GetDB().First(&updatedProperty, property.ID).Error)
	assert.Equal(t, model.PropertyStatusRented, updatedProperty.Status)
}

func TestCreateContractRequiresApprovedApplication(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)

	for _, status := range []string{
		model.ApplicationStatusSubmitted,
		model.ApplicationStatusUnderReview,
		model.ApplicationStatusRejected,
	} {
		application := createTestApplication(t, property, tenant.ID, status)

		c, rec := newJSONContext(t, http.MethodPost, "/contracts", map[string]interface{}{
			"application_id": application.ID,
		}, landlord)
		require.NoError(t, CreateContract(c))
		assertStatus(t, rec, http.StatusBadRequest)
	}

	var count int64
	database.GetDB().Model(&model.Contract{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateContractValidationFailure(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	// Tenant with an unusable email: derived contract cannot validate
	require.NoError(t, database.GetDB().Model(tenant).Update("email", "not-an-email").Error)

	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusApproved)

	c, rec := newJSONContext(t, http.MethodPost, "/contracts", map[string]interface{}{
		"application_id": application.ID,
	}, landlord)
	require.NoError(t, CreateContract(c))
	assertStatus(t, rec, http.StatusBadRequest)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["details"])

	// No contract row on validation failure
	var count int64
	database.GetDB().Model(&model.Contract{}).Count(&count)
	assert.Zero(t, count)
}

func TestSignContractTwiceRejected(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusApproved)

	c, _ := newJSONContext(t, http.MethodPost, "/contracts", map[string]interface{}{
		"application_id": application.ID,
	}, landlord)
	require.NoError(t, CreateContract(c))

	var contract model.Contract
	require.NoError(t, database.GetDB().First(&contract, "application_id = ?", application.ID).Error)

	sign := func() (int, error) {
		c, rec := newJSONContext(t, http.MethodPatch, "/contracts/1", map[string]interface{}{
			"action": "sign",
		}, tenant)
		c.SetParamNames("id")
		c.SetParamValues(intToString(contract.ID))
		err := SignContract(c)
		return rec.Code, err
	}

	code, err := sign()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	// Idempotent-reject, not idempotent-success
	code, err = sign()
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, code)

	var count int64
	database.GetDB().Model(&model.Signature{}).Where("contract_id = ?", contract.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSignContractNonParty(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	stranger := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusApproved)

	c, _ := newJSONContext(t, http.MethodPost, "/contracts", map[string]interface{}{
		"application_id": application.ID,
	}, landlord)
	require.NoError(t, CreateContract(c))

	var contract model.Contract
	require.NoError(t, database.GetDB().First(&contract, "application_id = ?", application.ID).Error)

	c, rec := newJSONContext(t, http.MethodPatch, "/contracts/1", map[string]interface{}{
		"action": "sign",
	}, stranger)
	c.SetParamNames("id")
	c.SetParamValues(intToString(contract.ID))
	require.NoError(t, SignContract(c))
	assertStatus(t, rec, http.StatusForbidden)
}

func TestGetContractPartyOnly(t *testing.T) {
	resetDB(t)
	landlord := createTestUser(t, model.RoleLandlord)
	tenant := createTestUser(t, model.RoleTenant)
	stranger := createTestUser(t, model.RoleTenant)
	property := createTestProperty(t, landlord.ID)
	application := createTestApplication(t, property, tenant.ID, model.ApplicationStatusApproved)

	c, _ := newJSONContext(t, http.MethodPost, "/contracts", map[string]interface{}{
		"application_id": application.ID,
	}, landlord)
	require.NoError(t, CreateContract(c))

	var contract model.Contract
	require.NoError(t, database.GetDB().First(&contract, "application_id = ?", application.ID).Error)

	c, rec := newJSONContext(t, http.MethodGet, "/contracts/1", nil, tenant)
	c.SetParamNames("id")
	c.SetParamValues(intToString(contract.ID))
	require.NoError(t, GetContract(c))
	assertStatus(t, rec, http.StatusOK)

	c, rec = newJSONContext(t, http.MethodGet, "/contracts/1", nil, stranger)
	c.SetParamNames("id")
	c.SetParamValues(intToString(contract.ID))
	require.NoError(t, GetContract(c))
	assertStatus(t, rec, http.StatusForbidden)
}
