package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/lease"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/notify"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/config"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var platformFeePercent float64

// InitContractHandler initializes contract handling with configuration
func InitContractHandler(cfg *config.Config) {
	platformFeePercent = cfg.Platform.FeePercent
}

// CreateContract generates a draft contract from an approved application
func CreateContract(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)

	var req struct {
		ApplicationID uint `json:"application_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse contract request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var application model.Application
	if err := database.GetDB().First(&application, "id = ?", req.ApplicationID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "application not found"})
	}

	// Only the two parties can trigger generation
	if userID != application.TenantID && userID != application.LandlordID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not a party to this application"})
	}

	// Contracts come only from approved applications
	if application.Status != model.ApplicationStatusApproved {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application must be approved before a contract can be generated"})
	}

	var existing model.Contract
	if err := database.GetDB().First(&existing, "application_id = ?", application.ID).Error; err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a contract already exists for this application"})
	}

	var property model.Property
	if err := database.GetDB().First(&property, "id = ?", application.PropertyID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "property not found"})
	}

	var tenant, landlord model.User
	if err := database.GetDB().First(&tenant, "id = ?", application.TenantID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}
	if err := database.GetDB().First(&landlord, "id = ?", application.LandlordID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "landlord not found"})
	}

	contractData := lease.DeriveContract(&application, &property, &tenant, &landlord, platformFeePercent)

	// Nothing is persisted when the derived terms fail validation
	if validationErrs := contractData.Validate(); len(validationErrs) > 0 {
		log.Warn("Contract validation failed",
			zap.Uint("application_id", application.ID),
			zap.Strings("errors", validationErrs))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":   "contract validation failed",
			"details": validationErrs,
		})
	}

	contract := model.Contract{
		ApplicationID:   application.ID,
		PropertyID:      property.ID,
		TenantID:        tenant.ID,
		LandlordID:      landlord.ID,
		Status:          model.ContractStatusDraft,
		MonthlyRent:     contractData.MonthlyRent,
		SecurityDeposit: contractData.SecurityDeposit,
		PlatformFee:     contractData.PlatformFee,
		LeaseStartDate:  contractData.LeaseStartDate,
		LeaseEndDate:    contractData.LeaseEndDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&contract).Error; err != nil {
		log.Error("Failed to create contract", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create contract"})
	}

	log.Info("Contract generated",
		zap.Uint("contract_id", contract.ID),
		zap.Uint("application_id", application.ID))

	// Both parties are told the contract is ready to sign
	data := map[string]interface{}{
		"contract_id":    contract.ID,
		"property_id":    property.ID,
		"property_title": property.Title,
	}
	notify.Send(database.GetDB(), tenant.ID, model.NotificationContractReady,
		"Contract ready to sign",
		"The lease contract for "+property.Title+" is ready for your signature",
		data)
	notify.Send(database.GetDB(), landlord.ID, model.NotificationContractReady,
		"Contract ready to sign",
		"The lease contract for "+property.Title+" is ready for your signature",
		data)

	return c.JSON(http.StatusCreated, echo.Map{
		"contract":      contract,
		"contract_data": contractData,
	})
}

// GetContract returns a contract to one of its parties
func GetContract(c echo.Context) error {
	id := c.Param("id")

	var contract model.Contract
	if err := database.GetDB().First(&contract, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contract not found"})
	}

	if contract.PartyRole(currentUserID(c)) == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not a party to this contract"})
	}

	var signatures []model.Signature
	database.GetDB().Where("contract_id = ?", contract.ID).Find(&signatures)

	return c.JSON(http.StatusOK, echo.Map{
		"contract":   contract,
		"signatures": signatures,
	})
}

// SignContract records the caller's signature on a contract and flips the
// contract to signed once both parties have signed. The flip is a single
// conditional update inside the signing transaction, so two near-simultaneous
// sign requests cannot both miss it or double-apply it.
func SignContract(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)
	id := c.Param("id")

	var req struct {
		Action        string `json:"action"`
		SignatureData string `json:"signature_data,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse sign request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if req.Action != "sign" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action must be sign"})
	}

	var contract model.Contract
	if err := database.GetDB().First(&contract, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contract not found"})
	}

	// The caller's relation to the contract determines the signer type;
	// anyone who is neither party is rejected here.
	signerType := contract.PartyRole(userID)
	if signerType == "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not a party to this contract"})
	}

	now := time.Now()
	signature := model.Signature{
		ContractID:    contract.ID,
		SignerID:      userID,
		SignerType:    signerType,
		SignatureData: req.SignatureData,
		SignedAt:      now,
	}

	var fullySigned bool
	alreadySigned := errors.New("already signed")

	defer prometheus.TrackDBOperation("transaction")(time.Now())

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		// No re-signing: one signature per (contract, signer), enforced both
		// here and by the unique index underneath.
		var count int64
		if err := tx.Model(&model.Signature{}).
			Where("contract_id = ? AND signer_id = ?", contract.ID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return alreadySigned
		}

		if err := tx.Create(&signature).Error; err != nil {
			return err
		}

		signedAtColumn := "tenant_signed_at"
		if signerType == model.RoleLandlord {
			signedAtColumn = "landlord_signed_at"
		}
		if err := tx.Model(&model.Contract{}).
			Where("id = ?", contract.ID).
			Update(signedAtColumn, now).Error; err != nil {
			return err
		}

		// Atomic draft -> signed flip: only fires when both timestamps are
		// present, and only once.
		result := tx.Model(&model.Contract{}).
			Where("id = ? AND status = ? AND tenant_signed_at IS NOT NULL AND landlord_signed_at IS NOT NULL",
				contract.ID, model.ContractStatusDraft).
			Updates(map[string]interface{}{
				"status":       model.ContractStatusSigned,
				"completed_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		fullySigned = result.RowsAffected > 0

		return nil
	})
	if err != nil {
		if errors.Is(err, alreadySigned) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "you have already signed this contract"})
		}
		log.Error("Failed to record signature", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record signature"})
	}

	prometheus.SignatureCounter.With(map[string]string{"signer_type": signerType}).Inc()

	// Re-read for the response after the transaction's updates
	database.GetDB().First(&contract, "id = ?", contract.ID)

	var property model.Property
	database.GetDB().Select("title").First(&property, "id = ?", contract.PropertyID)

	if fullySigned {
		prometheus.ContractSignedCounter.Inc()
		log.Info("Contract fully signed", zap.Uint("contract_id", contract.ID))

		// The lease is binding; the property comes off the market
		if err := database.GetDB().Model(&model.Property{}).
			Where("id = ?", contract.PropertyID).
			Update("status", model.PropertyStatusRented).Error; err != nil {
			log.Error("Failed to mark property rented",
				zap.Uint("property_id", contract.PropertyID), zap.Error(err))
		}

		data := map[string]interface{}{
			"contract_id":    contract.ID,
			"property_title": property.Title,
		}
		notify.Send(database.GetDB(), contract.TenantID, model.NotificationContractSigned,
			"Contract signed",
			"The lease contract for "+property.Title+" has been signed by both parties",
			data)
		notify.Send(database.GetDB(), contract.LandlordID, model.NotificationContractSigned,
			"Contract signed",
			"The lease contract for "+property.Title+" has been signed by both parties",
			data)
	} else {
		// Only the other party hears about it, with a reminder of whose
		// signature is still outstanding.
		otherParty := contract.LandlordID
		waitingOn := model.RoleLandlord
		if signerType == model.RoleLandlord {
			otherParty = contract.TenantID
			waitingOn = model.RoleTenant
		}

		var signer model.User
		database.GetDB().Select("first_name", "last_name").First(&signer, "id = ?", userID)

		notify.Send(database.GetDB(), otherParty, model.NotificationAwaitingSignature,
			"Waiting for your signature",
			signer.FullName()+" has signed the contract for "+property.Title+"; the "+waitingOn+" signature is still needed",
			map[string]interface{}{
				"contract_id":    contract.ID,
				"property_title": property.Title,
				"signed_by":      signer.FullName(),
				"waiting_on":     waitingOn,
			})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"signature":       signature,
		"contract":        contract,
		"is_fully_signed": fullySigned,
	})
}
