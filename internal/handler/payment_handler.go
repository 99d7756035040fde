package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/georgemichailidhs/meet2rent-sub001/internal/lease"
	"github.com/georgemichailidhs/meet2rent-sub001/internal/model"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/config"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/database"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/gateway"
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/logger"
	"github.com/georgemichailidhs/meet2rent-sub001/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	paymentGateway gateway.PaymentGateway
	stripeCurrency string
)

// InitPaymentHandler wires the payment gateway into the payment and webhook
// endpoints.
func InitPaymentHandler(cfg *config.Config, gw gateway.PaymentGateway) {
	paymentGateway = gw
	stripeCurrency = cfg.Stripe.Currency
}

// ensureStripeCustomer returns the user's gateway customer id, registering
// the user with the gateway on first use.
func ensureStripeCustomer(user *model.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	cust, err := paymentGateway.CreateCustomer(user.Email, user.FullName())
	if err != nil {
		return "", err
	}

	if err := database.GetDB().Model(user).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	user.StripeCustomerID = cust.ID
	return cust.ID, nil
}

// CreatePayment creates a payment intent at the gateway for a contract
// charge and records a pending local payment. The local row stays pending
// until the gateway's webhook settles it.
func CreatePayment(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)

	var req struct {
		ContractID  uint   `json:"contract_id"`
		PaymentType string `json:"payment_type"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse payment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var contract model.Contract
	if err := database.GetDB().First(&contract, "id = ?", req.ContractID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contract not found"})
	}

	if contract.TenantID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the tenant of this contract can pay"})
	}

	var amount decimal.Decimal
	switch req.PaymentType {
	case model.PaymentTypeSecurityDeposit:
		amount = contract.SecurityDeposit
	case model.PaymentTypeMonthlyRent:
		amount = contract.MonthlyRent
	case model.PaymentTypePlatformFee:
		amount = contract.PlatformFee
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment type must be security_deposit, monthly_rent, or platform_fee"})
	}

	if !amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to charge for this payment type"})
	}

	var tenant model.User
	if err := database.GetDB().First(&tenant, "id = ?", userID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	// Gateway failures here propagate as request failures: no local state
	// has been committed yet.
	customerID, err := ensureStripeCustomer(&tenant)
	if err != nil {
		log.Error("Failed to register customer with gateway", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment setup failed"})
	}

	intent, err := paymentGateway.CreatePaymentIntent(
		lease.ToCents(amount),
		stripeCurrency,
		customerID,
		map[string]string{
			"contract_id":  fmt.Sprintf("%d", contract.ID),
			"payment_type": req.PaymentType,
		},
	)
	if err != nil {
		log.Error("Failed to create payment intent", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment setup failed"})
	}

	contractID := contract.ID
	payment := model.Payment{
		ContractID:            &contractID,
		TenantID:              contract.TenantID,
		LandlordID:            contract.LandlordID,
		Amount:                amount,
		Currency:              stripeCurrency,
		Type:                  req.PaymentType,
		Status:                model.PaymentStatusPending,
		StripePaymentIntentID: intent.ID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&payment).Error; err != nil {
		log.Error("Failed to persist payment", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record payment"})
	}

	log.Info("Payment intent created",
		zap.Uint("payment_id", payment.ID),
		zap.String("payment_intent_id", intent.ID),
		zap.String("type", req.PaymentType))

	return c.JSON(http.StatusCreated, echo.Map{
		"payment":       payment,
		"client_secret": intent.ClientSecret,
	})
}

// CreateSubscription starts the recurring monthly-rent schedule for a fully
// signed contract and mirrors it locally.
func CreateSubscription(c echo.Context) error {
	log := logger.FromContext(c)
	userID := currentUserID(c)

	var req struct {
		ContractID uint `json:"contract_id"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse subscription request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var contract model.Contract
	if err := database.GetDB().First(&contract, "id = ?", req.ContractID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "contract not found"})
	}

	if contract.TenantID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the tenant of this contract can start rent payments"})
	}

	if contract.Status != model.ContractStatusSigned {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contract must be fully signed before rent payments can start"})
	}

	var existing model.Subscription
	if err := database.GetDB().First(&existing, "contract_id = ?", contract.ID).Error; err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "a rent subscription already exists for this contract"})
	}

	var tenant model.User
	if err := database.GetDB().First(&tenant, "id = ?", userID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var property model.Property
	database.GetDB().Select("title").First(&property, "id = ?", contract.PropertyID)

	customerID, err := ensureStripeCustomer(&tenant)
	if err != nil {
		log.Error("Failed to register customer with gateway", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscription setup failed"})
	}

	stripeSub, err := paymentGateway.CreateRentSubscription(
		customerID,
		property.Title,
		stripeCurrency,
		lease.ToCents(contract.MonthlyRent),
		map[string]string{"contract_id": fmt.Sprintf("%d", contract.ID)},
	)
	if err != nil {
		log.Error("Failed to create rent subscription", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscription setup failed"})
	}

	now := time.Now()
	subscription := model.Subscription{
		ContractID:           contract.ID,
		TenantID:             contract.TenantID,
		LandlordID:           contract.LandlordID,
		StripeSubscriptionID: stripeSub.ID,
		StripeCustomerID:     customerID,
		MonthlyRent:          contract.MonthlyRent,
		Status:               string(stripeSub.Status),
		LastReconciledAt:     &now,
	}
	if stripeSub.CurrentPeriodStart > 0 {
		start := time.Unix(stripeSub.CurrentPeriodStart, 0)
		subscription.CurrentPeriodStart = &start
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		end := time.Unix(stripeSub.CurrentPeriodEnd, 0)
		subscription.CurrentPeriodEnd = &end
		subscription.NextPaymentDate = &end
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&subscription).Error; err != nil {
		log.Error("Failed to persist subscription", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record subscription"})
	}

	log.Info("Rent subscription created",
		zap.Uint("subscription_id", subscription.ID),
		zap.String("stripe_subscription_id", stripeSub.ID))

	return c.JSON(http.StatusCreated, echo.Map{"subscription": subscription})
}
