package handler

import (
	"encoding/json"
	"fmt"
	"io"
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
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

var (
	webhookSecret     string
	maxPaymentRetries int64
)

// InitWebhookHandler initializes webhook processing with configuration
func InitWebhookHandler(cfg *config.Config) {
	webhookSecret = cfg.Stripe.WebhookSecret
	maxPaymentRetries = cfg.Stripe.MaxPaymentRetries
}

// HandlePaymentWebhook consumes asynchronous events from the payment
// gateway. The signature is verified before anything else; replayed event
// ids short-circuit without side effects; a failing event handler is logged
// and the gateway still gets a success response.
func HandlePaymentWebhook(c echo.Context) error {
	log := logger.FromContext(c)

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		log.Warn("Failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), webhookSecret)
	if err != nil {
		log.Warn("Webhook signature verification failed", zap.Error(err))
		prometheus.RecordWebhookEvent("unknown", "invalid_signature")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid webhook signature"})
	}

	// Gateways redeliver events; the unique event-id row makes a replay a no-op
	dedup := database.GetDB().Clauses(clause.OnConflict{DoNothing: true}).Create(&model.WebhookEvent{
		EventID:    event.ID,
		Type:       string(event.Type),
		ReceivedAt: time.Now(),
	})
	if dedup.Error != nil {
		log.Error("Failed to record webhook event", zap.String("event_id", event.ID), zap.Error(dedup.Error))
	} else if dedup.RowsAffected == 0 {
		log.Info("Duplicate webhook event ignored",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
		prometheus.RecordWebhookEvent(string(event.Type), "duplicate")
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	if err := handleEvent(log, event); err != nil {
		// Fire-and-log: the gateway gets a success response regardless
		log.Error("Webhook event handler failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		prometheus.RecordWebhookEvent(string(event.Type), "error")
	} else {
		prometheus.RecordWebhookEvent(string(event.Type), "ok")
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

func handleEvent(log *zap.Logger, event stripe.Event) error {
	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return handlePaymentIntentSucceeded(log, &intent)

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return handlePaymentIntentFailed(log, &intent)

	case "payment_intent.canceled":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return handlePaymentIntentCanceled(log, &intent)

	case "invoice.paid":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		return handleInvoicePaid(log, &inv)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		return handleInvoicePaymentFailed(log, &inv)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return reconcileSubscription(log, &sub, false)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return reconcileSubscription(log, &sub, true)

	default:
		log.Debug("Unhandled webhook event type", zap.String("type", string(event.Type)))
		return nil
	}
}

// findPaymentByIntent resolves the local payment row for a gateway intent.
// A missing row means local persistence of the intent never completed; that
// window is logged and the event dropped.
func findPaymentByIntent(log *zap.Logger, intentID string) *model.Payment {
	var payment model.Payment
	if err := database.GetDB().First(&payment, "stripe_payment_intent_id = ?", intentID).Error; err != nil {
		log.Warn("No local payment for payment intent",
			zap.String("payment_intent_id", intentID))
		return nil
	}
	return &payment
}

func handlePaymentIntentSucceeded(log *zap.Logger, intent *stripe.PaymentIntent) error {
	payment := findPaymentByIntent(log, intent.ID)
	if payment == nil {
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":  model.PaymentStatusCompleted,
		"paid_at": now,
	}
	if intent.LatestCharge != nil {
		updates["stripe_charge_id"] = intent.LatestCharge.ID
	}

	if err := database.GetDB().Model(payment).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark payment completed: %w", err)
	}

	log.Info("Payment completed",
		zap.Uint("payment_id", payment.ID),
		zap.String("type", payment.Type))

	data := map[string]interface{}{
		"payment_id":   payment.ID,
		"payment_type": payment.Type,
		"amount":       payment.Amount,
	}
	notify.Send(database.GetDB(), payment.TenantID, model.NotificationPaymentReceived,
		"Payment received",
		"Your "+payment.Type+" payment was received",
		data)

	// Platform fees are between the tenant and the marketplace
	if payment.Type != model.PaymentTypePlatformFee && payment.LandlordID != 0 {
		notify.Send(database.GetDB(), payment.LandlordID, model.NotificationPaymentReceived,
			"Payment received",
			"A "+payment.Type+" payment for your property was received",
			data)
	}

	return nil
}

func handlePaymentIntentFailed(log *zap.Logger, intent *stripe.PaymentIntent) error {
	payment := findPaymentByIntent(log, intent.ID)
	if payment == nil {
		return nil
	}

	failureMessage := "payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		failureMessage = intent.LastPaymentError.Msg
	}

	if err := database.GetDB().Model(payment).Updates(map[string]interface{}{
		"status":          model.PaymentStatusFailed,
		"failure_message": failureMessage,
	}).Error; err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	log.Info("Payment failed",
		zap.Uint("payment_id", payment.ID),
		zap.String("reason", failureMessage))

	notify.Send(database.GetDB(), payment.TenantID, model.NotificationPaymentFailed,
		"Payment failed",
		"Your "+payment.Type+" payment failed: "+failureMessage,
		map[string]interface{}{
			"payment_id":      payment.ID,
			"payment_type":    payment.Type,
			"failure_message": failureMessage,
		})

	return nil
}

func handlePaymentIntentCanceled(log *zap.Logger, intent *stripe.PaymentIntent) error {
	payment := findPaymentByIntent(log, intent.ID)
	if payment == nil {
		return nil
	}

	if err := database.GetDB().Model(payment).Update("status", model.PaymentStatusCanceled).Error; err != nil {
		return fmt.Errorf("failed to mark payment canceled: %w", err)
	}

	log.Info("Payment canceled", zap.Uint("payment_id", payment.ID))
	return nil
}

// findSubscriptionByStripeID resolves the local mirror row for a gateway
// subscription.
func findSubscriptionByStripeID(log *zap.Logger, stripeSubID string) *model.Subscription {
	var sub model.Subscription
	if err := database.GetDB().First(&sub, "stripe_subscription_id = ?", stripeSubID).Error; err != nil {
		log.Warn("No local subscription for gateway subscription",
			zap.String("stripe_subscription_id", stripeSubID))
		return nil
	}
	return &sub
}

func handleInvoicePaid(log *zap.Logger, inv *stripe.Invoice) error {
	if inv.Subscription == nil {
		log.Debug("Invoice without subscription ignored", zap.String("invoice_id", inv.ID))
		return nil
	}

	sub := findSubscriptionByStripeID(log, inv.Subscription.ID)
	if sub == nil {
		return nil
	}

	now := time.Now()
	if err := database.GetDB().Model(sub).Updates(map[string]interface{}{
		"status":             model.SubscriptionStatusActive,
		"last_reconciled_at": now,
	}).Error; err != nil {
		return fmt.Errorf("failed to reconcile subscription: %w", err)
	}

	amount := lease.FromCents(inv.AmountPaid)
	log.Info("Rent invoice paid",
		zap.Uint("subscription_id", sub.ID),
		zap.String("amount", amount.String()))

	data := map[string]interface{}{
		"subscription_id": sub.ID,
		"amount":          amount,
	}
	notify.Send(database.GetDB(), sub.TenantID, model.NotificationRentPaid,
		"Rent payment received",
		"Your monthly rent payment of "+amount.String()+" was received",
		data)
	notify.Send(database.GetDB(), sub.LandlordID, model.NotificationRentPaid,
		"Rent payment received",
		"A monthly rent payment of "+amount.String()+" was received for your property",
		data)

	return nil
}

// handleInvoicePaymentFailed applies the late-fee schedule and the bounded
// retry policy to a failed recurring rent charge: retry while the gateway's
// attempt count is under the maximum, then give the invoice up as
// uncollectible.
func handleInvoicePaymentFailed(log *zap.Logger, inv *stripe.Invoice) error {
	if inv.Subscription == nil {
		log.Debug("Invoice without subscription ignored", zap.String("invoice_id", inv.ID))
		return nil
	}

	sub := findSubscriptionByStripeID(log, inv.Subscription.ID)
	if sub == nil {
		return nil
	}

	daysLate := lease.DaysLate(inv.DueDate, time.Now().Unix())
	amountDue := lease.FromCents(inv.AmountDue)
	lateFee := lease.LateFee(amountDue, daysLate)

	log.Info("Rent invoice payment failed",
		zap.Uint("subscription_id", sub.ID),
		zap.Int64("attempt_count", inv.AttemptCount),
		zap.Int("days_late", daysLate),
		zap.String("late_fee", lateFee.String()))

	if inv.AttemptCount < maxPaymentRetries {
		// Attach the late fee to the next collection attempt, best effort
		if lateFee.IsPositive() && inv.Customer != nil {
			if _, err := paymentGateway.AddInvoiceItem(
				inv.Customer.ID,
				lease.ToCents(lateFee),
				string(inv.Currency),
				fmt.Sprintf("Late fee (%d days overdue)", daysLate),
			); err != nil {
				log.Error("Failed to attach late fee", zap.String("invoice_id", inv.ID), zap.Error(err))
			}
		}

		if _, err := paymentGateway.PayInvoice(inv.ID); err != nil {
			log.Error("Invoice retry failed", zap.String("invoice_id", inv.ID), zap.Error(err))
		}
	} else {
		if _, err := paymentGateway.MarkInvoiceUncollectible(inv.ID); err != nil {
			log.Error("Failed to mark invoice uncollectible", zap.String("invoice_id", inv.ID), zap.Error(err))
		}
	}

	now := time.Now()
	if err := database.GetDB().Model(sub).Updates(map[string]interface{}{
		"status":             model.SubscriptionStatusPastDue,
		"last_reconciled_at": now,
	}).Error; err != nil {
		return fmt.Errorf("failed to reconcile subscription: %w", err)
	}

	notify.Send(database.GetDB(), sub.TenantID, model.NotificationRentOverdue,
		"Rent payment overdue",
		"Your monthly rent payment could not be collected",
		map[string]interface{}{
			"subscription_id": sub.ID,
			"days_late":       daysLate,
			"late_fee":        lateFee,
			"attempt_count":   inv.AttemptCount,
		})

	return nil
}

// reconcileSubscription mirrors the gateway's subscription object onto the
// local row. The gateway is the source of truth; the mirror is last-write-
// wins and stamped with the reconciliation time.
func reconcileSubscription(log *zap.Logger, stripeSub *stripe.Subscription, deleted bool) error {
	sub := findSubscriptionByStripeID(log, stripeSub.ID)
	if sub == nil {
		return nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":             string(stripeSub.Status),
		"last_reconciled_at": now,
	}
	if stripeSub.CurrentPeriodStart > 0 {
		updates["current_period_start"] = time.Unix(stripeSub.CurrentPeriodStart, 0)
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		periodEnd := time.Unix(stripeSub.CurrentPeriodEnd, 0)
		updates["current_period_end"] = periodEnd
		updates["next_payment_date"] = periodEnd
	}
	if deleted {
		updates["status"] = model.SubscriptionStatusCanceled
		updates["canceled_at"] = now
	}

	if err := database.GetDB().Model(sub).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mirror subscription: %w", err)
	}

	log.Info("Subscription reconciled",
		zap.Uint("subscription_id", sub.ID),
		zap.String("status", updates["status"].(string)))

	if deleted {
		notify.Send(database.GetDB(), sub.TenantID, model.NotificationSubscriptionCanceled,
			"Rent subscription canceled",
			"Your monthly rent subscription has been canceled",
			map[string]interface{}{"subscription_id": sub.ID})
	}

	return nil
}
