package gateway

import (
	"github.com/georgemichailidhs/meet2rent-sub001/pkg/config"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/invoice"
	"github.com/stripe/stripe-go/v81/invoiceitem"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/product"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhook"
)

// StripeGateway implements PaymentGateway against the Stripe API
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway configures the Stripe client and returns the adapter
func NewStripeGateway(cfg *config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{webhookSecret: cfg.WebhookSecret}
}

// CreateCustomer registers a payer with Stripe
func (g *StripeGateway) CreateCustomer(email, name string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	return customer.New(params)
}

// CreatePaymentIntent starts a one-off charge
func (g *StripeGateway) CreatePaymentIntent(amount int64, currency, customerID string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return paymentintent.New(params)
}

// CreateRentSubscription creates a product for the lease and subscribes the
// tenant to a monthly price on it.
func (g *StripeGateway) CreateRentSubscription(customerID, propertyTitle, currency string, monthlyRent int64, metadata map[string]string) (*stripe.Subscription, error) {
	prod, err := product.New(&stripe.ProductParams{
		Name: stripe.String("Monthly rent: " + propertyTitle),
	})
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{
				PriceData: &stripe.SubscriptionItemPriceDataParams{
					Currency:   stripe.String(currency),
					Product:    stripe.String(prod.ID),
					UnitAmount: stripe.Int64(monthlyRent),
					Recurring: &stripe.SubscriptionItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
			},
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return subscription.New(params)
}

// CancelSubscription stops a recurring charge
func (g *StripeGateway) CancelSubscription(subscriptionID string) (*stripe.Subscription, error) {
	return subscription.Cancel(subscriptionID, nil)
}

// PayInvoice retries collection of an open invoice
func (g *StripeGateway) PayInvoice(invoiceID string) (*stripe.Invoice, error) {
	return invoice.Pay(invoiceID, &stripe.InvoicePayParams{})
}

// MarkInvoiceUncollectible gives up on an invoice
func (g *StripeGateway) MarkInvoiceUncollectible(invoiceID string) (*stripe.Invoice, error) {
	return invoice.MarkUncollectible(invoiceID, &stripe.InvoiceMarkUncollectibleParams{})
}

// AddInvoiceItem attaches a pending line item to the customer's next invoice
func (g *StripeGateway) AddInvoiceItem(customerID string, amount int64, currency, description string) (*stripe.InvoiceItem, error) {
	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
	}
	return invoiceitem.New(params)
}

// VerifyWebhook checks the webhook payload signature against the shared
// secret and returns the parsed event.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
}
