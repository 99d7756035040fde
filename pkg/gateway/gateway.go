package gateway

import "github.com/stripe/stripe-go/v81"

// PaymentGateway is the service's only interface to the external payment
// processor. Local payment and subscription rows only mirror what comes
// back through this adapter's webhooks.
type PaymentGateway interface {
	// CreateCustomer registers a payer with the gateway.
	CreateCustomer(email, name string) (*stripe.Customer, error)

	// CreatePaymentIntent starts a one-off charge in minor units.
	CreatePaymentIntent(amount int64, currency, customerID string, metadata map[string]string) (*stripe.PaymentIntent, error)

	// CreateRentSubscription starts a recurring monthly charge for a lease.
	CreateRentSubscription(customerID, propertyTitle, currency string, monthlyRent int64, metadata map[string]string) (*stripe.Subscription, error)

	// CancelSubscription stops a recurring charge.
	CancelSubscription(subscriptionID string) (*stripe.Subscription, error)

	// PayInvoice retries collection of an open invoice.
	PayInvoice(invoiceID string) (*stripe.Invoice, error)

	// MarkInvoiceUncollectible gives up on an invoice after exhausted retries.
	MarkInvoiceUncollectible(invoiceID string) (*stripe.Invoice, error)

	// AddInvoiceItem attaches a pending line item (e.g. a late fee) to the
	// customer's next invoice.
	AddInvoiceItem(customerID string, amount int64, currency, description string) (*stripe.InvoiceItem, error)
}
