// Package payment wraps the external payment processor behind a narrow
// gateway interface and verifies inbound webhooks before they are trusted.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Customer is the processor-side representation of a user.
type Customer struct {
	ID    string
	Email string
	Name  string
}

// GatewaySubscription is the processor-side subscription state.
type GatewaySubscription struct {
	ID                string
	CustomerID        string
	Status            string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// PaymentIntent represents a one-off charge awaiting confirmation.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Amount       int64 // minor units
	Currency     string
	Status       string
}

// Gateway is the interface the subscription flow depends on. Failures are
// surfaced to the caller since they block the user-visible transaction.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)
	CreateSubscription(ctx context.Context, customerID, priceID string) (*GatewaySubscription, error)
	CreatePaymentIntent(ctx context.Context, amount int64, currency, customerID string) (*PaymentIntent, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*GatewaySubscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*GatewaySubscription, error)
}

// simulatedGateway approves everything locally. It stands in for the real
// processor in development and tests; the webhook path is exercised the
// same way either way.
type simulatedGateway struct{}

// NewSimulatedGateway returns a gateway that approves every operation.
func NewSimulatedGateway() Gateway {
	return &simulatedGateway{}
}

func (g *simulatedGateway) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	return &Customer{
		ID:    "cus_" + uuid.NewString(),
		Email: email,
		Name:  name,
	}, nil
}

func (g *simulatedGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (*GatewaySubscription, error) {
	return &GatewaySubscription{
		ID:               "sub_" + uuid.NewString(),
		CustomerID:       customerID,
		Status:           "active",
		CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
	}, nil
}

func (g *simulatedGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency, customerID string) (*PaymentIntent, error) {
	id := "pi_" + uuid.NewString()
	return &PaymentIntent{
		ID:           id,
		ClientSecret: fmt.Sprintf("%s_secret_%s", id, uuid.NewString()),
		Amount:       amount,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}

func (g *simulatedGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*GatewaySubscription, error) {
	return &GatewaySubscription{
		ID:                subscriptionID,
		Status:            "active",
		CancelAtPeriodEnd: true,
		CurrentPeriodEnd:  time.Now().AddDate(0, 1, 0),
	}, nil
}

func (g *simulatedGateway) GetSubscription(ctx context.Context, subscriptionID string) (*GatewaySubscription, error) {
	return &GatewaySubscription{
		ID:               subscriptionID,
		Status:           "active",
		CurrentPeriodEnd: time.Now().AddDate(0, 1, 0),
	}, nil
}
