package payment

import (
	"context"
	"fmt"
	"time"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"paintquote_backend/internal/logger"
)

// CheckoutParams describes a subscription purchase about to be paid.
type CheckoutParams struct {
	InvID       string // our own invoice id, unique per attempt
	CompanyID   string
	PlanName    string
	Cycle       string
	Description string
	Amount      float64 // EUR
	Currency    string
}

// CheckoutResult is what the client needs to continue the payment.
type CheckoutResult struct {
	SessionID string
	URL       string
}

// WebhookEvent is a normalized payment event. Only the fields the
// billing flow cares about survive the translation from Stripe.
type WebhookEvent struct {
	Type      string // "checkout_completed", "payment_failed", other types pass through raw
	SessionID string
	InvID     string
}

// Provider hides the payment gateway behind an interface so service
// tests can run without Stripe credentials.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutResult, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

type stripeProvider struct {
	webhookSecret string
	successURL    string
	cancelURL     string
}

// NewStripeProvider configures the global Stripe client and returns
// the provider. Call once at startup.
func NewStripeProvider(secretKey, webhookSecret, successURL, cancelURL string) Provider {
	stripe.Key = secretKey
	return &stripeProvider{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
	}
}

func (p *stripeProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	currency := params.Currency
	if currency == "" {
		currency = "eur"
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
		ClientReferenceID: stripe.String(params.InvID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(int64(params.Amount * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Description),
					},
				},
			},
		},
	}
	sessionParams.Context = ctx
	sessionParams.AddMetadata("inv_id", params.InvID)
	sessionParams.AddMetadata("company_id", params.CompanyID)
	sessionParams.AddMetadata("plan", params.PlanName)
	sessionParams.AddMetadata("cycle", params.Cycle)

	start := time.Now()
	s, err := session.New(sessionParams)
	logger.ExternalCallLog("stripe", "create_checkout_session", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &CheckoutResult{SessionID: s.ID, URL: s.URL}, nil
}

func (p *stripeProvider) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var s stripe.CheckoutSession
		if err := s.UnmarshalJSON(event.Data.Raw); err != nil {
			return nil, fmt.Errorf("webhook payload: %w", err)
		}
		return &WebhookEvent{
			Type:      "checkout_completed",
			SessionID: s.ID,
			InvID:     s.ClientReferenceID,
		}, nil

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var s stripe.CheckoutSession
		if err := s.UnmarshalJSON(event.Data.Raw); err != nil {
			return nil, fmt.Errorf("webhook payload: %w", err)
		}
		return &WebhookEvent{
			Type:      "payment_failed",
			SessionID: s.ID,
			InvID:     s.ClientReferenceID,
		}, nil

	default:
		// Events we do not act on still acknowledge cleanly
		return &WebhookEvent{Type: string(event.Type)}, nil
	}
}
