package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/storefront-backend/pkg/breaker"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stripeGateway interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

// StripeAdapter talks to Stripe Checkout. Session creation runs behind a circuit breaker.
type StripeAdapter struct {
	gateway stripeGateway
	breaker *gobreaker.CircuitBreaker[*stripe.CheckoutSession]
}

// NewStripeAdapter wraps gateway; cfg tunes the breaker.
func NewStripeAdapter(gateway stripeGateway, cfg breaker.Config, logg *logger.Logger) (*StripeAdapter, error) {
	if gateway == nil {
		return nil, fmt.Errorf("stripe gateway required")
	}
	if cfg.Name == "" {
		cfg.Name = "stripe-checkout"
	}
	return &StripeAdapter{
		gateway: gateway,
		breaker: breaker.New[*stripe.CheckoutSession](cfg, logg),
	}, nil
}

func (a *StripeAdapter) ConstructEvent(payload []byte, signature string) (Event, error) {
	event, err := a.gateway.ConstructEvent(payload, signature)
	if err != nil {
		return Event{}, pkgerrors.Payment(pkgerrors.ReasonInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		session, err := sessionFromEvent(event)
		if err != nil {
			return Event{}, err
		}
		return Event{Type: EventCheckoutCompleted, Session: session}, nil
	default:
		return Event{}, pkgerrors.Payment(pkgerrors.ReasonUnhandledEvent, nil).
			WithDetails(map[string]any{"event_type": string(event.Type)})
	}
}

func sessionFromEvent(event stripe.Event) (Session, error) {
	if event.Data == nil {
		return Session{}, pkgerrors.Payment(pkgerrors.ReasonMissingMetadata, fmt.Errorf("event %s has no data", event.ID))
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return Session{}, pkgerrors.Payment(pkgerrors.ReasonMissingMetadata, fmt.Errorf("decode checkout session: %w", err))
	}
	raw := cs.Metadata[MetadataOrderDetail]
	if raw == "" {
		return Session{}, pkgerrors.Payment(pkgerrors.ReasonMissingMetadata, nil)
	}
	var detail OrderDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return Session{}, pkgerrors.Payment(pkgerrors.ReasonMissingMetadata, fmt.Errorf("decode order detail: %w", err))
	}
	if detail.OrderID == "" || detail.BuyerID == "" {
		return Session{}, pkgerrors.Payment(pkgerrors.ReasonMissingMetadata, fmt.Errorf("order detail without order or buyer id"))
	}
	return Session{SessionID: cs.ID, OrderDetail: detail}, nil
}

func (a *StripeAdapter) CreateSession(ctx context.Context, params SessionParams) (string, error) {
	cs, err := a.breaker.Execute(func() (*stripe.CheckoutSession, error) {
		return a.gateway.CreateCheckoutSession(ctx, checkoutParams(params))
	})
	if err != nil {
		return "", pkgerrors.Payment(pkgerrors.ReasonSessionCreationFailed, err)
	}
	if cs == nil || cs.URL == "" {
		return "", pkgerrors.Payment(pkgerrors.ReasonSessionCreationFailed, fmt.Errorf("stripe returned no session url"))
	}
	return cs.URL, nil
}

func checkoutParams(params SessionParams) *stripe.CheckoutSessionParams {
	out := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata:   params.Metadata,
	}
	if params.CustomerEmail != "" {
		out.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	for _, item := range params.LineItems {
		out.LineItems = append(out.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(item.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}
	return out
}
