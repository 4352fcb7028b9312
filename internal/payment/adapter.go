package payment

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "Stripe-Signature"

// Adapter is the payment gateway boundary.
type Adapter interface {
	// ConstructEvent verifies payload against signature and decodes it.
	ConstructEvent(payload []byte, signature string) (Event, error)
	// CreateSession opens a hosted checkout session and returns its URL.
	CreateSession(ctx context.Context, params SessionParams) (string, error)
}

// SignatureFromHeader returns the webhook signature or MISSING_SIGNATURE.
func SignatureFromHeader(h http.Header) (string, error) {
	signature := strings.TrimSpace(h.Get(SignatureHeader))
	if signature == "" {
		return "", pkgerrors.Payment(pkgerrors.ReasonMissingSignature, nil)
	}
	return signature, nil
}
