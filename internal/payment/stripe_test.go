package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/angelmondragon/storefront-backend/pkg/breaker"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const testSecret = "whsec_test"

type fakeGateway struct {
	params  *stripe.CheckoutSessionParams
	session *stripe.CheckoutSession
	err     error
	calls   int
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.calls++
	g.params = params
	return g.session, g.err
}

func (g *fakeGateway) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, testSecret)
}

func newStripeAdapter(t *testing.T, g *fakeGateway) *StripeAdapter {
	t.Helper()
	a, err := NewStripeAdapter(g, breaker.Config{Failures: 2, Timeout: time.Minute}, nil)
	require.NoError(t, err)
	return a
}

func signedEvent(t *testing.T, eventType stripe.EventType, metadata map[string]string) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"id": "cs_test_1", "object": "checkout.session", "metadata": metadata})
	require.NoError(t, err)
	payload, err := json.Marshal(&stripe.Event{
		ID:         "evt_1",
		Object:     "event",
		Type:       eventType,
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: raw},
	})
	require.NoError(t, err)
	return payload, signatureHeader(payload, testSecret, time.Now().Unix())
}

func signatureHeader(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeConstructEventCompleted(t *testing.T) {
	detail, err := json.Marshal(MockSession().OrderDetail)
	require.NoError(t, err)
	payload, header := signedEvent(t, stripe.EventTypeCheckoutSessionCompleted, map[string]string{MetadataOrderDetail: string(detail)})

	event, err := newStripeAdapter(t, &fakeGateway{}).ConstructEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_test_1", event.Session.SessionID)
	assert.Equal(t, "test-order", event.Session.OrderDetail.OrderID)
	assert.Equal(t, int64(3), event.Session.OrderDetail.Products["seller-uid"][0].Quantity)
}

func TestStripeConstructEventFailures(t *testing.T) {
	a := newStripeAdapter(t, &fakeGateway{})

	payload, _ := signedEvent(t, stripe.EventTypeCheckoutSessionCompleted, nil)
	_, err := a.ConstructEvent(payload, "t=1,v1=bad")
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonInvalidSignature), "got %v", err)

	payload, header := signedEvent(t, stripe.EventTypeCheckoutSessionCompleted, nil)
	_, err = a.ConstructEvent(payload, header)
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonMissingMetadata), "got %v", err)

	payload, header = signedEvent(t, stripe.EventTypeCheckoutSessionExpired, nil)
	_, err = a.ConstructEvent(payload, header)
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonUnhandledEvent), "got %v", err)
}

func TestStripeCreateSessionParams(t *testing.T) {
	g := &fakeGateway{session: &stripe.CheckoutSession{URL: "https://checkout.stripe.com/c/pay/cs_1"}}
	url, err := newStripeAdapter(t, g).CreateSession(context.Background(), SessionParams{
		LineItems:     []LineItem{{Name: "Tea", Currency: "jpy", UnitAmount: 500, Quantity: 2}},
		CustomerEmail: "buyer@example.com",
		Metadata:      map[string]string{MetadataOrderDetail: "{}"},
		SuccessURL:    "https://shop.example.com/ok",
		CancelURL:     "https://shop.example.com/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", url)

	require.NotNil(t, g.params)
	assert.Equal(t, "payment", *g.params.Mode)
	assert.Equal(t, "buyer@example.com", *g.params.CustomerEmail)
	assert.Equal(t, "{}", g.params.Metadata[MetadataOrderDetail])
	require.Len(t, g.params.LineItems, 1)
	assert.Equal(t, int64(500), *g.params.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "Tea", *g.params.LineItems[0].PriceData.ProductData.Name)
	assert.Equal(t, int64(2), *g.params.LineItems[0].Quantity)
}

func TestStripeCreateSessionBreakerOpens(t *testing.T) {
	g := &fakeGateway{err: errors.New("stripe down")}
	a := newStripeAdapter(t, g)

	for i := 0; i < 3; i++ {
		_, err := a.CreateSession(context.Background(), SessionParams{})
		assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonSessionCreationFailed), "attempt %d: %v", i, err)
	}
	assert.Equal(t, 2, g.calls, "open breaker must short-circuit the third call")

	g.err = nil
	_, err := a.CreateSession(context.Background(), SessionParams{})
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonSessionCreationFailed), "open breaker: %v", err)
}

func TestSignatureFromHeader(t *testing.T) {
	_, err := SignatureFromHeader(http.Header{})
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonMissingSignature))

	h := http.Header{}
	h.Set(SignatureHeader, "t=1,v1=abc")
	sig, err := SignatureFromHeader(h)
	require.NoError(t, err)
	assert.Equal(t, "t=1,v1=abc", sig)
}

func TestStripeCreateSessionEmptyURL(t *testing.T) {
	g := &fakeGateway{session: &stripe.CheckoutSession{ID: "cs_1"}}
	_, err := newStripeAdapter(t, g).CreateSession(context.Background(), SessionParams{})
	assert.True(t, pkgerrors.HasReason(err, pkgerrors.CodePayment, pkgerrors.ReasonSessionCreationFailed), "got %v", err)
}
