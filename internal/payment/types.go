package payment

import (
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// EventType is the gateway-neutral kind of a verified webhook event.
type EventType string

const EventCheckoutCompleted EventType = "checkout_completed"

// MetadataOrderDetail is the session metadata key carrying the OrderDetail JSON.
const MetadataOrderDetail = "order_detail"

// maxMetadataValue is Stripe's limit on a single metadata value.
const maxMetadataValue = 500

// OrderDetail identifies the order a session pays for. Only the ids travel
// through the gateway; completion reads products and shipping from the stored
// order when they are absent.
type OrderDetail struct {
	OrderID         string                   `json:"order_id"`
	BuyerID         string                   `json:"buyer_id"`
	Products        map[string][]orders.Line `json:"products,omitempty"`
	ShippingAddress types.Address            `json:"shipping_address,omitzero"`
}

// reference drops everything but the ids.
func (d OrderDetail) reference() OrderDetail {
	return OrderDetail{OrderID: d.OrderID, BuyerID: d.BuyerID}
}

// Session is a completed checkout session.
type Session struct {
	SessionID   string
	OrderDetail OrderDetail
}

// Event is a verified webhook event.
type Event struct {
	Type    EventType
	Session Session
}

// LineItem is one priced row on the hosted checkout page.
type LineItem struct {
	Name       string
	Currency   string
	UnitAmount int64
	Quantity   int64
}

// SessionParams describes the checkout session to open.
type SessionParams struct {
	LineItems     []LineItem
	CustomerEmail string
	Metadata      map[string]string
	SuccessURL    string
	CancelURL     string
}

// CheckoutDetail is the buyer's checkout request.
type CheckoutDetail struct {
	ShippingAddress types.Address
	SuccessURL      string
	CancelURL       string
}
