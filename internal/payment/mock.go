package payment

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

const (
	MockSessionID  = "mock-session-id"
	MockSessionURL = "https://checkout.stripe.com/c/pay/mock-session-id"
)

// MockSession is the session every MockAdapter event carries.
func MockSession() Session {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Session{
		SessionID: MockSessionID,
		OrderDetail: OrderDetail{
			OrderID: "test-order",
			BuyerID: "buyer-uid",
			Products: map[string][]orders.Line{
				"seller-uid": {{
					Product: product.Product{
						Meta:             docstore.Meta{ID: "123", CreatedAt: created, UpdatedAt: created},
						Name:             "mock-product-1",
						Thumbnail:        "https://image.com/thumbnail-1.webp",
						Images:           []string{"https://image.com/image-1.webp"},
						ShortDescription: "---SHORT DESCRIPTION---",
						LongDescription:  "-----------LONG_DESCRIPTION--------------",
						Price:            100,
						CategoryID:       "category-1",
						Stock:            100,
						CreatedBy:        "seller-uid",
					},
					Quantity: 3,
				}},
			},
			ShippingAddress: types.Address{
				RecipientName: "mock-recipient",
				ZipCode:       "123-4567",
				Address: types.AddressLines{
					Address1: "mock-address-1",
					Address2: "mock-address-2",
					Address3: "mock-address-3",
				},
			},
		},
	}
}

// MockAdapter accepts any payload and returns fixed sessions. It records the
// last session request for inspection.
type MockAdapter struct {
	URL  string
	Last *SessionParams

	mu sync.Mutex
}

func (m *MockAdapter) ConstructEvent([]byte, string) (Event, error) {
	return Event{Type: EventCheckoutCompleted, Session: MockSession()}, nil
}

func (m *MockAdapter) CreateSession(_ context.Context, params SessionParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Last = &params
	if m.URL != "" {
		return m.URL, nil
	}
	return MockSessionURL, nil
}
