package orders

import (
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// GroupID is the subcollection name shared by buyer and seller orders.
const GroupID = "orders"

// Line is a frozen product snapshot with the ordered quantity.
type Line struct {
	Product  product.Product `json:"product" firestore:"product"`
	Quantity int64           `json:"quantity" firestore:"quantity"`
}

// Subtotal is price times quantity for the line.
func (l Line) Subtotal() int64 {
	return l.Product.Price * l.Quantity
}

// BuyerOrder is the buyer's view of a checkout. Products are grouped by seller id.
type BuyerOrder struct {
	docstore.Meta
	Status          enums.OrderStatus `json:"status" firestore:"status"`
	AmountTotal     int64             `json:"amount_total" firestore:"amount_total"`
	ShippingAddress types.Address     `json:"shipping_address" firestore:"shipping_address"`
	SessionID       string            `json:"session_id,omitempty" firestore:"session_id,omitempty"`
	Products        map[string][]Line `json:"products" firestore:"products"`
}

// SellerOrder is one seller's share of a paid BuyerOrder. It reuses the buyer order id.
type SellerOrder struct {
	docstore.Meta
	BuyerID         string            `json:"buyer_id" firestore:"buyer_id"`
	Status          enums.OrderStatus `json:"status" firestore:"status"`
	AmountTotal     int64             `json:"amount_total" firestore:"amount_total"`
	ShippingAddress types.Address     `json:"shipping_address" firestore:"shipping_address"`
	Products        []Line            `json:"products" firestore:"products"`
	SessionID       string            `json:"session_id" firestore:"session_id"`
}

type BuyerOrders = repo.Model[BuyerOrder, *BuyerOrder]
type SellerOrders = repo.Model[SellerOrder, *SellerOrder]

// BuyerPath is the orders subcollection of buyerID.
func BuyerPath(buyerID string) string {
	return docstore.Join("buyer-orders", buyerID, GroupID)
}

// SellerPath is the orders subcollection of sellerID.
func SellerPath(sellerID string) string {
	return docstore.Join("seller-orders", sellerID, GroupID)
}
