package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

// ServiceParams wires the payment service.
type ServiceParams struct {
	Store    docstore.Store
	Users    *users.Repository
	Carts    *cart.Repository
	Products *product.Repository
	Orders   *orders.Repository
	Adapter  Adapter
	Currency enums.Currency
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
}

// Service runs checkout and payment completion.
type Service struct {
	store    docstore.Store
	users    *users.Repository
	carts    *cart.Repository
	products *product.Repository
	orders   *orders.Repository
	adapter  Adapter
	currency enums.Currency
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if params.Users == nil || params.Carts == nil || params.Products == nil || params.Orders == nil {
		return nil, fmt.Errorf("users, cart, product and order repositories required")
	}
	if params.Adapter == nil {
		return nil, fmt.Errorf("payment adapter required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Currency == "" {
		params.Currency = enums.CurrencyJPY
	}
	return &Service{
		store:    params.Store,
		users:    params.Users,
		carts:    params.Carts,
		products: params.Products,
		orders:   params.Orders,
		adapter:  params.Adapter,
		currency: params.Currency,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// Adapter returns the gateway adapter used for webhooks.
func (s *Service) Adapter() Adapter { return s.adapter }

type checkoutResult struct {
	lineItems []LineItem
	detail    OrderDetail
}

// CreateSessionURL reserves stock for the buyer's cart, records an unpaid order
// and opens a gateway session for it. Stock stays reserved until the payment
// completes or the unpaid order expires.
func (s *Service) CreateSessionURL(ctx context.Context, buyerID string, detail CheckoutDetail) (string, error) {
	url, err := s.createSessionURL(ctx, buyerID, detail)
	if err != nil {
		reason := ""
		if typed := pkgerrors.As(err); typed != nil {
			reason = string(typed.Reason())
		}
		s.metrics.IncSession(metrics.OutcomeFailure, reason)
		return "", err
	}
	s.metrics.IncSession(metrics.OutcomeSuccess, "")
	return url, nil
}

// encodeReference renders the metadata value for detail, rejecting values
// over the gateway limit.
func encodeReference(detail OrderDetail) ([]byte, error) {
	encoded, err := json.Marshal(detail.reference())
	if err != nil {
		return nil, pkgerrors.Payment(pkgerrors.ReasonSessionCreationFailed, fmt.Errorf("encode order detail: %w", err))
	}
	if len(encoded) > maxMetadataValue {
		return nil, pkgerrors.Payment(pkgerrors.ReasonSessionCreationFailed,
			fmt.Errorf("order detail is %d bytes, metadata limit is %d", len(encoded), maxMetadataValue))
	}
	return encoded, nil
}

func (s *Service) createSessionURL(ctx context.Context, buyerID string, detail CheckoutDetail) (string, error) {
	user, err := s.users.Get(ctx, repo.Direct(), buyerID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", pkgerrors.NotFound(pkgerrors.ReasonUserDataNotFound)
	}

	// Order ids are uuids, so the metadata size is known before any stock is reserved.
	if _, err := encodeReference(OrderDetail{OrderID: uuid.Nil.String(), BuyerID: buyerID}); err != nil {
		return "", err
	}

	var result checkoutResult
	err = repo.RunTransaction(ctx, s.store, func(ctx context.Context, wc repo.WriteContext) error {
		var err error
		result, err = s.reserve(ctx, wc, buyerID, detail)
		return err
	})
	if err != nil {
		return "", err
	}

	ctx = s.logg.WithOrderID(ctx, result.detail.OrderID)
	encoded, err := encodeReference(result.detail)
	if err != nil {
		return "", err
	}

	url, err := s.adapter.CreateSession(ctx, SessionParams{
		LineItems:     result.lineItems,
		CustomerEmail: user.Email,
		Metadata:      map[string]string{MetadataOrderDetail: string(encoded)},
		SuccessURL:    detail.SuccessURL,
		CancelURL:     detail.CancelURL,
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Payment(pkgerrors.ReasonSessionCreationFailed, err)
		}
		s.logg.Error(ctx, "checkout.session.failed", err)
		return "", err
	}
	if url == "" {
		return "", pkgerrors.Payment(pkgerrors.ReasonSessionCreationFailed, fmt.Errorf("adapter returned an empty url"))
	}

	s.logg.Info(s.logg.WithField(ctx, "amount_total", result.detail.totalAmount()), "checkout.session.created")
	return url, nil
}

// reserve runs inside the checkout transaction. Every read happens in
// ListAllPopulated before the first stock write.
func (s *Service) reserve(ctx context.Context, wc repo.WriteContext, buyerID string, detail CheckoutDetail) (checkoutResult, error) {
	lines, err := s.carts.For(buyerID).ListAllPopulated(ctx, wc)
	if err != nil {
		return checkoutResult{}, err
	}
	if len(lines) == 0 {
		return checkoutResult{}, pkgerrors.Payment(pkgerrors.ReasonEmptyCart, nil)
	}

	var amountTotal int64
	items := make([]LineItem, 0, len(lines))
	grouped := map[string][]orders.Line{}
	for _, line := range lines {
		p := line.Product
		rest := p.Stock - line.Quantity
		if rest < 0 {
			return checkoutResult{}, pkgerrors.Order(pkgerrors.ReasonOutOfStock).
				WithDetails(map[string]any{"product_id": p.ID, "name": p.Name, "stock": p.Stock, "quantity": line.Quantity})
		}
		if err := s.products.Update(ctx, wc, p.ID, docstore.Fields{"stock": rest}); err != nil {
			return checkoutResult{}, err
		}

		amountTotal += p.Price * line.Quantity
		items = append(items, LineItem{
			Name:       p.Name,
			Currency:   s.currency.String(),
			UnitAmount: p.Price,
			Quantity:   line.Quantity,
		})
		grouped[p.CreatedBy] = append(grouped[p.CreatedBy], orders.Line{Product: p, Quantity: line.Quantity})
	}

	order := &orders.BuyerOrder{
		Status:          enums.OrderStatusUnpaid,
		AmountTotal:     amountTotal,
		ShippingAddress: detail.ShippingAddress,
		Products:        grouped,
	}
	if err := s.orders.Buyer(buyerID).Create(ctx, wc, order); err != nil {
		return checkoutResult{}, err
	}

	return checkoutResult{
		lineItems: items,
		detail: OrderDetail{
			OrderID:         order.ID,
			BuyerID:         buyerID,
			Products:        order.Products,
			ShippingAddress: order.ShippingAddress,
		},
	}, nil
}

// CompleteThePayment marks the buyer order paid and writes one seller order per
// seller. A replay for an order already paid under the same session is a no-op.
func (s *Service) CompleteThePayment(ctx context.Context, session Session) error {
	err := s.completeThePayment(ctx, session)
	if err != nil {
		s.metrics.IncCompletion(metrics.OutcomeFailure)
		return err
	}
	s.metrics.IncCompletion(metrics.OutcomeSuccess)
	return nil
}

func (s *Service) completeThePayment(ctx context.Context, session Session) error {
	detail := session.OrderDetail
	buyers := s.orders.Buyer(detail.BuyerID)

	return repo.RunTransaction(ctx, s.store, func(ctx context.Context, wc repo.WriteContext) error {
		order, err := buyers.Get(ctx, wc, detail.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return pkgerrors.Database(pkgerrors.ReasonTransactionFailed,
				fmt.Errorf("buyer order %s/%s not found", detail.BuyerID, detail.OrderID))
		}
		if order.Status != enums.OrderStatusUnpaid && order.SessionID == session.SessionID {
			return nil
		}

		products := detail.Products
		if len(products) == 0 {
			products = order.Products
		}
		shipping := detail.ShippingAddress
		if shipping.ZipCode == "" {
			shipping = order.ShippingAddress
		}

		if err := buyers.Update(ctx, wc, detail.OrderID, docstore.Fields{
			"status":     string(enums.OrderStatusPaid),
			"session_id": session.SessionID,
		}); err != nil {
			return err
		}

		sellerIDs := make([]string, 0, len(products))
		for sellerID := range products {
			sellerIDs = append(sellerIDs, sellerID)
		}
		sort.Strings(sellerIDs)

		for _, sellerID := range sellerIDs {
			lines := products[sellerID]
			var amount int64
			for _, line := range lines {
				amount += line.Subtotal()
			}
			sellerOrder := &orders.SellerOrder{
				Meta:            docstore.Meta{ID: detail.OrderID},
				BuyerID:         detail.BuyerID,
				Status:          enums.OrderStatusPaid,
				AmountTotal:     amount,
				ShippingAddress: shipping,
				Products:        lines,
				SessionID:       session.SessionID,
			}
			if err := s.orders.Seller(sellerID).Create(ctx, wc, sellerOrder); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d OrderDetail) totalAmount() int64 {
	var total int64
	for _, lines := range d.Products {
		for _, line := range lines {
			total += line.Subtotal()
		}
	}
	return total
}
