package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

const (
	DefaultExpiryWindow     = 24 * time.Hour
	DefaultRestoreBatchSize = 50
)

// RepositoryParams configures order storage and the unpaid-order sweep.
type RepositoryParams struct {
	Store            docstore.Store
	Products         *product.Repository
	ExpiryWindow     time.Duration
	RestoreBatchSize int
}

// Repository hands out buyer and seller order models.
type Repository struct {
	store     docstore.Store
	products  *product.Repository
	expiry    time.Duration
	batchSize int
}

func NewRepository(params RepositoryParams) *Repository {
	if params.ExpiryWindow <= 0 {
		params.ExpiryWindow = DefaultExpiryWindow
	}
	if params.RestoreBatchSize <= 0 {
		params.RestoreBatchSize = DefaultRestoreBatchSize
	}
	return &Repository{
		store:     params.Store,
		products:  params.Products,
		expiry:    params.ExpiryWindow,
		batchSize: params.RestoreBatchSize,
	}
}

func (r *Repository) Store() docstore.Store { return r.store }

func (r *Repository) Buyer(buyerID string) *BuyerOrders {
	return repo.NewModel[BuyerOrder](r.store, BuyerPath(buyerID))
}

func (r *Repository) Seller(sellerID string) *SellerOrders {
	return repo.NewModel[SellerOrder](r.store, SellerPath(sellerID))
}

// View reads the orders a user sees in one role.
type View interface {
	List(ctx context.Context, spec *querybuilder.Spec) (any, error)
	Get(ctx context.Context, orderID string) (any, error)
}

// For selects the buyer or seller orders of userID.
func (r *Repository) For(role enums.Role, userID string) (View, error) {
	switch role {
	case enums.RoleBuyer:
		return buyerView{r.Buyer(userID)}, nil
	case enums.RoleSeller:
		return sellerView{r.Seller(userID)}, nil
	}
	return nil, pkgerrors.Forbidden(pkgerrors.ReasonRolePermissionDenied)
}

type buyerView struct{ m *BuyerOrders }

func (v buyerView) List(ctx context.Context, spec *querybuilder.Spec) (any, error) {
	return v.m.GetList(ctx, repo.Direct(), spec)
}

func (v buyerView) Get(ctx context.Context, orderID string) (any, error) {
	o, err := v.m.Get(ctx, repo.Direct(), orderID)
	if err != nil || o == nil {
		return nil, err
	}
	return o, nil
}

type sellerView struct{ m *SellerOrders }

func (v sellerView) List(ctx context.Context, spec *querybuilder.Spec) (any, error) {
	return v.m.GetList(ctx, repo.Direct(), spec)
}

func (v sellerView) Get(ctx context.Context, orderID string) (any, error) {
	o, err := v.m.Get(ctx, repo.Direct(), orderID)
	if err != nil || o == nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves a seller order and its buyer order to status in one batch.
// Buyers cannot mark orders shipped and sellers cannot mark them delivered.
func (r *Repository) UpdateStatus(ctx context.Context, actor enums.Role, sellerID, orderID string, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, fmt.Sprintf("unknown status %q", status))
	}
	switch {
	case actor == enums.RoleBuyer && status == enums.OrderStatusShipped:
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "Buyers cannot mark the order history as 'shipped'.")
	case actor == enums.RoleSeller && status == enums.OrderStatusDelivered:
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "Sellers cannot mark the order history as 'delivered'.")
	}

	sellers := r.Seller(sellerID)
	order, err := sellers.Get(ctx, repo.Direct(), orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return pkgerrors.NotFound(pkgerrors.ReasonUserDataNotFound).
			WithDetails(map[string]any{"seller_id": sellerID, "order_id": orderID})
	}

	batch := r.store.Batch()
	wc := repo.Batched(batch)
	fields := docstore.Fields{"status": string(status)}
	if err := sellers.Update(ctx, wc, orderID, fields); err != nil {
		return err
	}
	if err := r.Buyer(order.BuyerID).Update(ctx, wc, orderID, fields); err != nil {
		return err
	}
	return repo.Commit(ctx, batch)
}

// RestoreUnpaidOrders deletes unpaid orders created before now minus the expiry
// window and returns their stock. Every product read happens before the first
// write, so all restocks and deletes commit together. It returns how many
// orders were removed.
func (r *Repository) RestoreUnpaidOrders(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-r.expiry)
	q := docstore.CollectionGroup(GroupID).
		Where("status", docstore.OpEqual, string(enums.OrderStatusUnpaid)).
		Where("created_at", docstore.OpLess, cutoff).
		WithLimit(r.batchSize)

	restored := 0
	err := repo.RunTransaction(ctx, r.store, func(ctx context.Context, wc repo.WriteContext) error {
		restored = 0
		docs, err := repo.Find[BuyerOrder](ctx, r.store, wc, q)
		if err != nil {
			return err
		}

		quantities := map[string]int64{}
		var expired []string
		for _, doc := range docs {
			if !strings.HasPrefix(doc.Path, "buyer-orders/") {
				continue
			}
			expired = append(expired, doc.Path)
			for _, lines := range doc.Data.Products {
				for _, line := range lines {
					quantities[line.Product.ID] += line.Quantity
				}
			}
		}

		productIDs := make([]string, 0, len(quantities))
		for id := range quantities {
			productIDs = append(productIDs, id)
		}
		sort.Strings(productIDs)

		existing := make([]string, 0, len(productIDs))
		for _, id := range productIDs {
			p, err := r.products.Get(ctx, wc, id)
			if err != nil {
				return err
			}
			if p != nil {
				existing = append(existing, id)
			}
		}

		for _, id := range existing {
			if err := r.products.Update(ctx, wc, id, docstore.Fields{"stock": docstore.Increment(quantities[id])}); err != nil {
				return err
			}
		}
		for _, path := range expired {
			if err := repo.DeletePath(ctx, r.store, wc, path); err != nil {
				return err
			}
		}
		restored = len(expired)
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Database(pkgerrors.ReasonUnpaidOrderDeleteFailed, err)
	}
	return restored, nil
}
