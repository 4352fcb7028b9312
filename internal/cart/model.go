package cart

import (
	"context"
	"fmt"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

// DefaultMaxItems bounds the number of distinct products a cart may hold.
const DefaultMaxItems = 50

// Item is one cart line. The document id is the product id.
type Item struct {
	docstore.Meta
	Quantity int64 `json:"quantity" firestore:"quantity"`
}

// PopulatedLine pairs a cart quantity with the current product document.
type PopulatedLine struct {
	Product  product.Product `json:"product"`
	Quantity int64           `json:"quantity"`
}

// Repository hands out carts scoped to a single user.
type Repository struct {
	store    docstore.Store
	products *product.Repository
	maxItems int
}

// NewRepository builds a cart repository. A non-positive maxItems falls back to DefaultMaxItems.
func NewRepository(store docstore.Store, products *product.Repository, maxItems int) *Repository {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Repository{store: store, products: products, maxItems: maxItems}
}

// For returns the cart of userID.
func (r *Repository) For(userID string) *Model {
	return &Model{
		items:    repo.NewModel[Item](r.store, Path(userID)),
		products: r.products,
		store:    r.store,
		maxItems: r.maxItems,
	}
}

// Service is the per-user cart surface used by the HTTP layer and the webhook.
type Service interface {
	List(ctx context.Context, userID string, spec *querybuilder.Spec) ([]PopulatedLine, error)
	Add(ctx context.Context, userID, productID string, quantity int64) error
	Reduce(ctx context.Context, userID, productID string, quantity int64) error
	Reset(ctx context.Context, userID string) error
}

var _ Service = (*Repository)(nil)

func (r *Repository) List(ctx context.Context, userID string, spec *querybuilder.Spec) ([]PopulatedLine, error) {
	return r.For(userID).GetListPopulatedProduct(ctx, spec)
}

func (r *Repository) Add(ctx context.Context, userID, productID string, quantity int64) error {
	return r.For(userID).Add(ctx, productID, quantity)
}

func (r *Repository) Reduce(ctx context.Context, userID, productID string, quantity int64) error {
	return r.For(userID).Reduce(ctx, productID, quantity)
}

// Reset empties the cart of userID.
func (r *Repository) Reset(ctx context.Context, userID string) error {
	return r.For(userID).Reset(ctx)
}

// Path is the cart subcollection of userID.
func Path(userID string) string {
	return docstore.Join("users", userID, "cart")
}

// Model is one user's cart.
type Model struct {
	items    *repo.Model[Item, *Item]
	products *product.Repository
	store    docstore.Store
	maxItems int
}

// Add increases the quantity of productID, creating the line when absent.
//
// The capacity check counts lines outside any transaction, so concurrent adds
// of different products can each pass it and leave the cart one or more lines
// over the limit.
func (m *Model) Add(ctx context.Context, productID string, quantity int64) error {
	if quantity <= 0 {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "quantity must be positive")
	}
	count, err := m.items.Count(ctx)
	if err != nil {
		return err
	}
	if count >= m.maxItems {
		return pkgerrors.Database(pkgerrors.ReasonUpdateFailed,
			fmt.Errorf("cart holds %d items, limit is %d", count, m.maxItems)).
			WithDetails(map[string]any{"limit": m.maxItems})
	}

	return repo.RunTransaction(ctx, m.store, func(ctx context.Context, wc repo.WriteContext) error {
		item, err := m.items.Get(ctx, wc, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return m.items.Create(ctx, wc, &Item{Meta: docstore.Meta{ID: productID}, Quantity: quantity})
		}
		return m.items.Update(ctx, wc, productID, docstore.Fields{"quantity": item.Quantity + quantity})
	})
}

// Reduce lowers the quantity of productID and removes the line once it reaches zero.
func (m *Model) Reduce(ctx context.Context, productID string, quantity int64) error {
	if quantity <= 0 {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "quantity must be positive")
	}
	return repo.RunTransaction(ctx, m.store, func(ctx context.Context, wc repo.WriteContext) error {
		item, err := m.items.Get(ctx, wc, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return pkgerrors.Database(pkgerrors.ReasonUpdateFailed, fmt.Errorf("cart item %s not found", productID))
		}
		remaining := item.Quantity - quantity
		if remaining > 0 {
			return m.items.Update(ctx, wc, productID, docstore.Fields{"quantity": remaining})
		}
		return m.items.Delete(ctx, wc, productID)
	})
}

// GetListPopulatedProduct reads the cart and its products in one transaction.
func (m *Model) GetListPopulatedProduct(ctx context.Context, spec *querybuilder.Spec) ([]PopulatedLine, error) {
	var lines []PopulatedLine
	err := repo.RunTransaction(ctx, m.store, func(ctx context.Context, wc repo.WriteContext) error {
		var err error
		lines, err = m.ListPopulated(ctx, wc, spec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// ListPopulated joins each cart line with its product through wc. Lines whose
// product no longer exists are skipped.
func (m *Model) ListPopulated(ctx context.Context, wc repo.WriteContext, spec *querybuilder.Spec) ([]PopulatedLine, error) {
	items, err := m.items.GetList(ctx, wc, spec)
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, wc, items)
}

// ListAllPopulated is ListPopulated over every line, with no page limit.
// Checkout uses it so that no line escapes the reservation.
func (m *Model) ListAllPopulated(ctx context.Context, wc repo.WriteContext) ([]PopulatedLine, error) {
	items, err := m.items.All(ctx, wc)
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, wc, items)
}

func (m *Model) populate(ctx context.Context, wc repo.WriteContext, items []Item) ([]PopulatedLine, error) {
	lines := make([]PopulatedLine, 0, len(items))
	for _, item := range items {
		p, err := m.products.Get(ctx, wc, item.ID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		lines = append(lines, PopulatedLine{Product: *p, Quantity: item.Quantity})
	}
	return lines, nil
}

// Reset deletes every line. An empty cart is a no-op.
func (m *Model) Reset(ctx context.Context) error {
	page := &querybuilder.Spec{Limit: pagination.MaxLimit}
	for {
		n, err := m.items.DeleteList(ctx, repo.Direct(), page)
		if err != nil {
			return err
		}
		if n < page.Limit {
			return nil
		}
	}
}
