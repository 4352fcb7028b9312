package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/docstore/memory"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type fixture struct {
	store    *memory.Store
	products *product.Repository
	carts    *Repository
}

func newFixture(t *testing.T, maxItems int) fixture {
	t.Helper()
	store := memory.New()
	products := product.NewRepository(store)
	return fixture{store: store, products: products, carts: NewRepository(store, products, maxItems)}
}

func (f fixture) seedProduct(t *testing.T, id string, price, stock int64) {
	t.Helper()
	p := &product.Product{Meta: docstore.Meta{ID: id}, Name: id, Price: price, Stock: stock, CreatedBy: "seller-uid"}
	if err := f.products.Create(context.Background(), repo.Direct(), p); err != nil {
		t.Fatalf("seed product %s: %v", id, err)
	}
}

func cartSize(t *testing.T, m *Model) int {
	t.Helper()
	n, err := m.items.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestAddCreatesThenIncrements(t *testing.T) {
	f := newFixture(t, 0)
	c := f.carts.For("buyer-uid")
	ctx := context.Background()

	if err := c.Add(ctx, "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(ctx, "p1", 3); err != nil {
		t.Fatalf("add again: %v", err)
	}
	item, err := c.items.Get(ctx, repo.Direct(), "p1")
	if err != nil || item == nil {
		t.Fatalf("get item: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", item.Quantity)
	}
}

func TestAddRejectsFullCart(t *testing.T) {
	f := newFixture(t, 2)
	c := f.carts.For("buyer-uid")
	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		if err := c.Add(ctx, id, 1); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	err := c.Add(ctx, "p3", 1)
	if !pkgerrors.HasReason(err, pkgerrors.CodeDatabase, pkgerrors.ReasonUpdateFailed) {
		t.Fatalf("expected UPDATE_FAILED, got %v", err)
	}
	if n := cartSize(t, c); n != 2 {
		t.Fatalf("full cart must not grow, got %d lines", n)
	}
	// the cap applies to existing lines too
	if err := c.Add(ctx, "p1", 1); err == nil {
		t.Fatalf("expected add to full cart to fail even for an existing line")
	}
}

func TestReduce(t *testing.T) {
	f := newFixture(t, 0)
	c := f.carts.For("buyer-uid")
	ctx := context.Background()
	if err := c.Add(ctx, "p1", 5); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := c.Reduce(ctx, "p1", 2); err != nil {
		t.Fatalf("reduce: %v", err)
	}
	item, _ := c.items.Get(ctx, repo.Direct(), "p1")
	if item == nil || item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %+v", item)
	}

	if err := c.Reduce(ctx, "p1", 10); err != nil {
		t.Fatalf("reduce past zero: %v", err)
	}
	if item, _ := c.items.Get(ctx, repo.Direct(), "p1"); item != nil {
		t.Fatalf("expected line to be deleted, got %+v", item)
	}

	err := c.Reduce(ctx, "p1", 1)
	if !pkgerrors.HasReason(err, pkgerrors.CodeDatabase, pkgerrors.ReasonUpdateFailed) {
		t.Fatalf("expected UPDATE_FAILED for missing line, got %v", err)
	}
}

func TestGetListPopulatedSkipsMissingProducts(t *testing.T) {
	f := newFixture(t, 0)
	f.seedProduct(t, "p1", 100, 9)
	c := f.carts.For("buyer-uid")
	ctx := context.Background()
	for _, id := range []string{"p1", "gone"} {
		if err := c.Add(ctx, id, 2); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}

	lines, err := c.GetListPopulatedProduct(ctx, nil)
	if err != nil {
		t.Fatalf("populated: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one populated line, got %+v", lines)
	}
	if lines[0].Product.ID != "p1" || lines[0].Quantity != 2 || lines[0].Product.Price != 100 {
		t.Fatalf("unexpected line %+v", lines[0])
	}
}

func TestResetClearsEveryLine(t *testing.T) {
	f := newFixture(t, 150)
	c := f.carts.For("buyer-uid")
	ctx := context.Background()

	if err := c.Reset(ctx); err != nil {
		t.Fatalf("reset empty cart: %v", err)
	}
	for i := 0; i < 120; i++ {
		if err := c.Add(ctx, fmt.Sprintf("p%03d", i), 1); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	other := f.carts.For("other-uid")
	if err := other.Add(ctx, "p1", 1); err != nil {
		t.Fatalf("add other: %v", err)
	}

	if err := f.carts.Reset(ctx, "buyer-uid"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if n := cartSize(t, c); n != 0 {
		t.Fatalf("expected empty cart, got %d lines", n)
	}
	if n := cartSize(t, other); n != 1 {
		t.Fatalf("reset must not touch other carts, got %d lines", n)
	}
}

// barrierStore holds Count callers until all of them have read the size.
type barrierStore struct {
	docstore.Store
	wg *sync.WaitGroup
}

func (b barrierStore) Count(ctx context.Context, q docstore.Query) (int, error) {
	n, err := b.Store.Count(ctx, q)
	b.wg.Done()
	b.wg.Wait()
	return n, err
}

func TestConcurrentAddsCanExceedCapacity(t *testing.T) {
	const maxItems = 3
	mem := memory.New()
	seed := NewRepository(mem, product.NewRepository(mem), maxItems).For("buyer-uid")
	ctx := context.Background()
	for _, id := range []string{"p1", "p2"} {
		if err := seed.Add(ctx, id, 1); err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	var barrier sync.WaitGroup
	barrier.Add(2)
	store := barrierStore{Store: mem, wg: &barrier}
	c := NewRepository(store, product.NewRepository(store), maxItems).For("buyer-uid")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"p3", "p4"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = c.Add(ctx, id, 1)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if n := cartSize(t, seed); n != maxItems+1 {
		t.Fatalf("expected both racing adds to land (%d lines), got %d", maxItems+1, n)
	}
}
