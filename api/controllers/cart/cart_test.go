package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

type stubCartService struct {
	lines       []cartsvc.PopulatedLine
	err         error
	lastUser    string
	lastProduct string
	lastQty     int64
	lastSpec    *querybuilder.Spec
	resets      int
}

func (s *stubCartService) List(_ context.Context, userID string, spec *querybuilder.Spec) ([]cartsvc.PopulatedLine, error) {
	s.lastUser = userID
	s.lastSpec = spec
	return s.lines, s.err
}

func (s *stubCartService) Add(_ context.Context, userID, productID string, qty int64) error {
	s.lastUser, s.lastProduct, s.lastQty = userID, productID, qty
	return s.err
}

func (s *stubCartService) Reduce(_ context.Context, userID, productID string, qty int64) error {
	s.lastUser, s.lastProduct, s.lastQty = userID, productID, -qty
	return s.err
}

func (s *stubCartService) Reset(_ context.Context, userID string) error {
	s.lastUser = userID
	s.resets++
	return s.err
}

func withUser(req *http.Request, userID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(userParam, userID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCartFetchSuccess(t *testing.T) {
	svc := &stubCartService{lines: []cartsvc.PopulatedLine{{
		Product:  product.Product{Meta: docstore.Meta{ID: "p-1"}, Name: "kettle", Price: 1200},
		Quantity: 2,
	}}}
	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/buyer-uid/cart?limit=5", nil), "buyer-uid")
	rec := httptest.NewRecorder()

	Fetch(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastUser != "buyer-uid" {
		t.Fatalf("expected buyer-uid, got %q", svc.lastUser)
	}
	if svc.lastSpec == nil || svc.lastSpec.Limit != 5 {
		t.Fatalf("expected limit 5 to reach the service, got %+v", svc.lastSpec)
	}

	var envelope struct {
		Data []struct {
			Product  struct{ Name string } `json:"product"`
			Quantity int64                 `json:"quantity"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Quantity != 2 || envelope.Data[0].Product.Name != "kettle" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCartAddPassesQuantity(t *testing.T) {
	svc := &stubCartService{}
	body := strings.NewReader(`{"product_id":"p-1","quantity":3}`)
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/buyer-uid/cart/add", body), "buyer-uid")
	rec := httptest.NewRecorder()

	Add(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastProduct != "p-1" || svc.lastQty != 3 {
		t.Fatalf("unexpected call product=%q qty=%d", svc.lastProduct, svc.lastQty)
	}
}

func TestCartAddRejectsNonPositiveQuantity(t *testing.T) {
	svc := &stubCartService{}
	body := strings.NewReader(`{"product_id":"p-1","quantity":0}`)
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/buyer-uid/cart/add", body), "buyer-uid")
	rec := httptest.NewRecorder()

	Add(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.lastProduct != "" {
		t.Fatalf("service should not be called on invalid body")
	}
}

func TestCartSubtractSurfacesServiceError(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.NotFound(pkgerrors.ReasonProductNotFound)}
	body := strings.NewReader(`{"product_id":"missing","quantity":1}`)
	req := withUser(httptest.NewRequest(http.MethodPatch, "/api/v1/users/buyer-uid/cart/subtract", body), "buyer-uid")
	rec := httptest.NewRecorder()

	Subtract(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if svc.lastQty != -1 {
		t.Fatalf("expected reduce by one, got %d", svc.lastQty)
	}
}

func TestCartResetReturnsNoContent(t *testing.T) {
	svc := &stubCartService{}
	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/users/buyer-uid/cart", nil), "buyer-uid")
	rec := httptest.NewRecorder()

	Reset(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if svc.resets != 1 || svc.lastUser != "buyer-uid" {
		t.Fatalf("expected one reset for buyer-uid, got %d for %q", svc.resets, svc.lastUser)
	}
}
