package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type stubProductService struct {
	products    []product.Product
	product     *product.Product
	err         error
	lastSpec    *querybuilder.Spec
	lastSeller  string
	lastCaller  product.Caller
	lastID      string
	createCalls int
	lastCreate  product.CreateProductInput
	lastUpdate  product.UpdateProductInput
}

func (s *stubProductService) ListProducts(_ context.Context, spec *querybuilder.Spec) ([]product.Product, error) {
	s.lastSpec = spec
	return s.products, s.err
}

func (s *stubProductService) GetProduct(_ context.Context, id string) (*product.Product, error) {
	s.lastID = id
	return s.product, s.err
}

func (s *stubProductService) CreateProduct(_ context.Context, sellerID string, input product.CreateProductInput) (*product.Product, error) {
	s.createCalls++
	s.lastSeller = sellerID
	s.lastCreate = input
	return &product.Product{Meta: docstore.Meta{ID: "p-new"}, Name: input.Name, CreatedBy: sellerID}, s.err
}

func (s *stubProductService) UpdateProduct(_ context.Context, caller product.Caller, id string, input product.UpdateProductInput) (*product.Product, error) {
	s.lastCaller, s.lastID, s.lastUpdate = caller, id, input
	return s.product, s.err
}

func (s *stubProductService) DeleteProduct(_ context.Context, caller product.Caller, id string) error {
	s.lastCaller, s.lastID = caller, id
	return s.err
}

const validProductBody = `{
	"name": "Iron kettle",
	"thumbnail": "https://image.com/t.webp",
	"images": ["https://image.com/1.webp"],
	"short_description": "cast iron",
	"long_description": "a heavy cast iron kettle",
	"price": 1200,
	"category_id": "kitchen",
	"stock": 4,
	"created_by": "%s"
}`

func productBody(owner string) *strings.Reader {
	return strings.NewReader(strings.Replace(validProductBody, "%s", owner, 1))
}

func TestListProductsForwardsQuery(t *testing.T) {
	svc := &stubProductService{products: []product.Product{{Meta: docstore.Meta{ID: "p-1"}, Name: "kettle"}}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?price=gt:100&limit=3", nil)
	rec := httptest.NewRecorder()

	ListProducts(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastSpec == nil || svc.lastSpec.Limit != 3 || len(svc.lastSpec.Filters) != 1 {
		t.Fatalf("unexpected spec %+v", svc.lastSpec)
	}
}

func TestGetProductMissingIsNull(t *testing.T) {
	svc := &stubProductService{}
	req := asCaller(httptest.NewRequest(http.MethodGet, "/api/v1/products/p-9", nil), buyer, map[string]string{"productId": "p-9"})
	rec := httptest.NewRecorder()

	GetProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastID != "p-9" {
		t.Fatalf("expected p-9, got %q", svc.lastID)
	}
	var envelope types.Envelope[any]
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data != nil {
		t.Fatalf("expected null data, got %v", envelope.Data)
	}
}

func TestCreateProductForOwnSeller(t *testing.T) {
	svc := &stubProductService{}
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/products", productBody("seller-uid")), seller, nil)
	rec := httptest.NewRecorder()

	CreateProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastSeller != "seller-uid" || svc.lastCreate.Price != 1200 {
		t.Fatalf("unexpected create seller=%q input=%+v", svc.lastSeller, svc.lastCreate)
	}
}

func TestCreateProductRejectsForeignOwner(t *testing.T) {
	svc := &stubProductService{}
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/products", productBody("other-seller")), seller, nil)
	rec := httptest.NewRecorder()

	CreateProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Reason != string(pkgerrors.ReasonResourceOwner) {
		t.Fatalf("expected RESOURCE_OWNER_ERROR, got %q", envelope.Error.Reason)
	}
	if svc.createCalls != 0 {
		t.Fatalf("service should not be called")
	}
}

func TestCreateProductPrivilegedMayActForSeller(t *testing.T) {
	svc := &stubProductService{}
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/products", productBody("seller-uid")), adminUser, nil)
	rec := httptest.NewRecorder()

	CreateProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastSeller != "seller-uid" {
		t.Fatalf("expected product owned by seller-uid, got %q", svc.lastSeller)
	}
}

func TestCreateProductValidatesBody(t *testing.T) {
	svc := &stubProductService{}
	body := strings.NewReader(`{"name":"kettle","price":50,"created_by":"seller-uid"}`)
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/products", body), seller, nil)
	rec := httptest.NewRecorder()

	CreateProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	details, ok := envelope.Error.Details.(map[string]any)
	if !ok || details["price"] == nil {
		t.Fatalf("expected price detail, got %+v", envelope.Error.Details)
	}
}

func TestUpdateProductPassesCaller(t *testing.T) {
	svc := &stubProductService{product: &product.Product{Meta: docstore.Meta{ID: "p-1"}}}
	req := asCaller(httptest.NewRequest(http.MethodPatch, "/api/v1/products/p-1", strings.NewReader(`{"stock":0}`)),
		seller, map[string]string{"productId": "p-1"})
	rec := httptest.NewRecorder()

	UpdateProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastCaller.UID != "seller-uid" || svc.lastCaller.Privileged {
		t.Fatalf("unexpected caller %+v", svc.lastCaller)
	}
	if svc.lastUpdate.Stock == nil || *svc.lastUpdate.Stock != 0 {
		t.Fatalf("expected stock 0 in update, got %+v", svc.lastUpdate.Stock)
	}
}

func TestDeleteProductNotOwner(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.Forbidden(pkgerrors.ReasonPermissionDenied)}
	req := asCaller(httptest.NewRequest(http.MethodDelete, "/api/v1/products/p-1", nil),
		seller, map[string]string{"productId": "p-1"})
	rec := httptest.NewRecorder()

	DeleteProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestDeleteProductNoContent(t *testing.T) {
	svc := &stubProductService{}
	req := asCaller(httptest.NewRequest(http.MethodDelete, "/api/v1/products/p-1", nil),
		adminUser, map[string]string{"productId": "p-1"})
	rec := httptest.NewRecorder()

	DeleteProduct(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if !svc.lastCaller.Privileged {
		t.Fatalf("expected privileged caller")
	}
}
