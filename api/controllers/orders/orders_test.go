package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

type stubOrdersService struct {
	list      any
	detail    any
	err       error
	userID    string
	orderID   string
	actor     enums.Role
	status    enums.OrderStatus
	statusSet bool
}

func (s *stubOrdersService) ListOrders(_ context.Context, userID string, _ *querybuilder.Spec) (any, error) {
	s.userID = userID
	return s.list, s.err
}

func (s *stubOrdersService) GetOrder(_ context.Context, userID, orderID string) (any, error) {
	s.userID, s.orderID = userID, orderID
	return s.detail, s.err
}

func (s *stubOrdersService) UpdateStatus(_ context.Context, actor enums.Role, sellerID, orderID string, status enums.OrderStatus) error {
	s.actor, s.userID, s.orderID, s.status, s.statusSet = actor, sellerID, orderID, status, true
	return s.err
}

func routed(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestListOrdersUsesPathUser(t *testing.T) {
	svc := &stubOrdersService{list: []map[string]string{{"id": "o-1"}}}
	req := routed(httptest.NewRequest(http.MethodGet, "/api/v1/users/seller-uid/orders", nil), map[string]string{"userId": "seller-uid"})
	rec := httptest.NewRecorder()

	List(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.userID != "seller-uid" {
		t.Fatalf("expected seller-uid, got %q", svc.userID)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.NotFound("")}
	req := routed(httptest.NewRequest(http.MethodGet, "/api/v1/users/buyer-uid/orders/o-9", nil),
		map[string]string{"userId": "buyer-uid", "orderId": "o-9"})
	rec := httptest.NewRecorder()

	Get(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if svc.orderID != "o-9" {
		t.Fatalf("expected order o-9, got %q", svc.orderID)
	}
}

func TestUpdateStatusPassesActorAndStatus(t *testing.T) {
	svc := &stubOrdersService{}
	req := routed(httptest.NewRequest(http.MethodPatch, "/api/v1/users/seller-uid/orders/o-1/status",
		strings.NewReader(`{"status":"shipped"}`)), map[string]string{"userId": "seller-uid", "orderId": "o-1"})
	req = req.WithContext(middleware.WithIdentity(req.Context(), firebase.Identity{UID: "seller-uid", Role: enums.RoleSeller}))
	rec := httptest.NewRecorder()

	UpdateStatus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.actor != enums.RoleSeller || svc.status != enums.OrderStatusShipped || svc.orderID != "o-1" {
		t.Fatalf("unexpected call actor=%s status=%s order=%s", svc.actor, svc.status, svc.orderID)
	}

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Data["success"] {
		t.Fatalf("expected success flag, got %+v", envelope.Data)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := &stubOrdersService{}
	req := routed(httptest.NewRequest(http.MethodPatch, "/api/v1/users/seller-uid/orders/o-1/status",
		strings.NewReader(`{"status":"lost"}`)), map[string]string{"userId": "seller-uid", "orderId": "o-1"})
	rec := httptest.NewRecorder()

	UpdateStatus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.statusSet {
		t.Fatalf("service should not be called for an unknown status")
	}
}

func TestUpdateStatusSurfacesPermissionError(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.Forbidden(pkgerrors.ReasonPermissionDenied)}
	req := routed(httptest.NewRequest(http.MethodPatch, "/api/v1/users/seller-uid/orders/o-1/status",
		strings.NewReader(`{"status":"paid"}`)), map[string]string{"userId": "seller-uid", "orderId": "o-1"})
	rec := httptest.NewRecorder()

	UpdateStatus(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
