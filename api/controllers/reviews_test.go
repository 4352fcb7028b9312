package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/reviews"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

type stubReviewService struct {
	err        error
	lastUser   string
	lastSpec   *querybuilder.Spec
	lastCreate reviews.CreateReviewInput
}

func (s *stubReviewService) ListAll(_ context.Context, spec *querybuilder.Spec) ([]reviews.Review, error) {
	s.lastSpec = spec
	return []reviews.Review{}, s.err
}

func (s *stubReviewService) List(_ context.Context, userID string, spec *querybuilder.Spec) ([]reviews.Review, error) {
	s.lastUser, s.lastSpec = userID, spec
	return []reviews.Review{}, s.err
}

func (s *stubReviewService) Get(_ context.Context, userID, reviewID string) (*reviews.Review, error) {
	s.lastUser = userID
	return &reviews.Review{Meta: docstore.Meta{ID: reviewID}}, s.err
}

func (s *stubReviewService) Create(_ context.Context, userID string, input reviews.CreateReviewInput) (*reviews.Review, error) {
	s.lastUser, s.lastCreate = userID, input
	return &reviews.Review{Meta: docstore.Meta{ID: input.ProductID}, CreatedBy: userID}, s.err
}

func (s *stubReviewService) Update(_ context.Context, userID, _ string, _ reviews.UpdateReviewInput) error {
	s.lastUser = userID
	return s.err
}

func (s *stubReviewService) Delete(_ context.Context, userID, _ string) error {
	s.lastUser = userID
	return s.err
}

func TestListReviewsCompilesFilters(t *testing.T) {
	svc := &stubReviewService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reviews?product_id=tea&limit=5", nil)
	rec := httptest.NewRecorder()

	ListReviews(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastSpec == nil || svc.lastSpec.Limit != 5 || len(svc.lastSpec.Filters) != 1 || svc.lastSpec.Filters[0].Field != "product_id" {
		t.Fatalf("unexpected spec %+v", svc.lastSpec)
	}
}

func TestCreateReviewSanitizesAndUsesPathUser(t *testing.T) {
	svc := &stubReviewService{}
	body := `{"product_id":"tea","title":"Nice <b>tea</b>","description":"  smooth  "}`
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/users/buyer-uid/reviews", strings.NewReader(body)),
		buyer, map[string]string{"userId": "buyer-uid"})
	rec := httptest.NewRecorder()

	CreateReview(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastUser != "buyer-uid" || svc.lastCreate.Title != "Nice &lt;b&gt;tea&lt;/b&gt;" || svc.lastCreate.Description != "smooth" {
		t.Fatalf("unexpected create %q %+v", svc.lastUser, svc.lastCreate)
	}
}

func TestCreateReviewRejectsMissingProduct(t *testing.T) {
	svc := &stubReviewService{}
	req := asCaller(httptest.NewRequest(http.MethodPost, "/api/v1/users/buyer-uid/reviews", strings.NewReader(`{"title":"Lovely tea"}`)),
		buyer, map[string]string{"userId": "buyer-uid"})
	rec := httptest.NewRecorder()

	CreateReview(svc, testLogger(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.lastUser != "" {
		t.Fatalf("service should not be called")
	}
}
