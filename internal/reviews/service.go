package reviews

import (
	"context"
	"fmt"
	"strings"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

// MinTitleLength is the shortest accepted review title.
const MinTitleLength = 5

// Service exposes product reviews.
type Service interface {
	ListAll(ctx context.Context, spec *querybuilder.Spec) ([]Review, error)
	List(ctx context.Context, userID string, spec *querybuilder.Spec) ([]Review, error)
	Get(ctx context.Context, userID, reviewID string) (*Review, error)
	Create(ctx context.Context, userID string, input CreateReviewInput) (*Review, error)
	Update(ctx context.Context, userID, reviewID string, input UpdateReviewInput) error
	Delete(ctx context.Context, userID, reviewID string) error
}

type CreateReviewInput struct {
	ProductID   string
	Title       string
	Description string
}

// UpdateReviewInput holds optional changes. The reviewed product cannot change.
type UpdateReviewInput struct {
	Title       *string
	Description *string
}

type service struct {
	store    docstore.Store
	products *product.Repository
}

func NewService(store docstore.Store, products *product.Repository) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("document store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) model(userID string) *Model {
	return repo.NewModel[Review](s.store, Path(userID))
}

// ListAll pages through the reviews of every user. A created_by or product_id
// filter narrows it to one author or one product.
func (s *service) ListAll(ctx context.Context, spec *querybuilder.Spec) ([]Review, error) {
	docs, err := repo.Find[Review](ctx, s.store, repo.Direct(), spec.Apply(docstore.CollectionGroup(CollectionID)))
	if err != nil {
		return nil, err
	}
	out := make([]Review, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data)
	}
	return out, nil
}

func (s *service) List(ctx context.Context, userID string, spec *querybuilder.Spec) ([]Review, error) {
	return s.model(userID).GetList(ctx, repo.Direct(), spec)
}

func (s *service) Get(ctx context.Context, userID, reviewID string) (*Review, error) {
	r, err := s.model(userID).Get(ctx, repo.Direct(), reviewID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, pkgerrors.NotFound(pkgerrors.ReasonReviewNotFound)
	}
	return r, nil
}

// Create stores the review under the product id. Reviewing the same product
// again replaces the earlier review.
func (s *service) Create(ctx context.Context, userID string, input CreateReviewInput) (*Review, error) {
	productID := strings.TrimSpace(input.ProductID)
	title := strings.TrimSpace(input.Title)
	if productID == "" {
		return nil, pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "product_id is required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	p, err := s.products.Get(ctx, repo.Direct(), productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, pkgerrors.NotFound(pkgerrors.ReasonProductNotFound)
	}

	review := &Review{
		Meta:        docstore.Meta{ID: productID},
		ProductID:   productID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		CreatedBy:   userID,
	}
	if err := s.model(userID).Create(ctx, repo.Direct(), review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *service) Update(ctx context.Context, userID, reviewID string, input UpdateReviewInput) error {
	fields := docstore.Fields{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return err
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if _, err := s.Get(ctx, userID, reviewID); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return s.model(userID).Update(ctx, repo.Direct(), reviewID, fields)
}

func (s *service) Delete(ctx context.Context, userID, reviewID string) error {
	if _, err := s.Get(ctx, userID, reviewID); err != nil {
		return err
	}
	return s.model(userID).Delete(ctx, repo.Direct(), reviewID)
}

func validateTitle(title string) error {
	if len([]rune(title)) < MinTitleLength {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation,
			fmt.Sprintf("title must be at least %d characters", MinTitleLength))
	}
	return nil
}
