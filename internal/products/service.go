package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

// MinPrice is the smallest price a product may be listed at.
const MinPrice int64 = 100

// Service exposes product catalog operations.
type Service interface {
	ListProducts(ctx context.Context, spec *querybuilder.Spec) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, caller Caller, id string, input UpdateProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, caller Caller, id string) error
}

// Caller identifies who is mutating a product.
type Caller struct {
	UID        string
	Privileged bool
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name             string
	Thumbnail        string
	Images           []string
	ShortDescription string
	LongDescription  string
	Price            int64
	CategoryID       string
	Stock            int64
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name             *string
	Thumbnail        *string
	Images           *[]string
	ShortDescription *string
	LongDescription  *string
	Price            *int64
	CategoryID       *string
	Stock            *int64
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, spec *querybuilder.Spec) ([]Product, error) {
	return s.repo.GetList(ctx, repo.Direct(), spec)
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.Get(ctx, repo.Direct(), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, pkgerrors.NotFound(pkgerrors.ReasonProductNotFound)
	}
	return p, nil
}

// CreateProduct lists a new product owned by sellerID.
func (s *service) CreateProduct(ctx context.Context, sellerID string, input CreateProductInput) (*Product, error) {
	if err := validatePriceAndStock(&input.Price, &input.Stock); err != nil {
		return nil, err
	}
	p := &Product{
		Name:             strings.TrimSpace(input.Name),
		Thumbnail:        input.Thumbnail,
		Images:           append([]string{}, input.Images...),
		ShortDescription: input.ShortDescription,
		LongDescription:  input.LongDescription,
		Price:            input.Price,
		CategoryID:       input.CategoryID,
		Stock:            input.Stock,
		CreatedBy:        sellerID,
	}
	if err := s.repo.Create(ctx, repo.Direct(), p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct applies a partial update. Only the owner or a privileged caller may edit.
func (s *service) UpdateProduct(ctx context.Context, caller Caller, id string, input UpdateProductInput) (*Product, error) {
	if _, err := s.ownedProduct(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := validatePriceAndStock(input.Price, input.Stock); err != nil {
		return nil, err
	}
	fields := updateFields(input)
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, repo.Direct(), id, fields); err != nil {
			return nil, err
		}
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, caller Caller, id string) error {
	if _, err := s.ownedProduct(ctx, caller, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, repo.Direct(), id)
}

func (s *service) ownedProduct(ctx context.Context, caller Caller, id string) (*Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Privileged && p.CreatedBy != caller.UID {
		return nil, pkgerrors.Forbidden(pkgerrors.ReasonResourceOwner)
	}
	return p, nil
}

func validatePriceAndStock(price, stock *int64) error {
	if price != nil && *price < MinPrice {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, fmt.Sprintf("price must be at least %d", MinPrice))
	}
	if stock != nil && *stock < 0 {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "stock cannot be negative")
	}
	return nil
}

func updateFields(input UpdateProductInput) docstore.Fields {
	fields := docstore.Fields{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Thumbnail != nil {
		fields["thumbnail"] = *input.Thumbnail
	}
	if input.Images != nil {
		fields["images"] = append([]string{}, (*input.Images)...)
	}
	if input.ShortDescription != nil {
		fields["short_description"] = *input.ShortDescription
	}
	if input.LongDescription != nil {
		fields["long_description"] = *input.LongDescription
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if input.CategoryID != nil {
		fields["category_id"] = *input.CategoryID
	}
	if input.Stock != nil {
		fields["stock"] = *input.Stock
	}
	return fields
}
