package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

type roleLookup interface {
	GetRole(ctx context.Context, userID string) (enums.Role, error)
}

// Service resolves the caller's stored role before touching orders.
type Service interface {
	ListOrders(ctx context.Context, userID string, spec *querybuilder.Spec) (any, error)
	GetOrder(ctx context.Context, userID, orderID string) (any, error)
	UpdateStatus(ctx context.Context, actor enums.Role, sellerID, orderID string, status enums.OrderStatus) error
}

type service struct {
	repo  *Repository
	roles roleLookup
}

// NewService constructs an orders service.
func NewService(repo *Repository, roles roleLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role lookup required")
	}
	return &service{repo: repo, roles: roles}, nil
}

func (s *service) view(ctx context.Context, userID string) (View, error) {
	role, err := s.roles.GetRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.For(role, userID)
}

func (s *service) ListOrders(ctx context.Context, userID string, spec *querybuilder.Spec) (any, error) {
	v, err := s.view(ctx, userID)
	if err != nil {
		return nil, err
	}
	return v.List(ctx, spec)
}

func (s *service) GetOrder(ctx context.Context, userID, orderID string) (any, error) {
	v, err := s.view(ctx, userID)
	if err != nil {
		return nil, err
	}
	return v.Get(ctx, orderID)
}

func (s *service) UpdateStatus(ctx context.Context, actor enums.Role, sellerID, orderID string, status enums.OrderStatus) error {
	return s.repo.UpdateStatus(ctx, actor, sellerID, orderID, status)
}
