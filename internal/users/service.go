package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Service exposes user profile operations.
type Service interface {
	GetUser(ctx context.Context, viewer Viewer, userID string) (*User, error)
	GetRole(ctx context.Context, userID string) (enums.Role, error)
	CreateUser(ctx context.Context, userID string, input CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, userID string, input UpdateUserInput) error
	DeleteUser(ctx context.Context, userID string) error
}

// Viewer is the authenticated caller reading a profile.
type Viewer struct {
	UID        string
	Privileged bool
}

// CreateUserInput is the validated registration payload.
type CreateUserInput struct {
	Name      string
	Email     string
	Addresses []types.UserAddress
	Role      enums.Role
}

// UpdateUserInput holds optional profile changes. The role cannot change after registration.
type UpdateUserInput struct {
	Name      *string
	Email     *string
	Addresses *[]types.UserAddress
}

type roleSetter interface {
	SetRole(ctx context.Context, uid string, role enums.Role) error
}

type cartResetter interface {
	Reset(ctx context.Context, userID string) error
}

// ServiceParams groups the dependencies of the users service.
type ServiceParams struct {
	Repo  *Repository
	Roles roleSetter
	Carts cartResetter
}

type service struct {
	repo  *Repository
	roles roleSetter
	carts cartResetter
}

// NewService constructs a users service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Roles == nil {
		return nil, fmt.Errorf("role setter required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart resetter required")
	}
	return &service{repo: params.Repo, roles: params.Roles, carts: params.Carts}, nil
}

// GetUser returns nil when the profile is missing, or when it belongs to a buyer
// other than the viewer. Seller profiles are visible to everyone.
func (s *service) GetUser(ctx context.Context, viewer Viewer, userID string) (*User, error) {
	user, err := s.repo.Get(ctx, repo.Direct(), userID)
	if err != nil || user == nil {
		return nil, err
	}
	if userID != viewer.UID && !viewer.Privileged && user.Role != "" && user.Role != enums.RoleSeller {
		return nil, nil
	}
	return user, nil
}

// GetRole reads the role from the stored profile.
func (s *service) GetRole(ctx context.Context, userID string) (enums.Role, error) {
	user, err := s.repo.Get(ctx, repo.Direct(), userID)
	if err != nil {
		return "", err
	}
	if user == nil || !user.Role.IsValid() {
		return "", pkgerrors.NotFound(pkgerrors.ReasonUserDataNotFound)
	}
	return user.Role, nil
}

// CreateUser stores the profile under the caller's uid and publishes the role claim.
func (s *service) CreateUser(ctx context.Context, userID string, input CreateUserInput) (*User, error) {
	if !input.Role.IsValid() {
		return nil, pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "role must be buyer or seller")
	}
	user := &User{
		Meta:      docstore.Meta{ID: userID},
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Addresses: append([]types.UserAddress{}, input.Addresses...),
		Role:      input.Role,
	}
	if err := s.repo.Create(ctx, repo.Direct(), user); err != nil {
		return nil, err
	}
	if err := s.roles.SetRole(ctx, userID, input.Role); err != nil {
		return nil, pkgerrors.Unauthorized(pkgerrors.ReasonInvalidToken, err)
	}
	return user, nil
}

func (s *service) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) error {
	fields := docstore.Fields{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		fields["email"] = strings.TrimSpace(*input.Email)
	}
	if input.Addresses != nil {
		fields["addresses"] = append([]types.UserAddress{}, (*input.Addresses)...)
	}
	if len(fields) == 0 {
		return nil
	}
	return s.repo.Update(ctx, repo.Direct(), userID, fields)
}

// DeleteUser removes the profile and empties the cart.
func (s *service) DeleteUser(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, repo.Direct(), userID); err != nil {
		return err
	}
	return s.carts.Reset(ctx, userID)
}
