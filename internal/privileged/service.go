// Package privileged manages the operators whose access_rights claim
// bypasses role and ownership checks.
package privileged

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

// Service exposes operator management.
type Service interface {
	List(ctx context.Context, spec *querybuilder.Spec) ([]User, error)
	Get(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, input CreateInput) (*User, error)
	Update(ctx context.Context, id string, input UpdateInput) (*User, error)
	Delete(ctx context.Context, id string) error
}

// CreateInput grants rights to an existing auth account.
type CreateInput struct {
	ID           string
	Name         string
	Email        string
	AccessRights enums.AccessRights
}

type UpdateInput struct {
	Name         *string
	Email        *string
	AccessRights *enums.AccessRights
}

type rightsSetter interface {
	SetAccessRights(ctx context.Context, uid string, rights enums.AccessRights) error
}

type service struct {
	repo   *Repository
	claims rightsSetter
}

func NewService(repo *Repository, claims rightsSetter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("privileged users repository required")
	}
	if claims == nil {
		return nil, fmt.Errorf("access rights setter required")
	}
	return &service{repo: repo, claims: claims}, nil
}

func (s *service) List(ctx context.Context, spec *querybuilder.Spec) ([]User, error) {
	return s.repo.GetList(ctx, repo.Direct(), spec)
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.Get(ctx, repo.Direct(), id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, pkgerrors.NotFound(pkgerrors.ReasonPrivilegedUserNotFound)
	}
	return u, nil
}

// Create stores the operator and then publishes the claim. A failed claim
// removes the stored document again so the two never disagree.
func (s *service) Create(ctx context.Context, input CreateInput) (*User, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "id is required")
	}
	if err := validateRights(input.AccessRights); err != nil {
		return nil, err
	}
	u := &User{
		Meta:         docstore.Meta{ID: id},
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		AccessRights: input.AccessRights,
	}
	if err := s.repo.Create(ctx, repo.Direct(), u); err != nil {
		return nil, err
	}
	if err := s.claims.SetAccessRights(ctx, id, u.AccessRights); err != nil {
		err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish access rights claim")
		return nil, multierr.Append(err, s.repo.Delete(ctx, repo.Direct(), id))
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := docstore.Fields{}
	if input.Name != nil {
		fields["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		fields["email"] = strings.TrimSpace(*input.Email)
	}
	rightsChanged := input.AccessRights != nil && *input.AccessRights != current.AccessRights
	if rightsChanged {
		if err := validateRights(*input.AccessRights); err != nil {
			return nil, err
		}
		fields["access_rights"] = input.AccessRights.String()
	}
	if len(fields) == 0 {
		return current, nil
	}
	// Publish the claim before the document changes.
	if rightsChanged {
		if err := s.claims.SetAccessRights(ctx, id, *input.AccessRights); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish access rights claim")
		}
	}
	if err := s.repo.Update(ctx, repo.Direct(), id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete revokes the claim before removing the document.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.claims.SetAccessRights(ctx, id, enums.AccessRightsNone); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke access rights claim")
	}
	return s.repo.Delete(ctx, repo.Direct(), id)
}

func validateRights(rights enums.AccessRights) error {
	if !rights.IsPrivileged() {
		return pkgerrors.Validation(pkgerrors.ReasonBodyValidation, "access_rights must be admin or moderator")
	}
	return nil
}
