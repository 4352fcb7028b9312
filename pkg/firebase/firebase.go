// Package firebase verifies Firebase ID tokens and exposes the storefront claims.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const (
	claimRole         = "role"
	claimAccessRights = "access_rights"
	claimEmail        = "email"
)

// ErrInvalidToken is returned for tokens that fail verification or carry unusable claims.
var ErrInvalidToken = errors.New("firebase: invalid id token")

// Identity is the verified caller.
type Identity struct {
	UID          string
	Email        string
	Role         enums.Role
	AccessRights enums.AccessRights
}

// IsPrivileged reports whether the caller holds admin or moderator rights.
func (i Identity) IsPrivileged() bool {
	return i.AccessRights.IsPrivileged()
}

// TokenVerifier resolves a bearer token into an Identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// RoleSetter persists the storefront role as a custom claim so later tokens carry it.
type RoleSetter interface {
	SetRole(ctx context.Context, uid string, role enums.Role) error
}

// AccessRightsSetter publishes operator rights as a custom claim.
type AccessRightsSetter interface {
	SetAccessRights(ctx context.Context, uid string, rights enums.AccessRights) error
}

type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

// Verifier checks tokens against Firebase Auth.
type Verifier struct {
	client authClient
}

// NewVerifier initializes the Firebase app for the configured project.
func NewVerifier(ctx context.Context, cfg config.GCPConfig, logg *logger.Logger) (*Verifier, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firebase project id is required")
	}
	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "project_id", cfg.ProjectID), "firebase auth initialized")
	}
	return &Verifier{client: client}, nil
}

func (v *Verifier) Verify(ctx context.Context, idToken string) (Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromToken(token)
}

// SetRole merges the role into the user's existing custom claims.
func (v *Verifier) SetRole(ctx context.Context, uid string, role enums.Role) error {
	return v.mergeClaims(ctx, uid, func(claims map[string]interface{}) {
		claims[claimRole] = role.String()
	})
}

// SetAccessRights grants operator rights. AccessRightsNone removes the claim.
func (v *Verifier) SetAccessRights(ctx context.Context, uid string, rights enums.AccessRights) error {
	return v.mergeClaims(ctx, uid, func(claims map[string]interface{}) {
		if rights == enums.AccessRightsNone {
			delete(claims, claimAccessRights)
			return
		}
		claims[claimAccessRights] = rights.String()
	})
}

func (v *Verifier) mergeClaims(ctx context.Context, uid string, edit func(map[string]interface{})) error {
	user, err := v.client.GetUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("load firebase user %s: %w", uid, err)
	}
	claims := make(map[string]interface{}, len(user.CustomClaims)+1)
	for k, val := range user.CustomClaims {
		claims[k] = val
	}
	edit(claims)
	if err := v.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("set firebase claims for %s: %w", uid, err)
	}
	return nil
}

func identityFromToken(token *auth.Token) (Identity, error) {
	if token == nil || strings.TrimSpace(token.UID) == "" {
		return Identity{}, fmt.Errorf("%w: missing uid", ErrInvalidToken)
	}
	id := Identity{UID: token.UID}
	id.Email, _ = token.Claims[claimEmail].(string)

	if raw, ok := token.Claims[claimRole].(string); ok && raw != "" {
		role, err := enums.ParseRole(raw)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		id.Role = role
	}
	if raw, ok := token.Claims[claimAccessRights].(string); ok {
		rights, err := enums.ParseAccessRights(raw)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		id.AccessRights = rights
	}
	return id, nil
}
