package firebase

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Mock tokens accepted by MockVerifier. The caller uid defaults to
// "<lowercase token>-uid" and can be chosen with a "TOKEN:uid" suffix.
const (
	MockTokenBuyer        = "BUYER"
	MockTokenSeller       = "SELLER"
	MockTokenAdmin        = "ADMIN"
	MockTokenModerator    = "MODERATOR"
	MockTokenUnregistered = "UNREGISTERED"
)

// MockVerifier resolves fixed tokens without contacting Firebase.
type MockVerifier struct{}

func (MockVerifier) Verify(_ context.Context, idToken string) (Identity, error) {
	name, uid, _ := strings.Cut(strings.TrimSpace(idToken), ":")
	if uid == "" {
		uid = strings.ToLower(name) + "-uid"
	}
	switch name {
	case MockTokenBuyer:
		return Identity{UID: uid, Email: uid + "@example.com", Role: enums.RoleBuyer}, nil
	case MockTokenSeller:
		return Identity{UID: uid, Email: uid + "@example.com", Role: enums.RoleSeller}, nil
	case MockTokenAdmin:
		return Identity{UID: uid, Email: uid + "@example.com", AccessRights: enums.AccessRightsAdmin}, nil
	case MockTokenModerator:
		return Identity{UID: uid, AccessRights: enums.AccessRightsModerator}, nil
	case MockTokenUnregistered:
		return Identity{UID: uid}, nil
	}
	return Identity{}, ErrInvalidToken
}

// SetRole is a no-op; mock identities derive their role from the token.
func (MockVerifier) SetRole(context.Context, string, enums.Role) error {
	return nil
}

func (MockVerifier) SetAccessRights(context.Context, string, enums.AccessRights) error {
	return nil
}
