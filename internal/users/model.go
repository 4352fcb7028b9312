package users

import (
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Collection holds one document per user, keyed by the auth uid.
const Collection = "users"

// User is a registered storefront account.
type User struct {
	docstore.Meta
	Name      string              `json:"name" firestore:"name"`
	Email     string              `json:"email" firestore:"email"`
	Addresses []types.UserAddress `json:"addresses" firestore:"addresses"`
	Role      enums.Role          `json:"role" firestore:"role"`
}

// Repository is the typed model over the users collection.
type Repository = repo.Model[User, *User]

// NewRepository binds the users collection on store.
func NewRepository(store docstore.Store) *Repository {
	return repo.NewModel[User](store, Collection)
}
