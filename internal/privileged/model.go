package privileged

import (
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Collection holds one document per operator, keyed by the auth uid.
const Collection = "privileged_users"

// User is an operator granted admin or moderator rights.
type User struct {
	docstore.Meta
	Name         string             `json:"name" firestore:"name"`
	Email        string             `json:"email" firestore:"email"`
	AccessRights enums.AccessRights `json:"access_rights" firestore:"access_rights"`
}

type Repository = repo.Model[User, *User]

func NewRepository(store docstore.Store) *Repository {
	return repo.NewModel[User](store, Collection)
}
