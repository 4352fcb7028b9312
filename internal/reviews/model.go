package reviews

import (
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
)

// CollectionID names the per-user review subcollection, and the collection
// group that lists reviews across users.
const CollectionID = "reviews"

// Review is a buyer's review of one product. The document id is the product id,
// so a user holds at most one review per product.
type Review struct {
	docstore.Meta
	ProductID   string `json:"product_id" firestore:"product_id"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	CreatedBy   string `json:"created_by" firestore:"created_by"`
}

// Model is the typed model over one user's reviews.
type Model = repo.Model[Review, *Review]

// Path is the review subcollection of userID.
func Path(userID string) string {
	return docstore.Join("users", userID, CollectionID)
}
