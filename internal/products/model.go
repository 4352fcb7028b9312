package product

import (
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
)

// Collection holds one document per listed product.
const Collection = "products"

// Product is a sellable item. Price is in minor currency units.
type Product struct {
	docstore.Meta
	Name             string   `json:"name" firestore:"name"`
	Thumbnail        string   `json:"thumbnail" firestore:"thumbnail"`
	Images           []string `json:"images" firestore:"images"`
	ShortDescription string   `json:"short_description" firestore:"short_description"`
	LongDescription  string   `json:"long_description" firestore:"long_description"`
	Price            int64    `json:"price" firestore:"price"`
	CategoryID       string   `json:"category_id" firestore:"category_id"`
	Stock            int64    `json:"stock" firestore:"stock"`
	CreatedBy        string   `json:"created_by" firestore:"created_by"`
}

// Repository is the typed model over the products collection.
type Repository = repo.Model[Product, *Product]

// NewRepository binds the products collection on store.
func NewRepository(store docstore.Store) *Repository {
	return repo.NewModel[Product](store, Collection)
}
