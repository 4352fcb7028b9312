package validators

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/pkg/querybuilder"
)

// ListSpec compiles the request's query string for list endpoints.
func ListSpec(r *http.Request) *querybuilder.Spec {
	return querybuilder.Parse(r.URL.Query())
}
