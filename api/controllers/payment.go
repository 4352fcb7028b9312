package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/payment"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type checkoutService interface {
	CreateSessionURL(ctx context.Context, buyerID string, detail payment.CheckoutDetail) (string, error)
}

// CreatePayment reserves the buyer's cart and redirects to the hosted checkout page.
func CreatePayment(svc checkoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validators.PaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.CreateSessionURL(r.Context(), middleware.UserIDFromContext(r.Context()), payload.ToDetail())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.Redirect(w, r, url, http.StatusSeeOther)
	}
}
