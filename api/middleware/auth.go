package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const bearerPrefix = "Bearer "

// Auth verifies the bearer ID token and seeds the request context with the caller.
func Auth(verifier firebase.TokenVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Unauthorized(pkgerrors.ReasonInvalidToken, err))
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UID)
				if role := identity.Role.String(); role != "" {
					ctx = logg.WithActorRole(ctx, role)
				}
				if identity.AccessRights != "" {
					ctx = logg.WithField(ctx, "access_rights", identity.AccessRights.String())
				}
				logg.Info(ctx, "auth.verified")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", pkgerrors.Unauthorized(pkgerrors.ReasonNoAuthorizationToken, nil)
	}
	token, found := strings.CutPrefix(header, bearerPrefix)
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", pkgerrors.Unauthorized(pkgerrors.ReasonNoBearerToken, nil)
	}
	return token, nil
}
