package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// RequireRole admits callers holding role. Privileged callers always pass.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if !identity.IsPrivileged() && identity.Role != role {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "required_role", role.String()), "auth.role.denied")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden(pkgerrors.ReasonRolePermissionDenied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePrivileged admits admin and moderator callers only.
func RequirePrivileged(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IdentityFromContext(r.Context()).IsPrivileged() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden(pkgerrors.ReasonRolePermissionDenied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits admin callers only. When adminEmail is set the caller's
// email must match it as well.
func RequireAdmin(adminEmail string, logg *logger.Logger) func(http.Handler) http.Handler {
	adminEmail = strings.TrimSpace(adminEmail)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity.AccessRights != enums.AccessRightsAdmin ||
				(adminEmail != "" && !strings.EqualFold(identity.Email, adminEmail)) {
				if logg != nil {
					logg.Warn(logg.WithField(r.Context(), "uid", identity.UID), "auth.admin.denied")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden(pkgerrors.ReasonPermissionDenied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OwnUserID requires the {param} URL segment to match the caller's uid unless
// the caller is privileged.
func OwnUserID(param string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if !identity.IsPrivileged() && chi.URLParam(r, param) != identity.UID {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden(pkgerrors.ReasonPermissionDenied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ModificationRights keeps moderators read-only.
func ModificationRights(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if r.Method != http.MethodGet && identity.AccessRights == enums.AccessRightsModerator {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Forbidden(pkgerrors.ReasonPermissionDenied))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
