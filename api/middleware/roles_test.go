package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
)

func withIdentity(identity firebase.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

var (
	buyer     = firebase.Identity{UID: "buyer-uid", Role: enums.RoleBuyer}
	seller    = firebase.Identity{UID: "seller-uid", Role: enums.RoleSeller}
	admin     = firebase.Identity{UID: "admin-uid", AccessRights: enums.AccessRightsAdmin}
	moderator = firebase.Identity{UID: "moderator-uid", AccessRights: enums.AccessRightsModerator}
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		identity firebase.Identity
		want     int
	}{
		{"matching role", seller, http.StatusOK},
		{"other role", buyer, http.StatusForbidden},
		{"no role", firebase.Identity{UID: "unregistered-uid"}, http.StatusForbidden},
		{"admin bypass", admin, http.StatusOK},
		{"moderator bypass", moderator, http.StatusOK},
	}
	for _, tc := range cases {
		handler := withIdentity(tc.identity)(RequireRole(enums.RoleSeller, nil)(okHandler()))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func TestOwnUserID(t *testing.T) {
	cases := []struct {
		name     string
		identity firebase.Identity
		path     string
		want     int
	}{
		{"own id", buyer, "/users/buyer-uid", http.StatusOK},
		{"other id", buyer, "/users/seller-uid", http.StatusForbidden},
		{"privileged", admin, "/users/seller-uid", http.StatusOK},
	}
	for _, tc := range cases {
		r := chi.NewRouter()
		r.Use(withIdentity(tc.identity))
		r.With(OwnUserID("userId", nil)).Get("/users/{userId}", okHandler().ServeHTTP)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func TestModificationRightsKeepsModeratorReadOnly(t *testing.T) {
	cases := []struct {
		identity firebase.Identity
		method   string
		want     int
	}{
		{moderator, http.MethodGet, http.StatusOK},
		{moderator, http.MethodPatch, http.StatusForbidden},
		{moderator, http.MethodPost, http.StatusForbidden},
		{admin, http.MethodDelete, http.StatusOK},
		{buyer, http.MethodPost, http.StatusOK},
	}
	for _, tc := range cases {
		handler := withIdentity(tc.identity)(ModificationRights(nil)(okHandler()))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(tc.method, "/", nil))
		if resp.Code != tc.want {
			t.Fatalf("%s %s: expected %d got %d", tc.identity.UID, tc.method, tc.want, resp.Code)
		}
	}
}

func TestRequirePrivileged(t *testing.T) {
	for identity, want := range map[string]int{"buyer": http.StatusForbidden, "admin": http.StatusOK} {
		id := buyer
		if identity == "admin" {
			id = admin
		}
		handler := withIdentity(id)(RequirePrivileged(nil)(okHandler()))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
		if resp.Code != want {
			t.Fatalf("%s: expected %d got %d", identity, want, resp.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	owner := firebase.Identity{UID: "owner-uid", Email: "Owner@Example.com", AccessRights: enums.AccessRightsAdmin}
	cases := []struct {
		name       string
		adminEmail string
		identity   firebase.Identity
		want       int
	}{
		{"admin without configured email", "", admin, http.StatusOK},
		{"moderator", "", moderator, http.StatusForbidden},
		{"buyer", "", buyer, http.StatusForbidden},
		{"matching email ignores case", "owner@example.com", owner, http.StatusOK},
		{"admin with other email", "owner@example.com", admin, http.StatusForbidden},
	}
	for _, tc := range cases {
		handler := withIdentity(tc.identity)(RequireAdmin(tc.adminEmail, nil)(okHandler()))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, resp.Code)
		}
	}
}
