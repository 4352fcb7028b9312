package controllers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func asCaller(req *http.Request, identity firebase.Identity, params map[string]string) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), identity)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

var (
	seller    = firebase.Identity{UID: "seller-uid", Role: enums.RoleSeller}
	buyer     = firebase.Identity{UID: "buyer-uid", Role: enums.RoleBuyer}
	adminUser = firebase.Identity{UID: "admin-uid", Role: enums.RoleBuyer, AccessRights: enums.AccessRightsAdmin}
	newcomer  = firebase.Identity{UID: "new-uid"}
)
