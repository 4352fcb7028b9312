package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	webhookcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/webhooks"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payment"
	"github.com/angelmondragon/storefront-backend/internal/privileged"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/reviews"
	"github.com/angelmondragon/storefront-backend/internal/users"
	stripewebhook "github.com/angelmondragon/storefront-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const paymentRateLimitName = "payment"

// Dependencies are the wired services the API mounts.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	Store controllers.Pinger
	Redis *redis.Client

	Verifier firebase.TokenVerifier
	Products product.Service
	Users    users.Service
	Carts    cart.Service
	Orders   orders.Service
	Payments *payment.Service

	Reviews    reviews.Service
	Privileged privileged.Service

	Webhooks     *stripewebhook.Service
	WebhookGuard *stripewebhook.SessionGuard
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Instrument(deps.HTTP),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{"docstore": deps.Store}
	if deps.Redis != nil {
		ready["redis"] = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, ready, logg))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	auth := middleware.Auth(deps.Verifier, logg)
	modify := middleware.ModificationRights(logg)
	ownID := middleware.OwnUserID("userId", logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(deps.Webhooks, deps.Payments.Adapter(), deps.WebhookGuard, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(auth, modify, middleware.RequireRole(enums.RoleSeller, logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Patch("/{productId}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(deps.Products, logg))
			})
		})

		r.Get("/reviews", controllers.ListReviews(deps.Reviews, logg))

		r.Route("/privileged", func(r chi.Router) {
			r.Use(auth)
			r.Get("/user-id", controllers.CallerID())

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequirePrivileged(logg))
				r.Get("/", controllers.ListPrivilegedUsers(deps.Privileged, logg))
				r.Get("/{userId}", controllers.GetPrivilegedUser(deps.Privileged, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin(cfg.Auth.AdminEmail, logg))
					r.Post("/", controllers.CreatePrivilegedUser(deps.Privileged, logg))
					r.Patch("/{userId}", controllers.UpdatePrivilegedUser(deps.Privileged, logg))
					r.Delete("/{userId}", controllers.DeletePrivilegedUser(deps.Privileged, logg))
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth, modify)
			r.Post("/", controllers.CreateUser(deps.Users, logg))

			r.Route("/{userId}", func(r chi.Router) {
				r.Get("/", controllers.GetUser(deps.Users, logg))
				r.With(ownID).Patch("/", controllers.UpdateUser(deps.Users, logg))
				r.With(ownID).Delete("/", controllers.DeleteUser(deps.Users, logg))

				r.Route("/cart", func(r chi.Router) {
					r.Use(ownID, middleware.RequireRole(enums.RoleBuyer, logg))
					r.Get("/", cartcontrollers.Fetch(deps.Carts, logg))
					r.Patch("/add", cartcontrollers.Add(deps.Carts, logg))
					r.Patch("/subtract", cartcontrollers.Subtract(deps.Carts, logg))
					r.Delete("/", cartcontrollers.Reset(deps.Carts, logg))
				})

				r.Route("/reviews", func(r chi.Router) {
					r.Get("/", controllers.ListUserReviews(deps.Reviews, logg))
					r.Get("/{reviewId}", controllers.GetReview(deps.Reviews, logg))

					r.Group(func(r chi.Router) {
						r.Use(ownID)
						r.Post("/", controllers.CreateReview(deps.Reviews, logg))
						r.Patch("/{reviewId}", controllers.UpdateReview(deps.Reviews, logg))
						r.Delete("/{reviewId}", controllers.DeleteReview(deps.Reviews, logg))
					})
				})

				r.Route("/orders", func(r chi.Router) {
					r.Use(ownID)
					r.Get("/", ordercontrollers.List(deps.Orders, logg))
					r.Get("/{orderId}", ordercontrollers.Get(deps.Orders, logg))
					r.With(middleware.RequireRole(enums.RoleSeller, logg)).
						Patch("/{orderId}", ordercontrollers.UpdateStatus(deps.Orders, logg))
				})
			})
		})

		r.Group(func(r chi.Router) {
			policy := middleware.NewRateLimitPolicy(paymentRateLimitName, cfg.Payment.RateLimitWindow, cfg.Payment.RateLimit)
			r.Use(auth, modify, middleware.RequireRole(enums.RoleBuyer, logg))
			if deps.Redis != nil {
				r.Use(middleware.RateLimit(policy, deps.Redis, logg))
			}
			r.Post("/payment", controllers.CreatePayment(deps.Payments, logg))
		})
	})

	return r
}
