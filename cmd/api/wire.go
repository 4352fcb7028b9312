package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payment"
	"github.com/angelmondragon/storefront-backend/internal/privileged"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/reviews"
	"github.com/angelmondragon/storefront-backend/internal/users"
	stripewebhook "github.com/angelmondragon/storefront-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/storefront-backend/pkg/breaker"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/docstore"
	"github.com/angelmondragon/storefront-backend/pkg/docstore/firestore"
	"github.com/angelmondragon/storefront-backend/pkg/docstore/memory"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/firebase"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const webhookScope = "stripe-webhook"

type authProvider interface {
	firebase.TokenVerifier
	firebase.RoleSetter
	firebase.AccessRightsSetter
}

func newStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (docstore.Store, error) {
	if cfg.DocStore.UseMemory() {
		logg.Warn(ctx, "using in-memory document store")
		return memory.New(), nil
	}
	return firestore.New(ctx, cfg.GCP, logg)
}

func newAuth(ctx context.Context, cfg *config.Config, logg *logger.Logger) (authProvider, error) {
	if cfg.Auth.UseMock() {
		if cfg.App.IsProd() {
			return nil, fmt.Errorf("mock auth is not allowed in %s", cfg.App.Env)
		}
		logg.Warn(ctx, "using mock token verifier")
		return firebase.MockVerifier{}, nil
	}
	return firebase.NewVerifier(ctx, cfg.GCP, logg)
}

func newAdapter(ctx context.Context, cfg *config.Config, logg *logger.Logger) (payment.Adapter, error) {
	if !cfg.Payment.UseStripe() {
		logg.Warn(ctx, "using mock payment adapter")
		return &payment.MockAdapter{}, nil
	}
	client, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		return nil, err
	}
	return payment.NewStripeAdapter(client, breaker.Config{
		Name:     "stripe-checkout",
		Failures: cfg.Payment.BreakerFailures,
		Timeout:  cfg.Payment.BreakerTimeout,
	}, logg)
}

// buildRouterDeps wires repositories and services over store.
func buildRouterDeps(
	cfg *config.Config,
	logg *logger.Logger,
	reg *prometheus.Registry,
	store docstore.Store,
	redisClient *redis.Client,
	auth authProvider,
	adapter payment.Adapter,
) (routes.Dependencies, error) {
	productRepo := product.NewRepository(store)
	userRepo := users.NewRepository(store)
	cartRepo := cart.NewRepository(store, productRepo, cfg.Cart.MaxItems)
	orderRepo := orders.NewRepository(orders.RepositoryParams{
		Store:            store,
		Products:         productRepo,
		ExpiryWindow:     cfg.Orders.ExpiryWindow,
		RestoreBatchSize: cfg.Orders.RestoreBatchSize,
	})

	productSvc, err := product.NewService(productRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}
	userSvc, err := users.NewService(users.ServiceParams{Repo: userRepo, Roles: auth, Carts: cartRepo})
	if err != nil {
		return routes.Dependencies{}, err
	}
	orderSvc, err := orders.NewService(orderRepo, userSvc)
	if err != nil {
		return routes.Dependencies{}, err
	}
	reviewSvc, err := reviews.NewService(store, productRepo)
	if err != nil {
		return routes.Dependencies{}, err
	}
	privilegedSvc, err := privileged.NewService(privileged.NewRepository(store), auth)
	if err != nil {
		return routes.Dependencies{}, err
	}

	currency, err := enums.ParseCurrency(cfg.Payment.Currency)
	if err != nil {
		return routes.Dependencies{}, fmt.Errorf("payment currency: %w", err)
	}
	paymentSvc, err := payment.NewService(payment.ServiceParams{
		Store:    store,
		Users:    userRepo,
		Carts:    cartRepo,
		Products: productRepo,
		Orders:   orderRepo,
		Adapter:  adapter,
		Currency: currency,
		Metrics:  metrics.NewCheckoutMetrics(reg),
		Logger:   logg,
	})
	if err != nil {
		return routes.Dependencies{}, err
	}

	webhookSvc, err := stripewebhook.NewService(stripewebhook.ServiceParams{Payments: paymentSvc, Carts: cartRepo, Logger: logg})
	if err != nil {
		return routes.Dependencies{}, err
	}
	guard, err := stripewebhook.NewSessionGuard(redisClient, cfg.Webhook.IdempotencyTTL, webhookScope)
	if err != nil {
		return routes.Dependencies{}, err
	}

	return routes.Dependencies{
		Config:       cfg,
		Logger:       logg,
		Gatherer:     reg,
		HTTP:         metrics.NewHTTPMetrics(reg),
		Store:        store,
		Redis:        redisClient,
		Verifier:     auth,
		Products:     productSvc,
		Users:        userSvc,
		Carts:        cartRepo,
		Orders:       orderSvc,
		Payments:     paymentSvc,
		Reviews:      reviewSvc,
		Privileged:   privilegedSvc,
		Webhooks:     webhookSvc,
		WebhookGuard: guard,
	}, nil
}
