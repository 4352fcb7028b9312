package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "prod" {
		t.Fatalf("expected App.Env to be prod, got %q", cfg.App.Env)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env detection")
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
	if cfg.Cart.MaxItems != 50 {
		t.Fatalf("expected default cart cap 50, got %d", cfg.Cart.MaxItems)
	}
	if got := cfg.Orders.ExpiryWindow; got != 24*time.Hour {
		t.Fatalf("expected expiry window 24h, got %v", got)
	}
	if cfg.Orders.RestoreBatchSize != 50 {
		t.Fatalf("expected restore batch 50, got %d", cfg.Orders.RestoreBatchSize)
	}
	if cfg.Payment.Currency != "jpy" {
		t.Fatalf("unexpected currency %q", cfg.Payment.Currency)
	}
	if cfg.Payment.UseStripe() {
		t.Fatalf("mock adapter should be the default")
	}
	if cfg.GCP.ProjectID != "project-123" {
		t.Fatalf("unexpected project id %q", cfg.GCP.ProjectID)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_FirestoreRequiresProject(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvGCPProjectID, "")

	if _, err := Load(); err == nil {
		t.Fatal("expected firestore driver without project id to fail")
	}

	t.Setenv(EnvDocStoreDriver, DocStoreMemory)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("memory driver should not need a project: %v", err)
	}
	if !cfg.DocStore.UseMemory() {
		t.Fatalf("expected memory driver")
	}
}

func TestLoad_StripeAdapterRequiresKey(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPaymentAdapter, PaymentAdapterStripe)

	if _, err := Load(); err == nil {
		t.Fatal("expected stripe adapter without api key to fail")
	}

	t.Setenv(EnvStripeAPIKey, "sk_test_123")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.Payment.UseStripe() {
		t.Fatalf("expected stripe adapter")
	}
	if cfg.Stripe.Environment() != "test" {
		t.Fatalf("unexpected stripe env %q", cfg.Stripe.Environment())
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvPort, "8081")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	t.Setenv(EnvGCPProjectID, "project-123")
	t.Setenv(EnvDocStoreDriver, DocStoreFirestore)
	t.Setenv(EnvPaymentAdapter, PaymentAdapterMock)
	t.Setenv(EnvStripeAPIKey, "")
}

func TestListenAddrPrefersPlatformPort(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPlatformPort, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if addr := cfg.App.ListenAddr(); addr != ":8081" {
		t.Fatalf("expected configured port, got %s", addr)
	}

	t.Setenv(EnvPlatformPort, "5000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if addr := cfg.App.ListenAddr(); addr != ":5000" {
		t.Fatalf("expected platform port, got %s", addr)
	}
	if cfg.App.LogFormat != "json" || cfg.Cron.JobTimeout != 30*time.Minute {
		t.Fatalf("unexpected defaults %q %s", cfg.App.LogFormat, cfg.Cron.JobTimeout)
	}
}

func TestLoad_AdminEmail(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAuthAdminEmail, "owner@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.AdminEmail != "owner@example.com" {
		t.Fatalf("unexpected admin email %q", cfg.Auth.AdminEmail)
	}
}
