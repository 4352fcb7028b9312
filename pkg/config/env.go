package config

// EnvPrefix is handed to envconfig; every field sets its full key explicitly.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DocStoreFirestore = "firestore"
	DocStoreMemory    = "memory"

	AuthModeFirebase = "firebase"
	AuthModeMock     = "mock"

	PaymentAdapterStripe = "stripe"
	PaymentAdapterMock   = "mock"
)

const (
	EnvAppEnv            = "STOREFRONT_APP_ENV"
	EnvPort              = "STOREFRONT_APP_PORT"
	EnvPlatformPort      = "PORT"
	EnvLogLevel          = "STOREFRONT_LOG_LEVEL"
	EnvDocStoreDriver    = "STOREFRONT_DOCSTORE_DRIVER"
	EnvGCPProjectID      = "STOREFRONT_GCP_PROJECT_ID"
	EnvGCPCredentials    = "STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"
	EnvAuthMode          = "STOREFRONT_AUTH_MODE"
	EnvAuthAdminEmail    = "STOREFRONT_AUTH_ADMIN_EMAIL"
	EnvRedisURL          = "STOREFRONT_REDIS_URL"
	EnvStripeAPIKey      = "STOREFRONT_STRIPE_API_KEY"
	EnvStripeSecret      = "STOREFRONT_STRIPE_SECRET"
	EnvStripeEnv         = "STOREFRONT_STRIPE_ENV"
	EnvPaymentAdapter    = "STOREFRONT_PAYMENT_ADAPTER"
	EnvCartMaxItems      = "STOREFRONT_CART_MAX_ITEMS"
	EnvOrdersExpiry      = "STOREFRONT_ORDERS_EXPIRY_WINDOW"
	EnvOrdersRestoreSize = "STOREFRONT_ORDERS_RESTORE_BATCH_SIZE"
	EnvCronInterval      = "STOREFRONT_CRON_INTERVAL"
)
