package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	TracingSampleRatio float64 `envconfig:"tracing_sample_ratio" default:"1"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`
	DBTxTimeout       time.Duration `envconfig:"db_tx_timeout" default:"60s"`

	// identity provider admin API, used to lazily fetch users and organizations
	IdentityProviderURL       string `envconfig:"identity_provider_url" required:"true"`
	IdentityProviderToken     string `envconfig:"identity_provider_token"`
	IdentityProviderProjectID string `envconfig:"identity_provider_project_id"`

	WebhookSecret          string        `envconfig:"webhook_secret"`
	WebhookSignatureMaxAge time.Duration `envconfig:"webhook_signature_max_age" default:"5m"`
	WebhookDedupTTL        time.Duration `envconfig:"webhook_dedup_ttl" default:"24h"`
	RedisURL               string        `envconfig:"redis_url"`

	ProgressQueryTimeout   time.Duration `envconfig:"progress_query_timeout" default:"5s"`
	ProgressPartialResults bool          `envconfig:"progress_partial_results" default:"false"`
	ProgressTimezone       string        `envconfig:"progress_timezone" default:"UTC"`

	AuthenticationEnabled         bool     `envconfig:"authentication_enabled" default:"false"`
	AuthenticationIssuer          string   `envconfig:"authentication_issuer"`
	AuthenticationJwksURL         string   `envconfig:"authentication_jwks_url"`
	AuthenticationAllowedSubjects []string `envconfig:"authentication_allowed_subjects"`
	AuthenticationRequiredScope   string   `envconfig:"authentication_required_scope"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`

	AuthorizationEnabled bool   `envconfig:"authorization_enabled" default:"false"`
	OpenfgaApiScheme     string `envconfig:"openfga_api_scheme" default:""`
	OpenfgaApiHost       string `envconfig:"openfga_api_host"`
	OpenfgaApiToken      string `envconfig:"openfga_api_token"`
	OpenfgaStoreId       string `envconfig:"openfga_store_id"`
	OpenfgaModelId       string `envconfig:"openfga_authorization_model_id" default:""`
}
