package config

import "time"

// Config is the root configuration structure for cartgate.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and request limits.
	Server ServerConfig `yaml:"server" envPrefix:"SERVER_"`

	// Admission contains the admission rule coefficients and the category
	// identifiers they apply to.
	Admission AdmissionConfig `yaml:"admission" envPrefix:"ADMISSION_"`

	// Remediation contains configuration for suggestions shown on blocked
	// carts.
	Remediation RemediationConfig `yaml:"remediation" envPrefix:"REMEDIATION_"`

	// Catalog contains configuration for the product catalog and cart store.
	Catalog CatalogConfig `yaml:"catalog" envPrefix:"CATALOG_"`

	// Reload contains configuration for reloading admission rules at runtime.
	Reload RulesReloadConfig `yaml:"reload" envPrefix:"RELOAD_"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address" env:"LISTEN_ADDRESS"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// during graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes" env:"MAX_HEADER_BYTES"`

	// MaxBodyBytes limits the size of a cart snapshot request body.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`

	// TLS enables HTTPS termination.
	TLS TLSConfig `yaml:"tls" envPrefix:"TLS_"`
}

// TLSConfig contains TLS settings for the HTTP server.
type TLSConfig struct {
	// Enabled turns on TLS. CertFile and KeyFile are then required.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// CertFile is the PEM certificate chain.
	CertFile string `yaml:"cert_file" env:"CERT_FILE"`

	// KeyFile is the PEM private key.
	KeyFile string `yaml:"key_file" env:"KEY_FILE"`

	// MinVersion is the minimum TLS version, "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version" env:"MIN_VERSION"`
}

// AdmissionConfig contains the admission rule set.
type AdmissionConfig struct {
	// Categories maps the Licensed, Fantasy and Premium buckets to catalog
	// category identifiers.
	Categories CategoriesConfig `yaml:"categories" envPrefix:"CATEGORIES_"`

	// MaxTotalItems is the largest total quantity admitted; larger carts are
	// bulk orders.
	// Default: 14
	MaxTotalItems int `yaml:"max_total_items" env:"MAX_TOTAL_ITEMS"`

	// PremiumToFantasyRatio is the number of Fantasy items backing each
	// Premium item.
	// Default: 2
	PremiumToFantasyRatio int `yaml:"premium_to_fantasy_ratio" env:"PREMIUM_TO_FANTASY_RATIO"`

	// LicensedToFantasyRatio is the number of Licensed items unlocked by one
	// Fantasy item.
	// Default: 2
	LicensedToFantasyRatio int `yaml:"licensed_to_fantasy_ratio" env:"LICENSED_TO_FANTASY_RATIO"`

	// NonFantasyQuantityCap is the per-line quantity limit for lines outside
	// the Fantasy category.
	// Default: 1
	NonFantasyQuantityCap int `yaml:"non_fantasy_quantity_cap" env:"NON_FANTASY_QUANTITY_CAP"`

	// UnknownAvailability decides how lines without variant data are treated.
	// Options: "block", "allow"
	// Default: "block"
	UnknownAvailability string `yaml:"unknown_availability" env:"UNKNOWN_AVAILABILITY"`

	// Locale is the BCP 47 tag of the shopper-facing message language.
	// Default: "en"
	Locale string `yaml:"locale" env:"LOCALE"`
}

// CategoriesConfig maps each admission category to a catalog category.
type CategoriesConfig struct {
	Licensed CategoryConfig `yaml:"licensed" envPrefix:"LICENSED_"`
	Fantasy  CategoryConfig `yaml:"fantasy" envPrefix:"FANTASY_"`
	Premium  CategoryConfig `yaml:"premium" envPrefix:"PREMIUM_"`
}

// CategoryConfig identifies one catalog category.
type CategoryConfig struct {
	// ID is the catalog category identifier.
	ID string `yaml:"id" env:"ID"`

	// Label is the display name used in shopper messages.
	Label string `yaml:"label" env:"LABEL"`
}

// RemediationConfig contains configuration for remediation suggestions.
type RemediationConfig struct {
	// Enabled controls whether blocked carts receive product suggestions.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// BatchSize is the number of candidates fetched from the catalog.
	// Default: 20
	BatchSize int `yaml:"batch_size" env:"BATCH_SIZE"`

	// DisplayCap is the maximum number of suggestions returned.
	// Default: 4
	DisplayCap int `yaml:"display_cap" env:"DISPLAY_CAP"`

	// LookupTimeout bounds the catalog lookup.
	// Default: 2s
	LookupTimeout time.Duration `yaml:"lookup_timeout" env:"LOOKUP_TIMEOUT"`
}

// CatalogConfig contains configuration for the catalog and cart store.
type CatalogConfig struct {
	// Backend selects the store implementation.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend" env:"BACKEND"`

	// SQLite contains SQLite backend configuration.
	SQLite SQLiteConfig `yaml:"sqlite" envPrefix:"SQLITE_"`
}

// SQLiteConfig contains SQLite store configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/cartgate.db"
	Path string `yaml:"path" env:"PATH"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver" env:"DRIVER"`

	// BusyTimeout is how long a locked database is retried.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"BUSY_TIMEOUT"`

	// CheckpointInterval is the period between WAL checkpoints.
	// Default: 5m
	CheckpointInterval time.Duration `yaml:"checkpoint_interval" env:"CHECKPOINT_INTERVAL"`
}

// RulesReloadConfig contains configuration for reloading admission rules.
type RulesReloadConfig struct {
	// Watch reloads the rules when the configuration file changes.
	// Default: false
	Watch bool `yaml:"watch" env:"WATCH"`

	// Debounce is the quiet period after a file change before reloading.
	// Default: 250ms
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`

	// Schedule is a cron expression for periodic reloads. Empty disables
	// scheduled reloads.
	// Example: "*/5 * * * *", "@every 10m"
	Schedule string `yaml:"schedule" env:"SCHEDULE"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging" envPrefix:"LOGGING_"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics" envPrefix:"METRICS_"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing" envPrefix:"TRACING_"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health" envPrefix:"HEALTH_"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" env:"LEVEL"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path" env:"PATH"`

	// Namespace is the metric name prefix.
	// Default: "cartgate"
	Namespace string `yaml:"namespace" env:"NAMESPACE"`

	// Subsystem is the metric subsystem name.
	// Default: ""
	Subsystem string `yaml:"subsystem" env:"SUBSYSTEM"`

	// DurationBuckets defines histogram buckets for evaluation and request
	// durations (seconds).
	// Default: [0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1]
	DurationBuckets []float64 `yaml:"duration_buckets" env:"DURATION_BUCKETS"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler" env:"SAMPLER"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`

	// Exporter determines the trace exporter to use.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter" env:"EXPORTER"`

	// Endpoint is the OTLP collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`

	// ServiceName is the service name in traces.
	// Default: "cartgate"
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp" envPrefix:"OTLP_"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: true
	Insecure bool `yaml:"insecure" env:"INSECURE"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// Enabled controls whether health check endpoints are enabled.
	// Default: true
	Enabled bool `yaml:"enabled" env:"ENABLED"`

	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path" env:"LIVENESS_PATH"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path" env:"READINESS_PATH"`

	// VersionPath is the path for the version information endpoint.
	// Default: "/version"
	VersionPath string `yaml:"version_path" env:"VERSION_PATH"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout" env:"CHECK_TIMEOUT"`
}
