package config

import (
	"time"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/remediation"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = 1048576 // 1MB
	DefaultTLSMinVersion   = "1.2"

	// Admission defaults
	DefaultMaxTotalItems          = admission.DefaultMaxTotalItems
	DefaultPremiumToFantasyRatio  = admission.DefaultPremiumToFantasyRatio
	DefaultLicensedToFantasyRatio = admission.DefaultLicensedToFantasyRatio
	DefaultNonFantasyQuantityCap  = admission.DefaultNonFantasyQuantityCap
	DefaultUnknownAvailability    = string(admission.UnknownAvailabilityBlock)
	DefaultLocale                 = "en"

	// Remediation defaults
	DefaultRemediationEnabled       = true
	DefaultRemediationBatchSize     = remediation.DefaultBatchSize
	DefaultRemediationDisplayCap    = remediation.DefaultDisplayCap
	DefaultRemediationLookupTimeout = remediation.DefaultLookupTimeout

	// Catalog defaults
	DefaultCatalogBackend           = "sqlite"
	DefaultSQLitePath               = "data/cartgate.db"
	DefaultSQLiteDriver             = "sqlite"
	DefaultSQLiteBusyTimeout        = 5 * time.Second
	DefaultSQLiteCheckpointInterval = 5 * time.Minute

	// Reload defaults
	DefaultReloadWatch    = false
	DefaultReloadDebounce = 250 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "cartgate"
	DefaultTracingEnabled     = false
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 0.1
	DefaultTracingExporter    = "otlp"
	DefaultTracingServiceName = "cartgate"
	DefaultOTLPInsecure       = true
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultHealthEnabled      = true
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultVersionPath        = "/version"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultDurationBuckets are histogram buckets in seconds. Evaluations run in
// microseconds; HTTP requests that touch the catalog take milliseconds.
var DefaultDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// DefaultConfig returns a configuration with every default applied,
// including the boolean defaults that ApplyDefaults cannot tell apart from an
// explicit false.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Remediation.Enabled = DefaultRemediationEnabled
	cfg.Reload.Watch = DefaultReloadWatch
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	cfg.Telemetry.Tracing.Enabled = DefaultTracingEnabled
	cfg.Telemetry.Tracing.OTLP.Insecure = DefaultOTLPInsecure
	cfg.Telemetry.Health.Enabled = DefaultHealthEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}

	applyAdmissionDefaults(&cfg.Admission)

	// Remediation defaults
	if cfg.Remediation.BatchSize == 0 {
		cfg.Remediation.BatchSize = DefaultRemediationBatchSize
	}
	if cfg.Remediation.DisplayCap == 0 {
		cfg.Remediation.DisplayCap = DefaultRemediationDisplayCap
	}
	if cfg.Remediation.LookupTimeout == 0 {
		cfg.Remediation.LookupTimeout = DefaultRemediationLookupTimeout
	}

	// Catalog defaults
	if cfg.Catalog.Backend == "" {
		cfg.Catalog.Backend = DefaultCatalogBackend
	}
	if cfg.Catalog.SQLite.Path == "" {
		cfg.Catalog.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Catalog.SQLite.Driver == "" {
		cfg.Catalog.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Catalog.SQLite.BusyTimeout == 0 {
		cfg.Catalog.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Catalog.SQLite.CheckpointInterval == 0 {
		cfg.Catalog.SQLite.CheckpointInterval = DefaultSQLiteCheckpointInterval
	}

	// Reload defaults
	if cfg.Reload.Debounce == 0 {
		cfg.Reload.Debounce = DefaultReloadDebounce
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyAdmissionDefaults(cfg *AdmissionConfig) {
	tax := admission.DefaultTaxonomy()
	applyCategoryDefaults(&cfg.Categories.Licensed, tax.Licensed)
	applyCategoryDefaults(&cfg.Categories.Fantasy, tax.Fantasy)
	applyCategoryDefaults(&cfg.Categories.Premium, tax.Premium)

	if cfg.MaxTotalItems == 0 {
		cfg.MaxTotalItems = DefaultMaxTotalItems
	}
	if cfg.PremiumToFantasyRatio == 0 {
		cfg.PremiumToFantasyRatio = DefaultPremiumToFantasyRatio
	}
	if cfg.LicensedToFantasyRatio == 0 {
		cfg.LicensedToFantasyRatio = DefaultLicensedToFantasyRatio
	}
	if cfg.NonFantasyQuantityCap == 0 {
		cfg.NonFantasyQuantityCap = DefaultNonFantasyQuantityCap
	}
	if cfg.UnknownAvailability == "" {
		cfg.UnknownAvailability = DefaultUnknownAvailability
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
}

func applyCategoryDefaults(cfg *CategoryConfig, def admission.CategoryRef) {
	if cfg.ID == "" {
		cfg.ID = def.ID
	}
	if cfg.Label == "" {
		cfg.Label = def.Label
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(cfg.Metrics.DurationBuckets) == 0 {
		cfg.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	if cfg.Tracing.Sampler == "" {
		cfg.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Tracing.OTLP.Timeout == 0 {
		cfg.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if cfg.Health.LivenessPath == "" {
		cfg.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Health.ReadinessPath == "" {
		cfg.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Health.VersionPath == "" {
		cfg.Health.VersionPath = DefaultVersionPath
	}
	if cfg.Health.CheckTimeout == 0 {
		cfg.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}
