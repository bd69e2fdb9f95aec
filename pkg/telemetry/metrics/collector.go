package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"checkered/cartgate/pkg/config"
)

// OtherRoute replaces route labels once the cardinality limit is reached.
const OtherRoute = "other"

// DefaultMaxRoutes bounds the number of distinct HTTP route labels.
const DefaultMaxRoutes = 100

// Collector owns every cartgate metric. It satisfies checkout.Recorder,
// remediation.Metrics and rules.Recorder.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	admissionMetrics   *AdmissionMetrics
	remediationMetrics *RemediationMetrics
	reloadMetrics      *ReloadMetrics
	httpMetrics        *HTTPMetrics

	routeLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one that also exports Go runtime and process
// metrics.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		admissionMetrics:   NewAdmissionMetrics(cfg, registry),
		remediationMetrics: NewRemediationMetrics(cfg, registry),
		reloadMetrics:      NewReloadMetrics(cfg, registry),
		httpMetrics:        NewHTTPMetrics(cfg, registry),
		routeLimiter:       NewCardinalityLimiter(DefaultMaxRoutes),
	}
}

// RecordEvaluation records one admission evaluation made on behalf of a
// shopper. Reasons are counted only for blocked outcomes.
func (c *Collector) RecordEvaluation(outcome string, reasons []string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.admissionMetrics.RecordEvaluation(outcome, reasons, duration)
}

// RecordRemediationLookup records one catalog lookup for suggestions.
func (c *Collector) RecordRemediationLookup(result string, suggestions int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.remediationMetrics.RecordLookup(result, suggestions, duration)
}

// RecordRulesReload records a rules reload attempt and the generation that
// is active afterwards.
func (c *Collector) RecordRulesReload(result string, generation uint64) {
	if !c.config.Enabled {
		return
	}

	c.reloadMetrics.RecordReload(result, generation)
}

// RecordHTTPRequest records a served HTTP request. Routes beyond the
// cardinality limit are folded into OtherRoute.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	if !c.routeLimiter.Allow(route) {
		route = OtherRoute
	}
	c.httpMetrics.RecordRequest(route, method, strconv.Itoa(status), duration)
}

// TrackInFlight increments the in-flight gauge and returns the function that
// decrements it.
func (c *Collector) TrackInFlight() func() {
	if !c.config.Enabled {
		return func() {}
	}

	c.httpMetrics.inFlight.Inc()
	return c.httpMetrics.inFlight.Dec
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Middleware wraps next and records a request metric for every response.
// route names the handler pattern, not the raw path.
func (c *Collector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := c.TrackInFlight()
		defer done()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		c.RecordHTTPRequest(route, r.Method, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether label may be used. Known labels are always allowed;
// new labels are allowed until the limit is reached.
func (cl *CardinalityLimiter) Allow(label string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[label]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[label]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[label] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
