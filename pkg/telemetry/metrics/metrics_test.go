package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/config"
	"checkered/cartgate/pkg/remediation"
	"checkered/cartgate/pkg/rules"
)

var (
	_ checkout.Recorder   = (*Collector)(nil)
	_ remediation.Metrics = (*Collector)(nil)
	_ rules.Recorder      = (*Collector)(nil)
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "metrics",
		DurationBuckets: []float64{0.001, 0.01, 0.1, 1.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}

	collector := NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if len(cfg.DurationBuckets) != len(config.DefaultDurationBuckets) {
		t.Errorf("DurationBuckets = %v, want defaults", cfg.DurationBuckets)
	}
	collector.RecordEvaluation(checkout.OutcomePassed, nil, time.Millisecond)

	families, err := collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var sawGo, sawAdmission bool
	for _, f := range families {
		switch f.GetName() {
		case "go_goroutines":
			sawGo = true
		case "cartgate_admission_evaluations_total":
			sawAdmission = true
		}
	}
	if !sawGo || !sawAdmission {
		t.Errorf("Gather() go_goroutines=%v cartgate_admission_evaluations_total=%v, want both", sawGo, sawAdmission)
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	tests := []struct {
		name    string
		outcome string
		reasons []string
	}{
		{name: "passed", outcome: checkout.OutcomePassed},
		{name: "blocked twice", outcome: checkout.OutcomeBlocked, reasons: []string{"premium_shortfall", "out_of_stock"}},
		{name: "blocked once", outcome: checkout.OutcomeBlocked, reasons: []string{"out_of_stock"}},
		{name: "invalid", outcome: checkout.OutcomeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordEvaluation(tt.outcome, tt.reasons, 200*time.Microsecond)
		})
	}

	am := collector.admissionMetrics
	counts := map[string]float64{
		checkout.OutcomePassed:  1,
		checkout.OutcomeBlocked: 2,
		checkout.OutcomeInvalid: 1,
	}
	for outcome, want := range counts {
		if got := testutil.ToFloat64(am.evaluationsTotal.WithLabelValues(outcome)); got != want {
			t.Errorf("evaluations_total{outcome=%q} = %v, want %v", outcome, got, want)
		}
	}
	if got := testutil.ToFloat64(am.blocksTotal.WithLabelValues("out_of_stock")); got != 2 {
		t.Errorf("blocks_total{reason=out_of_stock} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(am.blocksTotal.WithLabelValues("premium_shortfall")); got != 1 {
		t.Errorf("blocks_total{reason=premium_shortfall} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(am.evaluationDuration); got != 1 {
		t.Errorf("evaluation_duration series = %d, want 1", got)
	}
}

func TestCollector_RecordRemediationLookup(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRemediationLookup(remediation.ResultOK, 3, 2*time.Millisecond)
	collector.RecordRemediationLookup(remediation.ResultTimeout, 0, time.Second)

	rm := collector.remediationMetrics
	if got := testutil.ToFloat64(rm.lookupsTotal.WithLabelValues(remediation.ResultOK)); got != 1 {
		t.Errorf("lookups_total{result=ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.lookupsTotal.WithLabelValues(remediation.ResultTimeout)); got != 1 {
		t.Errorf("lookups_total{result=timeout} = %v, want 1", got)
	}

	expected := `
# HELP test_metrics_remediation_suggestions Number of products suggested per lookup
# TYPE test_metrics_remediation_suggestions histogram
test_metrics_remediation_suggestions_bucket{le="0"} 1
test_metrics_remediation_suggestions_bucket{le="1"} 1
test_metrics_remediation_suggestions_bucket{le="2"} 1
test_metrics_remediation_suggestions_bucket{le="3"} 2
test_metrics_remediation_suggestions_bucket{le="5"} 2
test_metrics_remediation_suggestions_bucket{le="10"} 2
test_metrics_remediation_suggestions_bucket{le="25"} 2
test_metrics_remediation_suggestions_bucket{le="+Inf"} 2
test_metrics_remediation_suggestions_sum 3
test_metrics_remediation_suggestions_count 2
`
	if err := testutil.CollectAndCompare(rm.suggestions, strings.NewReader(expected)); err != nil {
		t.Errorf("suggestions histogram mismatch: %v", err)
	}
}

func TestCollector_RecordRulesReload(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordRulesReload(rules.ResultSuccess, 1)
	collector.RecordRulesReload(rules.ResultSuccess, 2)
	collector.RecordRulesReload(rules.ResultFailure, 2)

	rm := collector.reloadMetrics
	if got := testutil.ToFloat64(rm.reloadsTotal.WithLabelValues(rules.ResultSuccess)); got != 2 {
		t.Errorf("reloads_total{result=success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rm.reloadsTotal.WithLabelValues(rules.ResultFailure)); got != 1 {
		t.Errorf("reloads_total{result=failure} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rm.generation); got != 2 {
		t.Errorf("rules_generation = %v, want 2", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordEvaluation(checkout.OutcomeBlocked, []string{"out_of_stock"}, time.Millisecond)
	collector.RecordRemediationLookup(remediation.ResultOK, 1, time.Millisecond)
	collector.RecordRulesReload(rules.ResultSuccess, 4)
	collector.RecordHTTPRequest("/v1/admission/evaluate", http.MethodPost, 200, time.Millisecond)
	collector.TrackInFlight()()

	if got := testutil.ToFloat64(collector.admissionMetrics.evaluationsTotal.WithLabelValues(checkout.OutcomeBlocked)); got != 0 {
		t.Errorf("evaluations_total = %v, want 0 when disabled", got)
	}
	if got := testutil.ToFloat64(collector.reloadMetrics.generation); got != 0 {
		t.Errorf("rules_generation = %v, want 0 when disabled", got)
	}
	if got := testutil.CollectAndCount(collector.httpMetrics.requestsTotal); got != 0 {
		t.Errorf("http_requests_total series = %d, want 0 when disabled", got)
	}
}

func TestCollector_RouteCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.routeLimiter = NewCardinalityLimiter(2)

	collector.RecordHTTPRequest("/a", http.MethodGet, 200, time.Millisecond)
	collector.RecordHTTPRequest("/b", http.MethodGet, 200, time.Millisecond)
	collector.RecordHTTPRequest("/c", http.MethodGet, 200, time.Millisecond)
	collector.RecordHTTPRequest("/a", http.MethodGet, 200, time.Millisecond)

	hm := collector.httpMetrics
	if got := testutil.ToFloat64(hm.requestsTotal.WithLabelValues("/a", http.MethodGet, "200")); got != 2 {
		t.Errorf("requests_total{route=/a} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(hm.requestsTotal.WithLabelValues(OtherRoute, http.MethodGet, "200")); got != 1 {
		t.Errorf("requests_total{route=other} = %v, want 1", got)
	}
}

func TestCollector_Middleware(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	var inFlight float64
	handler := collector.Middleware("/v1/carts/{id}/admission", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlight = testutil.ToFloat64(collector.httpMetrics.inFlight)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "missing")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/carts/c1/admission", nil))

	if inFlight != 1 {
		t.Errorf("in-flight during request = %v, want 1", inFlight)
	}
	if got := testutil.ToFloat64(collector.httpMetrics.inFlight); got != 0 {
		t.Errorf("in-flight after request = %v, want 0", got)
	}
	got := testutil.ToFloat64(collector.httpMetrics.requestsTotal.WithLabelValues("/v1/carts/{id}/admission", http.MethodGet, "404"))
	if got != 1 {
		t.Errorf("requests_total{status=404} = %v, want 1", got)
	}
	if rec.Body.String() != "missing" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "missing")
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordRulesReload(rules.ResultSuccess, 3)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "test_metrics_rules_generation 3") {
		t.Errorf("body missing rules_generation:\n%s", rec.Body.String())
	}
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow(fmt.Sprintf("label-%d", i)) {
			t.Errorf("Allow(label-%d) = false, want true", i)
		}
	}
	if limiter.Allow("label-3") {
		t.Error("Allow(label-3) = true, want false beyond limit")
	}
	if !limiter.Allow("label-0") {
		t.Error("Allow(label-0) = false, want true for known label")
	}
	if got := limiter.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				collector.RecordEvaluation(checkout.OutcomeBlocked, []string{"out_of_stock"}, time.Microsecond)
			}
		}()
	}
	wg.Wait()

	got := testutil.ToFloat64(collector.admissionMetrics.evaluationsTotal.WithLabelValues(checkout.OutcomeBlocked))
	if got != 1000 {
		t.Errorf("evaluations_total = %v, want 1000", got)
	}
}
