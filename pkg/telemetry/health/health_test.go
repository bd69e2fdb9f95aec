package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/catalog/storage"
	"checkered/cartgate/pkg/config"
	"checkered/cartgate/pkg/rules"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{name: "default timeout", timeout: 0, want: DefaultCheckTimeout},
		{name: "negative timeout", timeout: -time.Second, want: DefaultCheckTimeout},
		{name: "custom timeout", timeout: 10 * time.Second, want: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)

			if checker.checkTimeout != tt.want {
				t.Errorf("checkTimeout = %v, want %v", checker.checkTimeout, tt.want)
			}
			if got := checker.ListChecks(); len(got) != 0 {
				t.Errorf("ListChecks() = %v, want none", got)
			}
		})
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := New(time.Second)

	checker.RegisterCheck("rules", func(context.Context) error { return nil })
	checker.RegisterCheck("catalog", func(context.Context) error { return nil })
	checker.RegisterCheck("catalog", func(context.Context) error { return errors.New("replaced") })

	if got, want := checker.ListChecks(), []string{"catalog", "rules"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListChecks() = %v, want %v", got, want)
	}

	status := checker.CheckReadiness(context.Background())
	if status.Checks["catalog"].Message != "replaced" {
		t.Errorf("catalog message = %q, want %q", status.Checks["catalog"].Message, "replaced")
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		wantReady  bool
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
			wantReady:  true,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"catalog": func(context.Context) error { return nil },
				"rules":   func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			wantReady:  true,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"catalog": func(context.Context) error { return errors.New("database is locked") },
				"rules":   func(context.Context) error { return nil },
			},
			wantStatus: StatusDegraded,
			wantReady:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())

			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if status.Ready() != tt.wantReady {
				t.Errorf("Ready() = %v, want %v", status.Ready(), tt.wantReady)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	block := make(chan struct{})
	defer close(block)
	checker.RegisterCheck("stuck", func(context.Context) error {
		<-block
		return nil
	})

	start := time.Now()
	status := checker.CheckReadiness(context.Background())

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("CheckReadiness() took %v, want about the check timeout", elapsed)
	}
	result := status.Checks["stuck"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("stuck = %+v, want unhealthy with %q", result, ErrCheckTimeout)
	}
}

func TestCheckReadiness_Draining(t *testing.T) {
	checker := New(time.Second)
	called := false
	checker.RegisterCheck("rules", func(context.Context) error {
		called = true
		return nil
	})

	checker.SetDraining(true)
	status := checker.CheckReadiness(context.Background())

	if status.Status != StatusDraining {
		t.Errorf("Status = %q, want %q", status.Status, StatusDraining)
	}
	if called {
		t.Error("checks ran while draining")
	}
	if live := checker.CheckLiveness(context.Background()); live.Status != StatusOK {
		t.Errorf("liveness while draining = %q, want %q", live.Status, StatusOK)
	}

	checker.SetDraining(false)
	if status := checker.CheckReadiness(context.Background()); status.Status != StatusReady {
		t.Errorf("Status after draining = %q, want %q", status.Status, StatusReady)
	}
}

func TestComponentChecks(t *testing.T) {
	store := storage.NewMemoryStore()
	manager, err := rules.NewManager(func() (admission.Rules, error) {
		return admission.DefaultRules(), nil
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	checker := New(time.Second)
	checker.RegisterCheck("catalog", PingCheck(store))
	checker.RegisterCheck("rules", ErrorCheck(manager.Check))

	status := checker.CheckReadiness(context.Background())
	if status.Status != StatusReady {
		t.Errorf("Status = %q, want %q: %+v", status.Status, StatusReady, status.Checks)
	}

	checker.RegisterCheck("rules", ErrorCheck(func() error { return rules.ErrNoEngine }))
	status = checker.CheckReadiness(context.Background())
	if status.Checks["rules"].Message != rules.ErrNoEngine.Error() {
		t.Errorf("rules message = %q, want %q", status.Checks["rules"].Message, rules.ErrNoEngine)
	}
}

func TestLivenessHandler(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		wantCode int
		wantBody bool
	}{
		{name: "GET", method: http.MethodGet, wantCode: http.StatusOK, wantBody: true},
		{name: "HEAD", method: http.MethodHead, wantCode: http.StatusOK, wantBody: false},
		{name: "POST", method: http.MethodPost, wantCode: http.StatusMethodNotAllowed},
	}

	checker := New(time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			checker.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(tt.method, "/healthz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := rec.Body.Len() > 0; got != tt.wantBody {
				t.Errorf("has body = %v, want %v", got, tt.wantBody)
			}
			if tt.wantBody {
				var status HealthStatus
				if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if status.Status != StatusOK {
					t.Errorf("Status = %q, want %q", status.Status, StatusOK)
				}
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name       string
		check      CheckFunc
		draining   bool
		wantCode   int
		wantStatus string
	}{
		{
			name:       "ready",
			check:      func(context.Context) error { return nil },
			wantCode:   http.StatusOK,
			wantStatus: StatusReady,
		},
		{
			name:       "degraded",
			check:      func(context.Context) error { return errors.New("closed") },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDegraded,
		},
		{
			name:       "draining",
			check:      func(context.Context) error { return nil },
			draining:   true,
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDraining,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("catalog", tt.check)
			checker.SetDraining(tt.draining)

			rec := httptest.NewRecorder()
			checker.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(BuildInfo{Version: "1.2.0", Commit: "abc123"}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info BuildInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" {
		t.Errorf("info = %+v", info)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty, want runtime version")
	}
}

func TestRegister(t *testing.T) {
	cfg := config.DefaultConfig().Telemetry.Health
	checker := New(time.Second)

	mux := http.NewServeMux()
	Register(mux, &cfg, checker, BuildInfo{Version: "dev"})

	for _, path := range []string{cfg.LivenessPath, cfg.ReadinessPath, cfg.VersionPath} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}

	cfg.Enabled = false
	disabled := http.NewServeMux()
	Register(disabled, &cfg, checker, BuildInfo{})
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, cfg.LivenessPath, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET %s with health disabled = %d, want %d", cfg.LivenessPath, rec.Code, http.StatusNotFound)
	}
}
