package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"checkered/cartgate/pkg/config"
)

const serveConfig = `server:
  listen_address: 127.0.0.1:0
  shutdown_timeout: 2s
catalog:
  backend: memory
reload:
  watch: true
  debounce: 20ms
telemetry:
  logging:
    level: error
admission:
  max_total_items: %d
`

func writeServeConfig(t *testing.T, path string, maxItems int) {
	t.Helper()
	content := fmt.Sprintf(serveConfig, maxItems)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestBuildServer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeServeConfig(t, path, 14)

	origCfgFile := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = origCfgFile })

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := buildServer(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("buildServer() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("Start() returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}
	base := "http://" + srv.Addr().String()

	resp, err := http.Get(base + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/readyz status = %d, want 200", resp.StatusCode)
	}

	evaluate := func() (passed bool, generation uint64) {
		t.Helper()
		body := `{"id":"c1","lines":[{"id":"l1","product_id":"p","title":"Orc","quantity":3,` +
			`"category_ids":["fantasy"],"variant":{"manage_inventory":false}}]}`
		resp, err := http.Post(base+"/v1/admission/evaluate", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST evaluate error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("evaluate status = %d, want 200", resp.StatusCode)
		}

		var out struct {
			Evaluation struct {
				Decision struct {
					Passed bool `json:"passed"`
				} `json:"decision"`
			} `json:"evaluation"`
			RulesGeneration uint64 `json:"rules_generation"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode evaluate response: %v", err)
		}
		return out.Evaluation.Decision.Passed, out.RulesGeneration
	}

	passed, gen := evaluate()
	if !passed {
		t.Fatal("cart blocked under the initial rules")
	}

	writeServeConfig(t, path, 2)

	deadline := time.Now().Add(5 * time.Second)
	for {
		passed, newGen := evaluate()
		if !passed && newGen > gen {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("rules were not reloaded: passed=%v generation=%d", passed, newGen)
		}
		time.Sleep(25 * time.Millisecond)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	metricsBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(metricsBody), "cartgate_rules_reloads_total") {
		t.Error("metrics do not include rules reloads")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestBuildServer_InvalidRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  backend: memory\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	origCfgFile := cfgFile
	cfgFile = filepath.Join(dir, "absent.yaml")
	t.Cleanup(func() { cfgFile = origCfgFile })

	if _, err := buildServer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Error("buildServer() error = nil, want rules load error")
	}
}

func TestFileRules_LeavesGlobalConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeServeConfig(t, path, 5)

	before := config.GetConfig()
	rules, err := fileRules(path)()
	if err != nil {
		t.Fatalf("fileRules() error = %v", err)
	}
	if rules.MaxTotalItems != 5 {
		t.Errorf("MaxTotalItems = %d, want 5", rules.MaxTotalItems)
	}
	if config.GetConfig() != before {
		t.Error("loading rules replaced the global configuration")
	}
}
