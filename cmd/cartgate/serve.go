package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/api"
	"checkered/cartgate/pkg/catalog/storage"
	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/cli"
	"checkered/cartgate/pkg/config"
	"checkered/cartgate/pkg/remediation"
	"checkered/cartgate/pkg/rules"
	"checkered/cartgate/pkg/server"
	"checkered/cartgate/pkg/telemetry/health"
	"checkered/cartgate/pkg/telemetry/logging"
	"checkered/cartgate/pkg/telemetry/metrics"
	"checkered/cartgate/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cartgate HTTP service",
	Long: `Start the cartgate HTTP service with the specified configuration.

The service evaluates carts on /v1/admission/evaluate, checks stored carts
on /v1/carts/{id}/admission and authorizes checkout on
/v1/carts/{id}/checkout/authorize. Admission rules are reloaded from the
configuration file when it changes or on the configured schedule.

Examples:
  # Start with default config
  cartgate serve

  # Start with custom config
  cartgate serve --config /etc/cartgate/config.yaml

  # Override listen address
  cartgate serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  cartgate serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("", err.Error())
	}

	logger, err := logging.New(logging.FromConfig(&cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	log := logger.Slog()
	slog.SetDefault(log)

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	srv, err := buildServer(ctx, cfg, log)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// buildServer wires every component of the service. Components that own
// resources are released by server shutdown hooks, or immediately when a
// later step fails.
func buildServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (srv *server.Server, err error) {
	var cleanup []server.ShutdownHook
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				_ = cleanup[i](context.Background())
			}
		}
	}()

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	cleanup = append(cleanup, tracer.Shutdown)

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	store, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	cleanup = append(cleanup, func(context.Context) error { return store.Close() })
	log.Info("catalog opened", "backend", cfg.Catalog.Backend)

	ruleOpts := []rules.Option{rules.WithLogger(log)}
	if collector != nil {
		ruleOpts = append(ruleOpts, rules.WithRecorder(collector))
	}
	manager, err := rules.NewManager(fileRules(cfgFile), ruleOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load admission rules: %w", err)
	}

	if cfg.Reload.Watch {
		watcher, err := rules.NewFileWatcher(&rules.FileWatcherConfig{
			Path:             cfgFile,
			DebounceInterval: cfg.Reload.Debounce,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create rules watcher: %w", err)
		}
		cleanup = append(cleanup, func(context.Context) error { return watcher.Stop() })
		go func() {
			if err := watcher.Watch(ctx, manager.Reload); err != nil {
				log.Error("rules watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Reload.Schedule != "" {
		scheduler := rules.NewScheduler(cfg.Reload.Schedule, manager.Reload, log)
		if err := scheduler.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start rules scheduler: %w", err)
		}
		cleanup = append(cleanup, func(context.Context) error {
			scheduler.Stop()
			return nil
		})
		if next := scheduler.NextRun(); next != nil {
			log.Info("rules reload scheduled", "schedule", cfg.Reload.Schedule, "next_run", next.Format(time.RFC3339))
		}
	}

	gateOpts := []checkout.Option{checkout.WithLogger(log)}
	if collector != nil {
		gateOpts = append(gateOpts, checkout.WithRecorder(collector))
	}
	if cfg.Remediation.Enabled {
		recOpts := []remediation.Option{remediation.WithLogger(log)}
		if collector != nil {
			recOpts = append(recOpts, remediation.WithMetrics(collector))
		}
		recommender, err := remediation.NewRecommender(store, cfg.RecommenderConfig(), recOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create recommender: %w", err)
		}
		gateOpts = append(gateOpts, checkout.WithRecommender(recommender))
	}

	gate, err := checkout.NewGate(manager, store, gateOpts...)
	if err != nil {
		return nil, err
	}

	handler, err := api.NewHandler(gate,
		api.WithGenerations(manager),
		api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		api.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("rules", health.ErrorCheck(manager.Check))
	checker.RegisterCheck("catalog", health.PingCheck(store))
	log.Debug("readiness checks registered", "checks", checker.ListChecks())

	routes := server.Routes{
		API:       handler,
		Checker:   checker,
		Health:    &cfg.Telemetry.Health,
		BuildInfo: buildInfo(),
		Logger:    log,
	}
	if collector != nil {
		routes.Metrics = collector
		routes.MetricsPath = cfg.Telemetry.Metrics.Path
	}

	opts := []server.Option{server.WithHealth(checker), server.WithLogger(log)}
	for i := len(cleanup) - 1; i >= 0; i-- {
		opts = append(opts, server.OnShutdown(cleanup[i]))
	}

	return server.New(&cfg.Server, server.NewRouter(routes), opts...)
}

// fileRules re-reads the configuration file on every load so that reloads
// pick up edited admission settings. The process-wide configuration, with
// its command-line overrides, is left as it was.
func fileRules(path string) rules.Source {
	return func() (admission.Rules, error) {
		cfg, err := config.LoadConfigWithEnvOverrides(path)
		if err != nil {
			return admission.Rules{}, err
		}
		return cfg.Rules()
	}
}
