// Package server runs the cartgate HTTP server.
//
// NewRouter assembles the handler tree:
//
//	Recovery -> RequestID -> Logging -> mux
//	    /v1/...            tracing -> metrics -> api.Handler
//	    /healthz /readyz   health.Checker
//	    /version           build information
//	    /metrics           Prometheus
//
// Server owns the listener. Start blocks until its context is cancelled;
// shutdown marks readiness as draining, waits for in-flight requests up to
// the configured timeout and then runs the registered shutdown hooks (rule
// watchers, the catalog store, the trace exporter).
//
//	srv, err := server.New(&cfg.Server, server.NewRouter(routes),
//	    server.WithHealth(checker),
//	    server.OnShutdown(func(ctx context.Context) error { return store.Close() }),
//	)
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package server
