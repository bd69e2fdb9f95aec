// Package health provides liveness, readiness and version endpoints.
//
// Readiness runs every registered check concurrently, each bounded by the
// configured check timeout. cartgate registers two checks: the catalog store
// must answer a ping and the rules manager must hold an engine. Once the
// server starts draining, readiness reports "draining" so that load
// balancers stop routing new carts while in-flight checkouts finish.
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("catalog", health.PingCheck(store))
//	checker.RegisterCheck("rules", health.ErrorCheck(manager.Check))
//	health.Register(mux, &cfg.Telemetry.Health, checker, health.BuildInfo{Version: "1.2.0"})
package health
