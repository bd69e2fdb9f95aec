// Package rules keeps the active admission engine and swaps it when the rule
// configuration changes.
//
// A Manager loads rules from a Source and publishes the resulting
// *admission.Engine through an atomic pointer, so evaluations in flight keep
// the engine they started with. Reloads are triggered by a FileWatcher on the
// configuration file, by a cron Scheduler, or explicitly. A reload that fails
// to load or validate keeps the previous engine and returns a *ReloadError.
//
// # Usage
//
//	manager, err := rules.NewManager(func() (admission.Rules, error) {
//	    cfg, err := config.LoadConfig(path)
//	    if err != nil {
//	        return admission.Rules{}, err
//	    }
//	    return cfg.Rules()
//	})
//
//	watcher, _ := rules.NewFileWatcher(&rules.FileWatcherConfig{Path: path}, logger)
//	go watcher.Watch(ctx, manager.Reload)
package rules
