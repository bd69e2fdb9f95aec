// Package config provides configuration management for cartgate.
//
// Configuration is read from a YAML file, overlaid on defaults, then
// overridden by environment variables and validated.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("cartgate.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("cartgate.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CARTGATE_SECTION_FIELD:
//
//   - CARTGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CARTGATE_ADMISSION_CATEGORIES_FANTASY_ID overrides admission.categories.fantasy.id
//   - CARTGATE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example
//
//	admission:
//	  categories:
//	    licensed: {id: pcat_01HLIC, label: Licensed}
//	    fantasy:  {id: pcat_01HFAN, label: Fantasy}
//	    premium:  {id: pcat_01HPRE, label: Premium}
//	  max_total_items: 14
//	  premium_to_fantasy_ratio: 2
//	  licensed_to_fantasy_ratio: 2
//	  non_fantasy_quantity_cap: 1
//	  unknown_availability: block
//	  locale: en
//
//	reload:
//	  watch: true
//	  schedule: "@every 10m"
//
// The engine-facing views of the configuration are produced by
// (*Config).Rules, (*Config).Taxonomy, (*Config).RecommenderConfig and
// (*Config).StorageOptions.
package config
