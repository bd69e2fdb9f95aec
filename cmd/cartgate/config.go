package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"checkered/cartgate/pkg/cli"
	"checkered/cartgate/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load the configuration file with environment overrides and report every
validation error. The admission section is also compiled into a rule set.

Examples:
  cartgate config validate --config /etc/cartgate/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var configDefaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(config.DefaultConfig()); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configDefaultsCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(out, "✗ %s has %d error(s):\n", cfgFile, len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "  - %s\n", fe.Error())
			}
			return &cli.ExitError{Code: 1}
		}
		return cli.NewConfigError("", err.Error())
	}

	if _, err := cfg.Rules(); err != nil {
		return cli.NewConfigError("admission", err.Error())
	}

	fmt.Fprintf(out, "✓ %s is valid\n", cfgFile)
	if verbose {
		fmt.Fprintf(out, "  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "  catalog backend: %s\n", cfg.Catalog.Backend)
		fmt.Fprintf(out, "  max total items: %d\n", cfg.Admission.MaxTotalItems)
	}
	return nil
}
