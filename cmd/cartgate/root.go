package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"checkered/cartgate/pkg/cli"
	"checkered/cartgate/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cartgate",
	Short: "Cartgate - cart admission control",
	Long: `Cartgate decides whether a shopping cart may proceed to checkout.

It evaluates a cart against composition rules and stock availability,
explains a blocked cart to the shopper and suggests products that would
make the cart admissible.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()

	var exitErr *cli.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Err == nil) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the config file with environment overrides. A missing
// file is tolerated when the --config flag was not given, so that check
// can run on defaults plus the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err := config.LoadDefaultsWithEnvOverrides()
		if err != nil {
			return nil, cli.NewConfigError("", err.Error())
		}
		return cfg, nil
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg, nil
}
