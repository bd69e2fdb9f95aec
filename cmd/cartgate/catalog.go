package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"checkered/cartgate/pkg/catalog/storage"
	"checkered/cartgate/pkg/cli"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogImportFlags struct {
	quiet bool
}

var catalogImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import products into the catalog",
	Long: `Import products from YAML or JSON catalog files into the configured
catalog store. Existing products with the same ID are replaced.

Examples:
  cartgate catalog import --config config.yaml products.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogImport,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd)

	catalogImportCmd.Flags().BoolVarP(&catalogImportFlags.quiet, "quiet", "q", false, "do not report progress")
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return cli.NewCommandError("catalog import", err)
	}
	defer store.Close()

	var total storage.ImportResult
	for _, path := range args {
		res, err := importCatalogFile(cmd, store, path)
		total.Products += res.Products
		total.Carts += res.Carts
		total.Skipped += res.Skipped
		if err != nil {
			return cli.NewCommandError("catalog import", fmt.Errorf("%s: %w", path, err))
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d product(s) and %d cart(s) into the %s catalog",
		total.Products, total.Carts, cfg.Catalog.Backend)
	if total.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d duplicate(s)", total.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func importCatalogFile(cmd *cobra.Command, store storage.Store, path string) (storage.ImportResult, error) {
	if catalogImportFlags.quiet {
		return storage.ImportFile(cmd.Context(), store, path, nil)
	}

	progress := cli.NewImportProgress(cmd.ErrOrStderr(), filepath.Base(path))
	defer progress.Finish()
	return storage.ImportFile(cmd.Context(), store, path, progress)
}
