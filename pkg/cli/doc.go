/*
Package cli provides helpers shared by the cartgate commands.

Output formatting renders command results as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

CSV output requires the value to implement Table.

Catalog imports report progress per file through ImportProgress, which
satisfies storage.ImportObserver:

	progress := cli.NewImportProgress(os.Stderr, "products.yaml")
	res, err := storage.ImportFile(ctx, store, "products.yaml", progress)
	progress.Finish()

Commands that must stop on SIGINT or SIGTERM derive their context from
SetupSignalHandler. A command that wants a specific process exit status
returns an *ExitError.
*/
package cli
