package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"checkered/cartgate/pkg/admission"
	"checkered/cartgate/pkg/cart"
	"checkered/cartgate/pkg/catalog/storage"
	"checkered/cartgate/pkg/checkout"
	"checkered/cartgate/pkg/cli"
	"checkered/cartgate/pkg/remediation"
)

var checkFlags struct {
	catalog string
	format  string
}

var checkCmd = &cobra.Command{
	Use:   "check CART_FILE",
	Short: "Evaluate a cart snapshot",
	Long: `Evaluate a cart snapshot file against the configured admission rules.

The file holds a JSON cart snapshot; use "-" to read standard input. The
command exits with status 1 when the cart is blocked. With --catalog, the
products of the given catalog file are used to suggest items that would
unblock the cart.

Examples:
  # Check a cart with the default rules
  cartgate check cart.json

  # Check with a config file and remediation suggestions
  cartgate check --config config.yaml --catalog products.yaml cart.json

  # JSON output for scripts
  cartgate check --format json cart.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.catalog, "catalog", "", "catalog file used for remediation suggestions")
	checkCmd.Flags().StringVarP(&checkFlags.format, "format", "f", "text", "output format: text, json, csv")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(checkFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ruleSet, err := cfg.Rules()
	if err != nil {
		return cli.NewConfigError("admission", err.Error())
	}
	engine, err := admission.NewEngine(ruleSet)
	if err != nil {
		return cli.NewConfigError("admission", err.Error())
	}

	snap, err := readSnapshot(cmd.InOrStdin(), args[0])
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	var opts []checkout.Option
	if checkFlags.catalog != "" {
		store := storage.NewMemoryStore()
		defer store.Close()

		if _, err := storage.ImportFile(cmd.Context(), store, checkFlags.catalog, nil); err != nil {
			return cli.NewCommandError("check", err)
		}
		recommender, err := remediation.NewRecommender(store, cfg.RecommenderConfig())
		if err != nil {
			return cli.NewCommandError("check", err)
		}
		opts = append(opts, checkout.WithRecommender(recommender))
	}

	gate, err := checkout.NewGate(checkout.StaticEngine{E: engine}, nil, opts...)
	if err != nil {
		return err
	}
	result, err := gate.Evaluate(cmd.Context(), snap)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	report := newCheckReport(result)
	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if !report.Passed {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func readSnapshot(stdin io.Reader, path string) (*cart.Snapshot, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open cart file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var snap cart.Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to parse cart: %w", err)
	}
	return &snap, nil
}

// checkReport is the output of the check command.
type checkReport struct {
	CartID      string                `json:"cart_id,omitempty"`
	Passed      bool                  `json:"passed"`
	Reasons     []string              `json:"reasons,omitempty"`
	Message     string                `json:"message,omitempty"`
	Evaluation  *admission.Evaluation `json:"evaluation"`
	Remediation *remediation.Set      `json:"remediation,omitempty"`
}

func newCheckReport(res *checkout.Result) *checkReport {
	eval := res.Evaluation
	return &checkReport{
		CartID:      res.CartID,
		Passed:      eval.Decision.Passed,
		Reasons:     eval.BlockReasons(),
		Message:     eval.Decision.MessageText(),
		Evaluation:  eval,
		Remediation: res.Remediation,
	}
}

func (r *checkReport) String() string {
	var sb strings.Builder

	name := r.CartID
	if name == "" {
		name = "cart"
	}
	if r.Passed {
		fmt.Fprintf(&sb, "✓ %s may proceed to checkout", name)
		return sb.String()
	}

	fmt.Fprintf(&sb, "✗ %s is blocked (%s)\n", name, strings.Join(r.Reasons, ", "))
	sb.WriteString(r.Message)

	if c := r.Evaluation.Composition; c != nil {
		fmt.Fprintf(&sb, "\n\nItems: %d total, %d licensed, %d fantasy, %d premium",
			c.TotalCount, c.LicensedCount, c.FantasyCount, c.PremiumCount)
	}
	if s := r.Evaluation.Stock; s != nil {
		for _, line := range s.UnderStockedLines {
			fmt.Fprintf(&sb, "\n  %s: requested %d, available %d",
				line.Title, line.RequestedQuantity, line.AvailableQuantity)
		}
	}

	if !r.Remediation.Empty() {
		fmt.Fprintf(&sb, "\n\nAdd %d %s item(s), for example:", r.Remediation.Missing, r.Remediation.Category)
		for _, s := range r.Remediation.Suggestions {
			fmt.Fprintf(&sb, "\n  - %s (%s)", s.Product.Title, s.Product.ID)
		}
	}
	return sb.String()
}

func (r *checkReport) Header() []string {
	return []string{"cart_id", "passed", "reasons", "total_items", "message"}
}

func (r *checkReport) Rows() [][]string {
	total := 0
	if r.Evaluation.Composition != nil {
		total = r.Evaluation.Composition.TotalCount
	}
	return [][]string{{
		r.CartID,
		strconv.FormatBool(r.Passed),
		strings.Join(r.Reasons, ";"),
		strconv.Itoa(total),
		r.Message,
	}}
}
