package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/observability/metrics"
	"finboard/internal/report"
)

func newLedgerCommand(a *app) *cobra.Command {
	var (
		customer string
		format   string
		mode     string
		opening  string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Render one customer's ledger statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			customer = strings.TrimSpace(customer)
			if customer == "" {
				return fmt.Errorf("--customer is required")
			}
			format = strings.ToLower(format)
			if format != "pdf" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q: must be pdf or xlsx", format)
			}
			opts := ledger.Options{Mode: ledger.ParseDisplayMode(mode)}
			if opening != "" {
				d, err := core.ParseNumber(opening)
				if err != nil {
					return fmt.Errorf("invalid --opening %q: %w", opening, err)
				}
				opts.Opening = d
			}

			res, logger, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeBackend(res, logger, cmd.ErrOrStderr())

			statement, err := res.Ledger.Statement(cmd.Context(), customer, opts)
			if err != nil {
				return fmt.Errorf("compute ledger for %s: %w", customer, err)
			}

			start := time.Now()
			var content []byte
			if format == "pdf" {
				content, err = report.LedgerPDF(customer, statement, a.now())
			} else {
				content, err = report.LedgerXLSX(customer, statement)
			}
			metrics.ObserveReport(format, err, time.Since(start))
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			logger.Info("Ledger rendered", "customer", customer, "format", format, "rows", len(statement.Rows))

			if out == "" {
				out = "ledger." + format
			}
			return writeOutput(cmd, out, content)
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&format, "format", "pdf", "output format: pdf or xlsx")
	cmd.Flags().StringVar(&mode, "mode", string(ledger.DisplayAll), "display mode: all or outstanding")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default ledger.<format>)")

	return cmd
}
