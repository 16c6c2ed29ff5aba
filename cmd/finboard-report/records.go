package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/core"
	"finboard/internal/filter"
	"finboard/internal/observability/metrics"
	"finboard/internal/report"
)

func newRecordsCommand(a *app) *cobra.Command {
	var (
		kind   string
		tab    string
		search string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Export an invoice or expense listing to XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := core.ParseKind(kind)
			if err != nil {
				return err
			}

			res, logger, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeBackend(res, logger, cmd.ErrOrStderr())

			records, err := res.Backend.ListRecords(cmd.Context(), k)
			if err != nil {
				return fmt.Errorf("list %ss: %w", k, err)
			}
			view := filter.Filter(records, filter.Tab(tab), filter.Criteria{}, search)
			if k == core.KindInvoice {
				view = filter.SortInvoices(view)
			} else {
				view = filter.SortExpenses(view)
			}

			start := time.Now()
			content, err := report.RecordsXLSX(k, view)
			metrics.ObserveReport("xlsx", err, time.Since(start))
			if err != nil {
				return fmt.Errorf("render xlsx: %w", err)
			}
			logger.Info("Records exported", "kind", k, "tab", tab, "count", len(view))

			if out == "" {
				out = string(k) + "s.xlsx"
			}
			return writeOutput(cmd, out, content)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "invoice", "collection: invoice or expense")
	cmd.Flags().StringVar(&tab, "tab", string(filter.TabAll), "tab to export")
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default <kind>s.xlsx)")

	return cmd
}
