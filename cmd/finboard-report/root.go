package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/log"
)

// app carries what every subcommand needs. open is swapped in tests.
type app struct {
	open func(ctx context.Context) (*backend.BackendResult, *log.Logger, error)
	now  func() time.Time
}

func newApp() *app {
	return &app{open: openConfigured, now: time.Now}
}

// openConfigured builds the backend named by the environment, the same way
// the API server does.
func openConfigured(ctx context.Context) (*backend.BackendResult, *log.Logger, error) {
	cfg, logger, err := cli.Bootstrap(log.ComponentReport)
	if err != nil {
		return nil, nil, err
	}
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", cfg.DataBackend, err)
	}
	return res, logger, nil
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finboard-report",
		Short: "Render finboard ledgers and record listings to PDF or XLSX",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newLedgerCommand(a))
	rootCmd.AddCommand(newRecordsCommand(a))

	return rootCmd
}

// writeOutput writes content to path, or to stdout when path is "-".
func writeOutput(cmd *cobra.Command, path string, content []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(content))
	return nil
}

func closeBackend(res *backend.BackendResult, logger *log.Logger, w io.Writer) {
	if err := res.Close(); err != nil {
		logger.Error("Backend close error", log.FieldError, err)
		fmt.Fprintln(w, "warning: backend close failed:", err)
	}
}
