package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/tabular"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect your saved analyses",
}

// -- history list --

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analyses, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		return runHistoryList(cmd.Context(), os.Stdout, cfg, resolveToken(cmd), limit, offset)
	},
}

func runHistoryList(ctx context.Context, out io.Writer, c *config.Config, token string, limit, offset int) error {
	env, err := initEnv(ctx, c, config.ModeAuth, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, err = env.authenticate(ctx, token)
	if err != nil {
		return err
	}
	recs, err := env.Reports.History(ctx, limit, offset)
	if err != nil {
		return eris.Wrap(err, "history list")
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "No analyses found.")
		return nil
	}
	formatHistory(out, recs)
	return nil
}

// -- history export --

// Export formats.
const (
	exportCSV  = "csv"
	exportXLSX = "xlsx"
)

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export your full history as CSV or XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		path, _ := cmd.Flags().GetString("out")

		var out io.Writer = os.Stdout
		if path != "" {
			f, err := os.Create(path)
			if err != nil {
				return eris.Wrap(err, "history export: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return runHistoryExport(cmd.Context(), out, cfg, resolveToken(cmd), format)
	},
}

func runHistoryExport(ctx context.Context, out io.Writer, c *config.Config, token, format string) error {
	if format != exportCSV && format != exportXLSX {
		return eris.Errorf("unknown export format %q (want csv or xlsx)", format)
	}

	env, err := initEnv(ctx, c, config.ModeAuth, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, err = env.authenticate(ctx, token)
	if err != nil {
		return err
	}
	recs, err := env.Reports.Export(ctx)
	if err != nil {
		return eris.Wrap(err, "history export")
	}

	if format == exportXLSX {
		err = tabular.WriteXLSX(out, recs)
	} else {
		err = tabular.WriteCSV(out, recs)
	}
	if err != nil {
		return eris.Wrap(err, "history export")
	}
	fmt.Fprintf(os.Stderr, "Exported %d analyses.\n", len(recs))
	return nil
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "max number of analyses (default from config, at most 100)")
	historyListCmd.Flags().Int("offset", 0, "number of analyses to skip")
	addTokenFlag(historyListCmd)

	historyExportCmd.Flags().String("format", exportCSV, "export format: csv or xlsx")
	historyExportCmd.Flags().String("out", "", "output file (default stdout)")
	addTokenFlag(historyExportCmd)

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
