package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/tabular"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze and save every coordinate in a CSV or XLSX file",
	Long:  "Reads latitude and longitude columns from a CSV or XLSX file, analyzes each row concurrently and saves the valid ones to your history.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		return runBatch(cmd.Context(), os.Stdout, cfg, path, resolveToken(cmd))
	},
}

// readCoordinateFile picks the reader by file extension.
func readCoordinateFile(path string) ([]geo.Coordinate, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return tabular.ReadXLSXCoordinates(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open file")
	}
	defer f.Close() //nolint:errcheck
	return tabular.ReadCoordinates(f)
}

func runBatch(ctx context.Context, out io.Writer, c *config.Config, path, token string) error {
	coords, err := readCoordinateFile(path)
	if err != nil {
		return err
	}
	if len(coords) == 0 {
		return eris.Errorf("batch: %s has no coordinate rows", path)
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

	zap.L().Info("batch: starting", zap.String("file", path), zap.Int("rows", len(coords)))
	res, err := env.Reports.AnalyzeBatch(ctx, coords)
	if err != nil {
		return eris.Wrap(err, "batch")
	}
	formatBatch(out, res)
	return nil
}

func init() {
	batchCmd.Flags().String("file", "", "CSV or XLSX file with latitude and longitude columns")
	_ = batchCmd.MarkFlagRequired("file")
	addTokenFlag(batchCmd)
	rootCmd.AddCommand(batchCmd)
}
