package main

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sells-group/geo-analytics/internal/analysis"
	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/geo"
	"github.com/sells-group/geo-analytics/internal/monitoring"
	"github.com/sells-group/geo-analytics/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a coordinate",
	Long:  "Prints the risk, land cost and climate report for a latitude/longitude. With --save the analysis is stored in your history.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lat, _ := cmd.Flags().GetString("lat")
		lon, _ := cmd.Flags().GetString("lon")
		format, _ := cmd.Flags().GetString("format")
		save, _ := cmd.Flags().GetBool("save")

		var token string
		if save {
			token = resolveToken(cmd)
		}
		return runAnalyze(cmd.Context(), os.Stdout, cfg, lat, lon, format, token, save)
	},
}

// runAnalyze validates the coordinate and prints its report, saving it first
// when save is set.
func runAnalyze(ctx context.Context, out io.Writer, c *config.Config, lat, lon, format, token string, save bool) error {
	coord, err := geo.ParseCoordinate(lat, lon)
	if err != nil {
		return err
	}

	if !save {
		rep := analysis.Analyze(coord.Latitude, coord.Longitude)
		return writeAnalysis(out, format, viewOf(&report.Result{Report: rep, MapURL: geo.MapEmbedURL(coord)}))
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
	res, err := env.Reports.Analyze(ctx, coord)
	if err != nil {
		return err
	}
	return writeAnalysis(out, format, viewOf(res))
}

var (
	metricsOnce sync.Once
	metrics     *monitoring.Metrics
)

// cliMetrics returns the process-wide metrics, registered on first use.
func cliMetrics() *monitoring.Metrics {
	metricsOnce.Do(func() {
		metrics = monitoring.NewMetrics()
	})
	return metrics
}

func init() {
	analyzeCmd.Flags().String("lat", "", "latitude in decimal degrees (-90 to 90)")
	analyzeCmd.Flags().String("lon", "", "longitude in decimal degrees (-180 to 180)")
	analyzeCmd.Flags().String("format", formatText, "output format: text, json or yaml")
	analyzeCmd.Flags().Bool("save", false, "save the analysis to your history")
	addTokenFlag(analyzeCmd)
	_ = analyzeCmd.MarkFlagRequired("lat")
	_ = analyzeCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(analyzeCmd)
}
