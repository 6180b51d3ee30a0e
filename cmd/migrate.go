package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-analytics/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMigrate(cmd.Context(), cfg)
	},
}

func runMigrate(ctx context.Context, c *config.Config) error {
	env, err := initEnv(ctx, c, config.ModeStore, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	zap.L().Info("migrations applied", zap.String("driver", c.Store.Driver))
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
