package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kv-shepherd.io/multiauth/database/migrations"
	"kv-shepherd.io/multiauth/internal/infrastructure"
	"kv-shepherd.io/multiauth/internal/pkg/logger"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations to the configured database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			pool, err := infrastructure.NewPool(ctx, cfg.Database)
			if err != nil {
				return fmt.Errorf("init database: %w", err)
			}
			defer pool.Close()

			fsys := migrations.FS()
			if dir != "" {
				fsys = os.DirFS(dir)
			}
			applied, err := infrastructure.ApplyMigrations(ctx, pool, fsys)
			if err != nil {
				return err
			}
			logger.Info("Migrations applied", zap.Int64s("versions", applied))
			fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", len(applied))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the bundled set")
	return cmd
}
