// Package main is the multiauth operator CLI: publishing bundled resources,
// applying migrations and listing user provider drivers.
//
// Import Path: kv-shepherd.io/multiauth/cmd/multiauth
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kv-shepherd.io/multiauth/internal/config"
	"kv-shepherd.io/multiauth/internal/pkg/logger"

	// Registers the migrations publish group.
	_ "kv-shepherd.io/multiauth/database/migrations"
	_ "kv-shepherd.io/multiauth/plugins/userprovider/autoreg"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "multiauth",
		Short:         "Per-request user provider selection for auth guards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default: ./config.yaml if present)")

	cmd.AddCommand(
		newPublishCmd(opts),
		newMigrateCmd(opts),
		newProvidersCmd(),
	)
	return cmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
