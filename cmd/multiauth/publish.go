package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kv-shepherd.io/multiauth/internal/publish"
)

func newPublishCmd(root *rootOptions) *cobra.Command {
	var (
		tag   string
		dir   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Copy bundled resources (e.g. migrations) into the host application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				cfg, err := root.load()
				if err != nil {
					return err
				}
				dir = cfg.Publish.MigrationsDir
			}

			results, err := publish.Publish(tag, dir, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%-8s %s\n", r.Status, r.Dest)
			}
			if len(results) == 0 {
				fmt.Fprintf(out, "nothing to publish for %q\n", tag)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", publish.GroupMigrations,
		"group to publish ("+strings.Join(publish.Groups(), ", ")+")")
	cmd.Flags().StringVar(&dir, "dir", "", "destination directory (default: publish.migrations_dir)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite files that already exist")
	return cmd
}
