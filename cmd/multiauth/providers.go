package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kv-shepherd.io/multiauth/internal/provider"
)

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered user provider drivers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tBUILT-IN\tDESCRIPTION")
			for _, d := range provider.ListDrivers() {
				fmt.Fprintf(w, "%s\t%t\t%s\n", d.Type, d.BuiltIn, d.Description)
			}
			return w.Flush()
		},
	}
}
