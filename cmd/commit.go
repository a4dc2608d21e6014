package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var commitCmd = &cobra.Command{
	Use:   "commit [project]",
	Short: "Commit pending working tree changes",
	Long: `Commit tracked working tree changes in each project with the
configured version in the message. A clean tree is reported as a no-op.
The confirmation defaults to no.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.Commit(ctx, only)
		})
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)
}
