package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var resetCmd = &cobra.Command{
	Use:   "reset [project]",
	Short: "Reset each working tree with its configured mode",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.Reset(ctx, only)
		})
	},
}

var removeLastCommitCmd = &cobra.Command{
	Use:   "remove_last_commit [project]",
	Short: "Drop the last commit unless it was already pushed",
	Long: `Reset each project to HEAD~1 with its configured reset mode. A commit
that already reached the remote is never removed; that project is
reported and skipped. The confirmation defaults to no.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.RemoveLastCommit(ctx, only)
		})
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(removeLastCommitCmd)
}
