package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var pushCompile bool

var pushChangesCmd = &cobra.Command{
	Use:   "push_changes [project]",
	Short: "Push committed work that has not reached the remote",
	Long: `Fetch each project and push when it is ahead of its upstream. With
--compile the project must build before anything is pushed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.PushChanges(ctx, only, pushCompile)
		})
	},
}

func init() {
	pushChangesCmd.Flags().BoolVar(&pushCompile, "compile", false, "Require a successful build before pushing")
	rootCmd.AddCommand(pushChangesCmd)
}
