package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var checkoutAndPullCmd = &cobra.Command{
	Use:   "checkout_and_pull [project]",
	Short: "Check out each project's branch and pull",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.CheckoutAndPull(ctx, only)
		})
	},
}

func init() {
	rootCmd.AddCommand(checkoutAndPullCmd)
}
