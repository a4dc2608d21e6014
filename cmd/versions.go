package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var updateVersionsCmd = &cobra.Command{
	Use:   "update_versions [project]",
	Short: "Rewrite version descriptors and commit the result",
	Long: `Re-clone each project, check out its branch, and rewrite version
descriptors to the configured values: pom.xml files for Maven projects,
the configured version file for Ant and Angular projects. Changed files
are listed and committed after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.UpdateVersions(ctx, only)
		})
	},
}

func init() {
	rootCmd.AddCommand(updateVersionsCmd)
}
