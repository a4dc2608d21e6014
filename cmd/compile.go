package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var compileCheckCmd = &cobra.Command{
	Use:   "compile_check [project]",
	Short: "Build each project with its configured tool",
	Long: `Run the build matching the project type: mvn clean compile for Maven,
ant with the configured target for Ant, ng build for Angular. Tool
locations come from the *_home configuration keys.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.CompileCheck(ctx, only)
		})
	},
}

func init() {
	rootCmd.AddCommand(compileCheckCmd)
}
