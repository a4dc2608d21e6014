package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/reconcile"
)

var createTagsCmd = &cobra.Command{
	Use:     "create_tags [project]",
	Aliases: []string{"update_tags"},
	Short:   "Create and push the configured release tags",
	Long: `Re-clone each project and converge it on "tag exists and is pushed":
an existing tag is only pushed, a pushed tag is left alone. With
tag_progr_suffix enabled every run mints the next numbered tag in the
sequence instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.CreateTags(ctx, only)
		})
	},
}

var deleteTagsCmd = &cobra.Command{
	Use:   "delete_tags [project]",
	Short: "Delete the configured tags from the local clones",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.DeleteTags(ctx, only)
		})
	},
}

var deleteTagsRemotelyCmd = &cobra.Command{
	Use:   "delete_tags_remotely [project]",
	Short: "Delete the configured tags from the remotes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.DeleteRemoteTags(ctx, only)
		})
	},
}

var pushTagsCmd = &cobra.Command{
	Use:   "push_tags [project]",
	Short: "Push the configured tags that are not on the remote yet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkflow(args, func(ctx context.Context, r *reconcile.Runner, only string) *reconcile.Summary {
			return r.PushTags(ctx, only)
		})
	},
}

func init() {
	rootCmd.AddCommand(createTagsCmd)
	rootCmd.AddCommand(deleteTagsCmd)
	rootCmd.AddCommand(deleteTagsRemotelyCmd)
	rootCmd.AddCommand(pushTagsCmd)
}
