package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfiorini/relhand/internal/output"
	"github.com/mfiorini/relhand/internal/report"
)

var gitInfoOut string

var extractGitInfoCmd = &cobra.Command{
	Use:   "extract_git_info_to_excel [project]",
	Short: "Export each project's git state to a spreadsheet",
	Long: `Collect branch, commit, tag, and push state for each project and
write them to an xlsx workbook. Projects whose git queries fail get a
partial row instead of failing the export.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return extractGitInfoRun(args)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [project]",
	Short: "Show each project's git state as a table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun(args)
	},
}

func init() {
	extractGitInfoCmd.Flags().StringVar(&gitInfoOut, "out", "git-info.xlsx", "Output workbook path")
	rootCmd.AddCommand(extractGitInfoCmd)
	rootCmd.AddCommand(statusCmd)
}

func extractGitInfoRun(args []string) error {
	infos, err := collectGitInfo(args)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return nil
	}
	if err := report.WriteWorkbook(gitInfoOut, infos); err != nil {
		return err
	}
	ui.Success("Wrote git info for %d project(s) to %s", len(infos), gitInfoOut)
	return nil
}

func statusRun(args []string) error {
	infos, err := collectGitInfo(args)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return nil
	}

	table := ui.Table([]string{"Project", "Branch", "Commit", "Tag", "Committed", "Pushed", "Ahead", "Working Tree"})
	for _, info := range infos {
		if info.Missing {
			_ = table.Append([]string{output.Cyan(info.Name), output.Yellow("not checked out"), "", "", "", "", "", ""})
			continue
		}
		_ = table.Append([]string{
			output.Cyan(info.Name),
			info.Branch,
			shortCommit(info.Commit),
			info.Tag,
			output.YesNo(info.TagCommitted),
			output.YesNo(info.TagPushed),
			fmt.Sprintf("%d", info.Ahead),
			workingTreeSummary(info),
		})
	}
	return table.Render()
}

// collectGitInfo gathers rows from the placeholder-resolved view so the
// tag column shows the tags the workflows would act on.
func collectGitInfo(args []string) ([]report.ProjectInfo, error) {
	l, err := getLoaded()
	if err != nil {
		return nil, err
	}
	cfg := l.Resolved

	projects := cfg.Projects
	if len(args) == 1 {
		projects = nil
		for _, p := range cfg.Projects {
			if p.Name == args[0] {
				projects = append(projects, p)
			}
		}
		if len(projects) == 0 {
			ui.Warning("No project named %s in the configuration", args[0])
			return nil, nil
		}
	}

	infos := report.NewCollector(gitCLI, cfg.RemoteName).Collect(context.Background(), projects)
	return infos, nil
}

// shortCommit truncates a hash for display (first 12 chars).
func shortCommit(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func workingTreeSummary(info report.ProjectInfo) string {
	if info.Changes.Empty() {
		return output.Green("clean")
	}
	n := len(info.Changes.Modified) + len(info.Changes.Added) + len(info.Changes.Deleted)
	return output.Yellow(fmt.Sprintf("%d change(s)", n))
}
