// Package report gathers the git state of every configured project and
// renders it as a spreadsheet for release sign-off meetings.
package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mfiorini/relhand/internal/config"
	"github.com/mfiorini/relhand/internal/git"
)

// ProjectInfo is one row of the report: the observable git state of a
// project at collection time.
type ProjectInfo struct {
	Name             string
	Path             string
	Branch           string
	Commit           string
	CommitDate       time.Time
	CommitMessage    string
	Tag              string
	TagCommitted     bool
	TagPushed        bool
	LastCommitPushed bool
	Ahead            int
	Changes          git.Changes
	Missing          bool
}

// Collector reads git state for the report.
type Collector struct {
	insp   git.Inspector
	remote string
}

func NewCollector(insp git.Inspector, remote string) *Collector {
	return &Collector{insp: insp, remote: remote}
}

// Collect gathers one row per project. Collection is best effort: a field
// whose git query fails is left at its zero value so one broken checkout
// cannot sink the whole report.
func (c *Collector) Collect(ctx context.Context, projects []*config.Project) []ProjectInfo {
	infos := make([]ProjectInfo, 0, len(projects))
	for _, p := range projects {
		infos = append(infos, c.collectOne(ctx, p))
	}
	return infos
}

func (c *Collector) collectOne(ctx context.Context, p *config.Project) ProjectInfo {
	info := ProjectInfo{Name: p.Name, Path: p.Path, Tag: p.Tag}

	if fi, err := os.Stat(p.Path); err != nil || !fi.IsDir() {
		info.Missing = true
		return info
	}

	if branch, err := c.insp.CurrentBranch(ctx, p.Path); err == nil {
		info.Branch = branch
	}
	if commit, err := c.insp.CurrentCommit(ctx, p.Path); err == nil {
		info.Commit = commit
	}
	if date, err := c.insp.LastCommitDate(ctx, p.Path); err == nil {
		info.CommitDate = date
	}
	if msg, err := c.insp.LastCommitMessage(ctx, p.Path); err == nil {
		info.CommitMessage = msg
	}
	if p.Tag != "" {
		if ok, err := c.insp.IsTagCommitted(ctx, p.Path, p.Tag); err == nil {
			info.TagCommitted = ok
		}
		if ok, err := c.insp.IsTagPushed(ctx, p.Path, c.remote, p.Tag); err == nil {
			info.TagPushed = ok
		}
	}
	if ok, err := c.insp.IsLastCommitPushed(ctx, p.Path); err == nil {
		info.LastCommitPushed = ok
	}
	if n, err := c.insp.AheadCount(ctx, p.Path); err == nil {
		info.Ahead = n
	}
	if ch, err := c.insp.WorkingTreeChanges(ctx, p.Path); err == nil {
		info.Changes = ch
	}
	return info
}

var workbookHeaders = []string{
	"Project", "Branch", "Commit", "Commit Date", "Commit Message",
	"Tag", "Tag Committed", "Tag Pushed", "Last Commit Pushed",
	"Unpushed Commits", "Working Tree",
}

// WriteWorkbook renders the collected rows into an xlsx file at path.
func WriteWorkbook(path string, infos []ProjectInfo) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Git Info"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, h := range workbookHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(workbookHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for r, info := range infos {
		row := r + 2
		set := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		set(1, info.Name)
		if info.Missing {
			set(2, "not checked out")
			continue
		}
		set(2, info.Branch)
		set(3, info.Commit)
		if !info.CommitDate.IsZero() {
			set(4, info.CommitDate.Format("2006-01-02 15:04:05"))
		}
		set(5, info.CommitMessage)
		set(6, info.Tag)
		set(7, yesNo(info.TagCommitted))
		set(8, yesNo(info.TagPushed))
		set(9, yesNo(info.LastCommitPushed))
		set(10, info.Ahead)
		set(11, workingTreeCell(info.Changes))
	}

	if err := f.SetColWidth(sheet, "A", "K", 22); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func workingTreeCell(ch git.Changes) string {
	if ch.Empty() {
		return "clean"
	}
	return fmt.Sprintf("%d modified, %d added, %d deleted",
		len(ch.Modified), len(ch.Added), len(ch.Deleted))
}
