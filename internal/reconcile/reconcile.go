// Package reconcile drives the per-project release workflows. Each command
// walks the configured projects, compares current git state against the
// desired release state, and performs only the missing steps, so every
// workflow can be re-run safely after a partial failure.
package reconcile

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mfiorini/relhand/internal/config"
	"github.com/mfiorini/relhand/internal/git"
	"github.com/mfiorini/relhand/internal/output"
	"github.com/mfiorini/relhand/internal/prompt"
)

// Outcome classifies how a project fared in one workflow run.
type Outcome string

const (
	// OutcomeOK means the workflow performed at least one step.
	OutcomeOK Outcome = "ok"
	// OutcomeNoop means the desired state was already reached.
	OutcomeNoop Outcome = "no-op"
	// OutcomeSkipped covers configured skips, declined prompts, and
	// state-conflict refusals.
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result holds the outcome of one project in one workflow.
type Result struct {
	Project string  `json:"project"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Summary aggregates a workflow's results across all projects.
type Summary struct {
	Results []Result `json:"results"`
	OK      int      `json:"ok"`
	Noop    int      `json:"noop"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeOK:
		s.OK++
	case OutcomeNoop:
		s.Noop++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Builder runs a project's compile check.
type Builder interface {
	Compile(ctx context.Context, p *config.Project) error
}

// Runner executes workflows against the configured projects.
type Runner struct {
	loaded  *config.Loaded
	insp    git.Inspector
	git     git.Executor
	builder Builder
	confirm prompt.Confirmer
	ui      *output.UI
	log     *zap.SugaredLogger
}

func NewRunner(loaded *config.Loaded, insp git.Inspector, exec git.Executor, builder Builder, confirm prompt.Confirmer, ui *output.UI, log *zap.SugaredLogger) *Runner {
	return &Runner{
		loaded:  loaded,
		insp:    insp,
		git:     exec,
		builder: builder,
		confirm: confirm,
		ui:      ui,
		log:     log,
	}
}

// step runs one workflow against one project.
type step func(ctx context.Context, p *config.Project) (Outcome, string, error)

// forEach applies fn to every configured project, or just the named one.
// Failures are recorded and reported but never stop the walk, so one bad
// project cannot block the rest of the fleet.
func (r *Runner) forEach(ctx context.Context, cfg *config.Config, only string, fn step) *Summary {
	sum := &Summary{}
	matched := false
	for _, p := range cfg.Projects {
		if only != "" && p.Name != only {
			continue
		}
		matched = true
		if p.Skip {
			r.infof("Project %s is configured to be skipped", p.Name)
			sum.add(Result{Project: p.Name, Outcome: OutcomeSkipped, Detail: "configured to be skipped"})
			continue
		}
		if err := cfg.ValidateProject(p); err != nil {
			r.errorf("Project %s: %v", p.Name, err)
			sum.add(Result{Project: p.Name, Outcome: OutcomeFailed, Error: err.Error()})
			continue
		}
		outcome, detail, err := fn(ctx, p)
		if err != nil {
			r.errorf("Project %s: %v", p.Name, err)
			sum.add(Result{Project: p.Name, Outcome: OutcomeFailed, Error: err.Error()})
			continue
		}
		sum.add(Result{Project: p.Name, Outcome: outcome, Detail: detail})
	}
	if only != "" && !matched {
		r.warnf("No project named %s in the configuration", only)
	}
	return sum
}

// Report renders the per-project outcomes and a one-line tally.
func (r *Runner) Report(sum *Summary) {
	if len(sum.Results) == 0 {
		return
	}
	table := r.ui.Table([]string{"Project", "Outcome", "Detail"})
	for _, res := range sum.Results {
		detail := res.Detail
		if res.Error != "" {
			detail = res.Error
		}
		table.Append([]string{res.Project, output.OutcomeColor(string(res.Outcome)), detail})
	}
	_ = table.Render()
	r.infof("%d ok, %d no-op, %d skipped, %d failed", sum.OK, sum.Noop, sum.Skipped, sum.Failed)
}

// Operator-facing messages are mirrored into the run log so the session
// can be reconstructed from the file alone.

func (r *Runner) infof(format string, args ...any) {
	r.ui.Info(format, args...)
	r.log.Infof(format, args...)
}

func (r *Runner) successf(format string, args ...any) {
	r.ui.Success(format, args...)
	r.log.Infof(format, args...)
}

func (r *Runner) warnf(format string, args ...any) {
	r.ui.Warning(format, args...)
	r.log.Warnf(format, args...)
}

func (r *Runner) errorf(format string, args ...any) {
	r.ui.Error(format, args...)
	r.log.Errorf(format, args...)
}

// freshClone re-clones the project from its remote, replacing whatever is
// on disk so the run starts from the published state.
func (r *Runner) freshClone(ctx context.Context, p *config.Project) error {
	if p.RemoteURL == "" {
		return fmt.Errorf("project %s has no project_remote_git_url", p.Name)
	}
	if _, err := os.Stat(p.Path); err == nil {
		r.infof("Removing existing directory %s", p.Path)
	}
	if err := r.git.Clone(ctx, p.RemoteURL, p.Path); err != nil {
		return err
	}
	r.infof("Cloned %s into %s", p.RemoteURL, p.Path)
	return nil
}

// requireCheckout guards workflows that operate on an existing clone.
func (r *Runner) requireCheckout(p *config.Project) error {
	fi, err := os.Stat(p.Path)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("project directory %s does not exist, run checkout_and_pull or update_versions first", p.Path)
	}
	return nil
}
