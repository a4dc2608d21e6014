// Package build runs the per-type compile checks with the tool homes from
// the configuration: Maven, Ant, or the Angular CLI.
package build

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mfiorini/relhand/internal/config"
)

// Executor runs one external build command in dir and returns its combined
// output.
type Executor interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// CommandExecutor shells out for real.
type CommandExecutor struct {
	// Timeout bounds each build; zero leaves it unbounded.
	Timeout time.Duration
}

func (e *CommandExecutor) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return string(out), fmt.Errorf("%s timed out after %s", name, e.Timeout)
		}
		return string(out), fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Runner dispatches a project to its build tool.
type Runner struct {
	cfg  *config.Config
	exec Executor
}

func NewRunner(cfg *config.Config, exec Executor) *Runner {
	return &Runner{cfg: cfg, exec: exec}
}

// Compile runs the project's build in its working tree. A non-zero exit is
// returned as an error carrying the tool output.
func (r *Runner) Compile(ctx context.Context, p *config.Project) error {
	switch p.Type {
	case config.TypeMaven:
		return r.compileMaven(ctx, p)
	case config.TypeAnt:
		return r.compileAnt(ctx, p)
	case config.TypeAngular:
		return r.compileAngular(ctx, p)
	default:
		return fmt.Errorf("project %s has no build tool for type %q", p.Name, p.Type)
	}
}

func (r *Runner) compileMaven(ctx context.Context, p *config.Project) error {
	args := []string{"clean", "compile"}
	args = append(args, r.cfg.MavenCompileOptions...)
	if r.cfg.MavenSettings != "" {
		args = append(args, "--settings", r.cfg.MavenSettings)
	}
	_, err := r.exec.Run(ctx, p.Path, binPath(r.cfg.MavenHome, "mvn", ".cmd"), args...)
	return err
}

func (r *Runner) compileAnt(ctx context.Context, p *config.Project) error {
	var args []string
	if r.cfg.AntTarget != "" {
		args = append(args, r.cfg.AntTarget)
	}
	args = append(args, r.cfg.AntCompileOptions...)
	_, err := r.exec.Run(ctx, p.Path, binPath(r.cfg.AntHome, "ant", ".bat"), args...)
	return err
}

func (r *Runner) compileAngular(ctx context.Context, p *config.Project) error {
	args := append([]string{"build"}, r.cfg.NodeCompileOptions...)
	// The Angular CLI lives directly under the configured node home, not
	// in a bin subdirectory.
	ng := "ng"
	if runtime.GOOS == "windows" {
		ng += ".cmd"
	}
	if r.cfg.NodeHome != "" {
		ng = filepath.Join(r.cfg.NodeHome, ng)
	}
	_, err := r.exec.Run(ctx, p.Path, ng, args...)
	return err
}

// binPath locates a tool under home/bin, falling back to PATH lookup when
// no home is configured. winExt is appended on Windows.
func binPath(home, name, winExt string) string {
	if runtime.GOOS == "windows" {
		name += winExt
	}
	if home == "" {
		return name
	}
	return filepath.Join(home, "bin", name)
}
