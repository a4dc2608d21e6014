// Package git shells out to the git binary to inspect and mutate the
// repositories under release management.
package git

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Changes classifies the working tree output of `git status --porcelain`.
type Changes struct {
	Modified []string
	Added    []string
	Deleted  []string
}

func (c Changes) Empty() bool {
	return len(c.Modified)+len(c.Added)+len(c.Deleted) == 0
}

func (c Changes) String() string {
	return fmt.Sprintf("modified=%v added=%v deleted=%v", c.Modified, c.Added, c.Deleted)
}

// Inspector answers read-only questions about local repositories and their
// remotes. All methods take a path parameter since relhand operates on
// multiple repos.
type Inspector interface {
	CurrentCommit(ctx context.Context, path string) (string, error)
	CurrentBranch(ctx context.Context, path string) (string, error)
	LastCommitDate(ctx context.Context, path string) (time.Time, error)
	LastCommitMessage(ctx context.Context, path string) (string, error)
	IsTagCommitted(ctx context.Context, path, tag string) (bool, error)
	IsTagPushed(ctx context.Context, path, remote, tag string) (bool, error)
	IsLastCommitPushed(ctx context.Context, path string) (bool, error)
	AheadCount(ctx context.Context, path string) (int, error)
	WorkingTreeChanges(ctx context.Context, path string) (Changes, error)
	LocalTags(ctx context.Context, path, prefix string) ([]string, error)
}

// Executor performs the state-changing git operations.
type Executor interface {
	Clone(ctx context.Context, url, dir string) error
	Checkout(ctx context.Context, path, branch string) error
	Pull(ctx context.Context, path string) error
	Fetch(ctx context.Context, path string) error
	Commit(ctx context.Context, path, message string) error
	CreateTag(ctx context.Context, path, tag string) error
	DeleteTag(ctx context.Context, path, tag string) error
	DeleteRemoteTag(ctx context.Context, path, remote, tag string) error
	PushCommits(ctx context.Context, path string) error
	PushTag(ctx context.Context, path, remote, tag string) error
	Reset(ctx context.Context, path, mode, target string) error
}

// CLI implements Inspector and Executor using real git commands.
type CLI struct {
	// Timeout bounds each git invocation; zero leaves it unbounded.
	Timeout time.Duration
}

func NewCLI(timeout time.Duration) *CLI {
	return &CLI{Timeout: timeout}
}

func (c *CLI) run(ctx context.Context, path string, args ...string) (string, error) {
	return c.exec(ctx, append([]string{"-C", path}, args...), args)
}

func (c *CLI) exec(ctx context.Context, fullArgs, shown []string) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	out, err := exec.CommandContext(ctx, "git", fullArgs...).Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s: timed out after %s", strings.Join(shown, " "), c.Timeout)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git %s: %s", strings.Join(shown, " "), strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(shown, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *CLI) CurrentCommit(ctx context.Context, path string) (string, error) {
	return c.run(ctx, path, "rev-parse", "HEAD")
}

func (c *CLI) CurrentBranch(ctx context.Context, path string) (string, error) {
	return c.run(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
}

func (c *CLI) LastCommitDate(ctx context.Context, path string) (time.Time, error) {
	out, err := c.run(ctx, path, "log", "-1", "--format=%aI")
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, out)
}

func (c *CLI) LastCommitMessage(ctx context.Context, path string) (string, error) {
	return c.run(ctx, path, "log", "-1", "--format=%s")
}

// IsTagCommitted reports whether tag exists in the local repository. A
// failing rev-parse reads as absent.
func (c *CLI) IsTagCommitted(ctx context.Context, path, tag string) (bool, error) {
	if _, err := c.run(ctx, path, "rev-parse", "--verify", "--quiet", "refs/tags/"+tag); err != nil {
		return false, nil
	}
	return true, nil
}

// IsTagPushed reports whether the remote advertises tag. Only the exact ref
// refs/tags/<tag>, or its peeled form, counts; a tag whose name merely
// contains another never shadows it.
func (c *CLI) IsTagPushed(ctx context.Context, path, remote, tag string) (bool, error) {
	out, err := c.run(ctx, path, "ls-remote", "--tags", remote)
	if err != nil {
		return false, err
	}
	want := "refs/tags/" + tag
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if fields[1] == want || fields[1] == want+"^{}" {
			return true, nil
		}
	}
	return false, nil
}

// IsLastCommitPushed reports whether HEAD is contained in any remote
// tracking branch. Repositories without commits or remotes read as not
// pushed.
func (c *CLI) IsLastCommitPushed(ctx context.Context, path string) (bool, error) {
	head, err := c.run(ctx, path, "rev-parse", "HEAD")
	if err != nil {
		return false, nil
	}
	out, err := c.run(ctx, path, "branch", "-r", "--contains", head)
	if err != nil {
		return false, nil
	}
	return out != "", nil
}

// AheadCount counts commits on HEAD that its upstream lacks. A branch with
// no upstream counts zero.
func (c *CLI) AheadCount(ctx context.Context, path string) (int, error) {
	out, err := c.run(ctx, path, "rev-list", "--count", "@{upstream}..HEAD")
	if err != nil {
		return 0, nil
	}
	return strconv.Atoi(out)
}

func (c *CLI) WorkingTreeChanges(ctx context.Context, path string) (Changes, error) {
	out, err := c.run(ctx, path, "status", "--porcelain")
	if err != nil {
		return Changes{}, err
	}
	return ParseStatusPorcelain(out), nil
}

// LocalTags lists tags matching prefix, highest version first.
func (c *CLI) LocalTags(ctx context.Context, path, prefix string) ([]string, error) {
	args := []string{"tag", "--list", "--sort=-v:refname"}
	if prefix != "" {
		args = append(args, prefix+"*")
	}
	out, err := c.run(ctx, path, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Clone removes dir if it exists and clones url into it, so every clone
// starts from the remote's state. Only HTTPS remotes are accepted.
func (c *CLI) Clone(ctx context.Context, url, dir string) error {
	if !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("remote URL for %s must use https, got %q", dir, url)
	}
	if _, err := os.Stat(dir); err == nil {
		if err := forceRemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return err
	}
	_, err := c.exec(ctx, []string{"clone", url, dir}, []string{"clone", url, dir})
	return err
}

// forceRemoveAll deletes a tree, retrying once after loosening permissions.
// Read-only pack files under .git/objects defeat a plain RemoveAll on some
// platforms.
func forceRemoveAll(dir string) error {
	if err := os.RemoveAll(dir); err == nil {
		return nil
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		_ = os.Chmod(path, 0o700)
		return nil
	})
	return os.RemoveAll(dir)
}

func (c *CLI) Checkout(ctx context.Context, path, branch string) error {
	_, err := c.run(ctx, path, "checkout", branch)
	return err
}

func (c *CLI) Pull(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, "pull")
	return err
}

func (c *CLI) Fetch(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, "fetch")
	return err
}

// Commit records all tracked changes in a single commit. Untracked files
// are left alone, matching what WorkingTreeChanges reports.
func (c *CLI) Commit(ctx context.Context, path, message string) error {
	_, err := c.run(ctx, path, "commit", "-a", "-m", message)
	return err
}

func (c *CLI) CreateTag(ctx context.Context, path, tag string) error {
	_, err := c.run(ctx, path, "tag", tag)
	return err
}

func (c *CLI) DeleteTag(ctx context.Context, path, tag string) error {
	_, err := c.run(ctx, path, "tag", "-d", tag)
	return err
}

func (c *CLI) DeleteRemoteTag(ctx context.Context, path, remote, tag string) error {
	_, err := c.run(ctx, path, "push", remote, ":refs/tags/"+tag)
	return err
}

func (c *CLI) PushCommits(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, "push")
	return err
}

// PushTag pushes with the tag keyword so the refspec stays unambiguous
// when a branch carries the same name.
func (c *CLI) PushTag(ctx context.Context, path, remote, tag string) error {
	_, err := c.run(ctx, path, "push", remote, "tag", tag)
	return err
}

// Reset runs git reset with the given mode. Target HEAD~1 drops the last
// commit; an empty target resets against HEAD.
func (c *CLI) Reset(ctx context.Context, path, mode, target string) error {
	switch mode {
	case "soft", "mixed", "hard":
	default:
		return fmt.Errorf("reset mode %q is not soft, mixed, or hard", mode)
	}
	args := []string{"reset", "--" + mode}
	if target != "" {
		args = append(args, target)
	}
	_, err := c.run(ctx, path, args...)
	return err
}
