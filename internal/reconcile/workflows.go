package reconcile

import (
	"context"
	"fmt"

	"github.com/mfiorini/relhand/internal/config"
	"github.com/mfiorini/relhand/internal/git"
	"github.com/mfiorini/relhand/internal/rewrite"
)

// UpdateVersions re-clones each project, rewrites its descriptors to the
// configured versions, and commits the result after confirmation.
func (r *Runner) UpdateVersions(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Raw
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if p.Branch == "" {
			return OutcomeFailed, "", fmt.Errorf("project %s has no git_branch", p.Name)
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Update versions for project %s?", p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			r.infof("Version update skipped for project %s", p.Name)
			return OutcomeSkipped, "declined", nil
		}

		if err := r.freshClone(ctx, p); err != nil {
			return OutcomeFailed, "", err
		}
		if err := r.git.Checkout(ctx, p.Path, p.Branch); err != nil {
			return OutcomeFailed, "", err
		}
		if _, err := r.rewriteDescriptors(cfg, p); err != nil {
			return OutcomeFailed, "", err
		}

		changes, err := r.insp.WorkingTreeChanges(ctx, p.Path)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if changes.Empty() {
			r.infof("No changes to commit for project %s", p.Name)
			return OutcomeNoop, "descriptors already at target versions", nil
		}
		r.infof("Changes to commit for project %s: %s", p.Name, changes)

		ok, err = r.confirm.Confirm(fmt.Sprintf("Commit changes for project %s?", p.Name), false)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			r.infof("Commit skipped for project %s, changes left in working tree", p.Name)
			return OutcomeSkipped, "commit declined", nil
		}
		if err := r.git.Commit(ctx, p.Path, fmt.Sprintf("Update project with version %s", p.Version)); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Committed version %s for project %s", p.Version, p.Name)
		return OutcomeOK, "committed version " + p.Version, nil
	})
}

// rewriteDescriptors dispatches to the project's descriptor rewriter and
// reports whether any file changed.
func (r *Runner) rewriteDescriptors(cfg *config.Config, p *config.Project) (bool, error) {
	report := rewrite.Reporter(r.infof)
	switch p.Type {
	case config.TypeMaven:
		return rewrite.RewriteMavenTree(p.Path, rewrite.MavenOptions{
			Namespace:     cfg.MavenNamespace,
			Version:       p.Version,
			ParentVersion: p.ParentVersion,
			Properties:    p.Properties,
			Dependencies:  p.Dependencies,
			ExactMatch:    cfg.DependencyMatch == config.MatchExact,
		}, report)
	case config.TypeAnt:
		return rewrite.RewriteAntProperty(p.Path, p.VersionFile, p.VersionKey, p.Version, report)
	case config.TypeAngular:
		return rewrite.RewriteAngularManifest(p.Path, p.VersionFile, p.Version, p.Dependencies, report)
	default:
		return false, fmt.Errorf("project %s has no descriptor rewriter for type %q", p.Name, p.Type)
	}
}

// CreateTags re-clones each project and converges it onto "tag exists and
// is pushed". An existing tag is pushed if needed; with the progressive
// suffix enabled, each run mints the next tag in the sequence instead.
func (r *Runner) CreateTags(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Resolved
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if p.Tag == "" {
			return OutcomeFailed, "", fmt.Errorf("project %s has no tag configured", p.Name)
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Create tag %s for project %s?", p.Tag, p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}

		if err := r.freshClone(ctx, p); err != nil {
			return OutcomeFailed, "", err
		}

		tag := p.Tag
		committed, err := r.insp.IsTagCommitted(ctx, p.Path, tag)
		if err != nil {
			return OutcomeFailed, "", err
		}
		created := false
		if committed {
			r.infof("Tag %s already exists for project %s", tag, p.Name)
		} else {
			if cfg.TagSuffix {
				tags, err := r.insp.LocalTags(ctx, p.Path, tag)
				if err != nil {
					return OutcomeFailed, "", err
				}
				tag += git.NextTagSuffix(tags, tag, cfg.TagSuffixFormat, cfg.TagSuffixPrefix)
				r.ui.VerboseLog("Progressive tag resolved to %s", tag)
			}
			if err := r.git.CreateTag(ctx, p.Path, tag); err != nil {
				return OutcomeFailed, "", err
			}
			r.successf("Tagged %s with %s", p.Name, tag)
			created = true
		}

		pushed, err := r.insp.IsTagPushed(ctx, p.Path, cfg.RemoteName, tag)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if pushed {
			r.infof("The tag %s for project %s is already pushed", tag, p.Name)
			if created {
				return OutcomeOK, "created " + tag, nil
			}
			return OutcomeNoop, "tag already created and pushed", nil
		}
		if err := r.git.PushTag(ctx, p.Path, cfg.RemoteName, tag); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Pushed tag %s for project %s", tag, p.Name)
		return OutcomeOK, "pushed " + tag, nil
	})
}

// DeleteTags removes each project's configured tag from the local clone.
func (r *Runner) DeleteTags(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Resolved
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if p.Tag == "" {
			return OutcomeFailed, "", fmt.Errorf("project %s has no tag configured", p.Name)
		}
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Delete local tag %s for project %s?", p.Tag, p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}

		committed, err := r.insp.IsTagCommitted(ctx, p.Path, p.Tag)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !committed {
			r.infof("Tag %s does not exist locally for project %s", p.Tag, p.Name)
			return OutcomeNoop, "tag absent", nil
		}
		if err := r.git.DeleteTag(ctx, p.Path, p.Tag); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Deleted local tag %s for project %s", p.Tag, p.Name)
		return OutcomeOK, "deleted " + p.Tag, nil
	})
}

// DeleteRemoteTags removes each project's configured tag from the remote.
func (r *Runner) DeleteRemoteTags(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Resolved
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if p.Tag == "" {
			return OutcomeFailed, "", fmt.Errorf("project %s has no tag configured", p.Name)
		}
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Delete tag %s from %s for project %s?", p.Tag, cfg.RemoteName, p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}

		pushed, err := r.insp.IsTagPushed(ctx, p.Path, cfg.RemoteName, p.Tag)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !pushed {
			r.infof("Tag %s is not on %s for project %s", p.Tag, cfg.RemoteName, p.Name)
			return OutcomeNoop, "tag not on remote", nil
		}
		if err := r.git.DeleteRemoteTag(ctx, p.Path, cfg.RemoteName, p.Tag); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Deleted tag %s from %s for project %s", p.Tag, cfg.RemoteName, p.Name)
		return OutcomeOK, "deleted " + p.Tag + " from remote", nil
	})
}

// PushTags pushes each project's configured tag when the remote lacks it.
func (r *Runner) PushTags(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Resolved
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if p.Tag == "" {
			return OutcomeFailed, "", fmt.Errorf("project %s has no tag configured", p.Name)
		}
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Push tag %s for project %s?", p.Tag, p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}

		pushed, err := r.insp.IsTagPushed(ctx, p.Path, cfg.RemoteName, p.Tag)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if pushed {
			r.infof("The tag %s for project %s is already pushed", p.Tag, p.Name)
			return OutcomeNoop, "tag already pushed", nil
		}
		committed, err := r.insp.IsTagCommitted(ctx, p.Path, p.Tag)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !committed {
			return OutcomeFailed, "", fmt.Errorf("tag %s does not exist locally for project %s", p.Tag, p.Name)
		}
		if err := r.git.PushTag(ctx, p.Path, cfg.RemoteName, p.Tag); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Pushed tag %s for project %s", p.Tag, p.Name)
		return OutcomeOK, "pushed " + p.Tag, nil
	})
}

// Commit records working tree changes in each project, asking first.
func (r *Runner) Commit(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Raw
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		changes, err := r.insp.WorkingTreeChanges(ctx, p.Path)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if changes.Empty() {
			r.infof("No changes to commit for project %s", p.Name)
			return OutcomeNoop, "working tree clean", nil
		}
		r.infof("Changes to commit for project %s: %s", p.Name, changes)

		ok, err := r.confirm.Confirm(fmt.Sprintf("Commit changes for project %s?", p.Name), false)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			r.infof("Commit skipped for project %s", p.Name)
			return OutcomeSkipped, "declined", nil
		}
		if err := r.git.Commit(ctx, p.Path, fmt.Sprintf("Update project with version %s", p.Version)); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Committed version %s for project %s", p.Version, p.Name)
		return OutcomeOK, "committed version " + p.Version, nil
	})
}

// RemoveLastCommit drops each project's last commit, refusing when that
// commit is already on the remote.
func (r *Runner) RemoveLastCommit(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Raw
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Remove the last commit for project %s?", p.Name), false)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}

		pushed, err := r.insp.IsLastCommitPushed(ctx, p.Path)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if pushed {
			r.warnf("Reset aborted because the last commit for project %s was already pushed", p.Name)
			return OutcomeSkipped, "last commit already pushed", nil
		}
		if err := r.git.Reset(ctx, p.Path, string(p.ResetType), "HEAD~1"); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Removed last commit for project %s with a %s reset", p.Name, p.ResetType)
		return OutcomeOK, fmt.Sprintf("%s reset to HEAD~1", p.ResetType), nil
	})
}

// Reset resets each project's working tree with its configured mode.
func (r *Runner) Reset(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Raw
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Reset working tree for project %s (%s)?", p.Name, p.ResetType), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}
		if err := r.git.Reset(ctx, p.Path, string(p.ResetType), ""); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Reset project %s (%s)", p.Name, p.ResetType)
		return OutcomeOK, fmt.Sprintf("%s reset", p.ResetType), nil
	})
}

// CheckoutAndPull puts each project on its configured branch and pulls.
func (r *Runner) CheckoutAndPull(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Raw
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if p.Branch == "" {
			return OutcomeFailed, "", fmt.Errorf("project %s has no git_branch", p.Name)
		}
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Check out %s and pull for project %s?", p.Branch, p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}
		if err := r.git.Checkout(ctx, p.Path, p.Branch); err != nil {
			return OutcomeFailed, "", err
		}
		if err := r.git.Pull(ctx, p.Path); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Project %s checked out on %s and pulled", p.Name, p.Branch)
		return OutcomeOK, "on " + p.Branch, nil
	})
}

// CompileCheck builds each project with its configured tool.
func (r *Runner) CompileCheck(ctx context.Context, only string) *Summary {
	cfg := r.loaded.Raw
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		ok, err := r.confirm.Confirm(fmt.Sprintf("Compile project %s?", p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}
		r.infof("Compiling project %s, this can take a while", p.Name)
		if err := r.builder.Compile(ctx, p); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Project %s compiled successfully", p.Name)
		return OutcomeOK, "compiled", nil
	})
}

// PushChanges pushes committed work after a fetch shows the project is
// ahead of its upstream. With compile set, a failing build blocks the push.
func (r *Runner) PushChanges(ctx context.Context, only string, compile bool) *Summary {
	cfg := r.loaded.Resolved
	return r.forEach(ctx, cfg, only, func(ctx context.Context, p *config.Project) (Outcome, string, error) {
		if err := r.requireCheckout(p); err != nil {
			return OutcomeFailed, "", err
		}
		if err := r.git.Fetch(ctx, p.Path); err != nil {
			return OutcomeFailed, "", err
		}
		ahead, err := r.insp.AheadCount(ctx, p.Path)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if ahead == 0 {
			r.infof("No unpushed commits for project %s", p.Name)
			return OutcomeNoop, "nothing to push", nil
		}
		r.infof("Project %s is %d commit(s) ahead of its upstream", p.Name, ahead)

		ok, err := r.confirm.Confirm(fmt.Sprintf("Push committed changes for project %s?", p.Name), true)
		if err != nil {
			return OutcomeFailed, "", err
		}
		if !ok {
			return OutcomeSkipped, "declined", nil
		}
		if compile {
			r.infof("Compiling project %s before push", p.Name)
			if err := r.builder.Compile(ctx, p); err != nil {
				return OutcomeFailed, "", fmt.Errorf("compile check failed, not pushing: %w", err)
			}
		}
		if err := r.git.PushCommits(ctx, p.Path); err != nil {
			return OutcomeFailed, "", err
		}
		r.successf("Pushed %d commit(s) for project %s", ahead, p.Name)
		return OutcomeOK, fmt.Sprintf("pushed %d commit(s)", ahead), nil
	})
}
