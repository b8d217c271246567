package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	// DefaultBranch is the branch a repository is reconciled onto when
	// Options.WorkingBranch is empty.
	DefaultBranch = "main"

	// DefaultBaseURL is where remotes given as owner/name are cloned from.
	DefaultBaseURL = "https://github.com"
)

// Options describes the repository to open.
type Options struct {
	// Path is the local working tree.
	Path string

	// WorkingBranch is checked out (and created if needed). Defaults to main.
	WorkingBranch string

	// Remote is an owner/name slug. When set, a missing working tree is
	// cloned and the working branch is rebased onto origin.
	Remote string

	// Create runs git init when Path is not a repository and Remote is empty.
	Create bool

	// BaseURL overrides DefaultBaseURL.
	BaseURL string
}

// Repo is a local git working tree reconciled onto a working branch.
type Repo struct {
	Path          string
	WorkingBranch string
	Remote        string

	baseURL string
	git     *Runner
	logger  zerolog.Logger
}

// Open prepares the working tree described by opts:
//
//  1. read the current branch; if that fails, clone Remote into the parent
//     directory, or git init when Create is set, or give up;
//  2. stash uncommitted changes;
//  3. check out the working branch, creating it when it does not exist
//     locally;
//  4. pull --rebase from origin when a Remote is set.
func Open(ctx context.Context, opts Options) (*Repo, error) {
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.WorkingBranch == "" {
		opts.WorkingBranch = DefaultBranch
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	runner, err := NewRunner(opts.Path)
	if err != nil {
		return nil, err
	}

	r := &Repo{
		Path:          opts.Path,
		WorkingBranch: opts.WorkingBranch,
		Remote:        opts.Remote,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		git:           runner,
		logger:        logging.WithRepo("gitrepo", opts.Path),
	}
	if err := r.reconcile(ctx, opts.Create); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repo) reconcile(ctx context.Context, create bool) error {
	branch, err := r.Branch(ctx)
	if err != nil {
		switch {
		case r.Remote != "":
			if err := r.Clone(ctx); err != nil {
				return err
			}
		case create:
			if err := os.MkdirAll(r.Path, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", r.Path)
			}
			if _, err := r.Git(ctx, "init"); err != nil {
				return err
			}
		default:
			return errors.Wrapf(err, errors.ErrGitRepo, "%s is not a git repository", r.Path)
		}
		if branch, err = r.Branch(ctx); err != nil {
			return err
		}
	}

	dirty, err := r.HasChanges(ctx)
	if err != nil {
		return err
	}
	if dirty {
		r.logger.Info().Msg("Stashing uncommitted changes")
		if _, err := r.Git(ctx, "stash"); err != nil {
			return err
		}
	}

	if branch != r.WorkingBranch {
		branch = r.WorkingBranch
		local, err := r.LocalBranches(ctx)
		if err != nil {
			return err
		}
		if err := r.Checkout(ctx, branch, !slices.Contains(local, branch)); err != nil {
			return err
		}
	}

	if r.Remote != "" {
		if _, err := r.Git(ctx, "pull", "--rebase", "origin", branch); err != nil {
			return err
		}
	}
	return nil
}

// Git runs an arbitrary git subcommand in the working tree.
func (r *Repo) Git(ctx context.Context, args ...string) (string, error) {
	return r.git.Run(ctx, args...)
}

// CloneURL is the URL Remote is cloned from.
func (r *Repo) CloneURL() string {
	return fmt.Sprintf("%s/%s.git", r.baseURL, r.Remote)
}

// Clone clones Remote into Path, creating the parent directory.
func (r *Repo) Clone(ctx context.Context) error {
	parent := filepath.Dir(r.Path)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", parent)
	}
	runner, err := NewRunner(parent)
	if err != nil {
		return err
	}
	r.logger.Info().Str("url", r.CloneURL()).Msg("Cloning repository")
	_, err = runner.Run(ctx, "clone", r.CloneURL(), filepath.Base(r.Path))
	return err
}

// Branch returns the currently checked out branch.
func (r *Repo) Branch(ctx context.Context) (string, error) {
	return r.Git(ctx, "branch", "--show-current")
}

// LocalBranches lists local branch names.
func (r *Repo) LocalBranches(ctx context.Context) ([]string, error) {
	lines, err := r.git.Lines(ctx, "branch", "-l")
	if err != nil {
		return nil, err
	}
	branches := make([]string, 0, len(lines))
	for _, line := range lines {
		branches = append(branches, strings.TrimSpace(strings.TrimLeft(line, "*")))
	}
	return branches, nil
}

// RemoteBranches lists remote-tracking branches such as origin/main.
func (r *Repo) RemoteBranches(ctx context.Context) ([]string, error) {
	return r.git.Lines(ctx, "branch", "-rl")
}

// Tags lists local tags.
func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	return r.git.Lines(ctx, "tag", "-l")
}

// HasChanges reports whether the working tree has anything to commit.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.Git(ctx, "status", "-s")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Checkout switches to branch, creating it first when create is set.
func (r *Repo) Checkout(ctx context.Context, branch string, create bool) error {
	var err error
	if create {
		_, err = r.Git(ctx, "checkout", "-b", branch)
	} else {
		_, err = r.Git(ctx, "checkout", branch)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrGitBranch, "cannot check out %s", branch)
	}
	r.WorkingBranch = branch
	return nil
}

// CommitAll stages everything and commits with msg. Nothing happens on a
// clean tree; the return value reports whether a commit was made.
func (r *Repo) CommitAll(ctx context.Context, msg string) (bool, error) {
	dirty, err := r.HasChanges(ctx)
	if err != nil || !dirty {
		return false, err
	}
	if _, err := r.Git(ctx, "add", "."); err != nil {
		return false, err
	}
	if _, err := r.Git(ctx, "commit", "-m", msg); err != nil {
		return false, err
	}
	r.logger.Info().Str("commit_message", msg).Msg("Committed changes")
	return true, nil
}

// PushChanges pushes the working branch when it differs from origin.
// The return value reports whether a push happened.
func (r *Repo) PushChanges(ctx context.Context) (bool, error) {
	diff, err := r.Git(ctx, "diff", "origin", r.WorkingBranch)
	if err != nil || diff == "" {
		return false, err
	}
	if _, err := r.Git(ctx, "push", "origin", r.WorkingBranch); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteRemoteBranch removes branch from remote.
func (r *Repo) DeleteRemoteBranch(ctx context.Context, remote, branch string) error {
	_, err := r.Git(ctx, "push", remote, "--delete", branch)
	return err
}

// DeleteRemoteTag removes tag from origin.
func (r *Repo) DeleteRemoteTag(ctx context.Context, tag string) error {
	_, err := r.Git(ctx, "push", "origin", "--delete", tag)
	return err
}
