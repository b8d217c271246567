// Package cleanup prunes remote branches and tags from book repositories.
//
// Every remote branch except the default branch and edition branches
// (origin/1e, origin/2e, ...) is deleted, along with every tag.
package cleanup

import (
	"context"
	"regexp"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
)

// DefaultBranch is the remote branch that must exist and is always kept.
const DefaultBranch = "origin/main"

var editionBranch = regexp.MustCompile(`^\s*origin/[0-9]+e`)

// Repo is the part of gitrepo.Repo cleanup needs.
type Repo interface {
	RemoteBranches(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	DeleteRemoteBranch(ctx context.Context, remote, branch string) error
	DeleteRemoteTag(ctx context.Context, tag string) error
}

// BranchesToDelete filters remote branch specs down to the ones to remove.
// DefaultBranch has to be among them; it is an error otherwise.
func BranchesToDelete(remoteBranches []string) ([]string, error) {
	var out []string
	found := false
	for _, spec := range remoteBranches {
		spec = strings.TrimSpace(spec)
		if spec == "" || strings.Contains(spec, "HEAD") || editionBranch.MatchString(spec) {
			continue
		}
		if spec == DefaultBranch {
			found = true
			continue
		}
		out = append(out, spec)
	}
	if !found {
		return nil, errors.Newf(errors.ErrGitBranch, "%s not found among remote branches", DefaultBranch).
			WithDetail("branches", remoteBranches)
	}
	return out, nil
}

// TagsToDelete returns the tags to remove, which is all of them.
func TagsToDelete(tags []string) []string {
	return tags
}

// PlannedBranches reads remote branches from repo and filters them.
func PlannedBranches(ctx context.Context, repo Repo) ([]string, error) {
	remote, err := repo.RemoteBranches(ctx)
	if err != nil {
		return nil, err
	}
	return BranchesToDelete(remote)
}

// PlannedTags reads tags from repo and filters them.
func PlannedTags(ctx context.Context, repo Repo) ([]string, error) {
	tags, err := repo.Tags(ctx)
	if err != nil {
		return nil, err
	}
	return TagsToDelete(tags), nil
}

// Branches deletes every planned branch. Specs are split on the first
// slash into remote and branch name.
func Branches(ctx context.Context, repo Repo) ([]string, error) {
	logger := logging.GetLogger("cleanup")
	specs, err := PlannedBranches(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		remote, branch, ok := strings.Cut(spec, "/")
		if !ok {
			return nil, errors.Newf(errors.ErrInvalidInput, "malformed remote branch %q", spec)
		}
		logger.Info().Str("remote", remote).Str("branch", branch).Msg("Deleting remote branch")
		if err := repo.DeleteRemoteBranch(ctx, remote, branch); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// Tags deletes every tag from origin.
func Tags(ctx context.Context, repo Repo) ([]string, error) {
	logger := logging.GetLogger("cleanup")
	tags, err := PlannedTags(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		logger.Info().Str("tag", tag).Msg("Deleting remote tag")
		if err := repo.DeleteRemoteTag(ctx, tag); err != nil {
			return nil, err
		}
	}
	return tags, nil
}
