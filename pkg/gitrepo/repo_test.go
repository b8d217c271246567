// pkg/gitrepo/repo_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: git binary, temp directories
// PURPOSE: Test repository reconciliation, queries, and mutations against real git

package gitrepo_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/gitrepo"
	"github.com/openstax/bookops/pkg/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	testutil.RequireGit(t)
	testutil.IsolateGitConfig(t)
}

func TestOpen_ClonesMissingRepository(t *testing.T) {
	setup(t)
	remote := testutil.NewRemote(t, "openstax/osbooks-physics", map[string]string{
		"README.md": "physics\n",
	})
	path := filepath.Join(t.TempDir(), "books", "osbooks-physics")

	repo, err := gitrepo.Open(context.Background(), gitrepo.Options{
		Path:    path,
		Remote:  remote.Slug,
		BaseURL: remote.BaseURL,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(path, "README.md"))
	branch, err := repo.Branch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
	assert.Equal(t, filepath.Join(remote.BaseURL, "openstax/osbooks-physics.git"), repo.CloneURL())
}

func TestOpen_MissingRepositoryWithoutRemoteFails(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "nothing-here")

	_, err := gitrepo.Open(context.Background(), gitrepo.Options{Path: path})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGitRepo))
	assert.Equal(t, gitrepo.NotRepository, gitrepo.ErrorKindOf(err))
}

func TestOpen_CreateInitializesRepository(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "fresh")

	repo, err := gitrepo.Open(context.Background(), gitrepo.Options{Path: path, Create: true})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(path, ".git"))
	branch, err := repo.Branch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestOpen_StashesDirtyTreeAndSwitchesBranch(t *testing.T) {
	setup(t)
	remote := testutil.NewRemote(t, "openstax/osbooks-biology", nil)
	path := filepath.Join(t.TempDir(), "osbooks-biology")
	ctx := context.Background()

	_, err := gitrepo.Open(ctx, gitrepo.Options{Path: path, Remote: remote.Slug, BaseURL: remote.BaseURL})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(path, "README.md"), []byte("local edit\n"), 0644))

	repo, err := gitrepo.Open(ctx, gitrepo.Options{
		Path:          path,
		WorkingBranch: "feature",
		BaseURL:       remote.BaseURL,
	})
	require.NoError(t, err)

	branch, err := repo.Branch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature", branch)
	assert.Equal(t, "feature", repo.WorkingBranch)

	dirty, err := repo.HasChanges(ctx)
	require.NoError(t, err)
	assert.False(t, dirty, "local edit should be stashed")
	assert.NotEmpty(t, testutil.RunGit(t, path, "stash", "list"))

	local, err := repo.LocalBranches(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"main", "feature"}, local)
}

func TestOpen_ChecksOutExistingLocalBranch(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "book")
	ctx := context.Background()
	repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: path, Create: true})
	require.NoError(t, err)
	testutil.WriteFiles(t, path, map[string]string{"a.txt": "a"})
	_, err = repo.CommitAll(ctx, "first")
	require.NoError(t, err)
	testutil.RunGit(t, path, "branch", "existing")

	repo, err = gitrepo.Open(ctx, gitrepo.Options{Path: path, WorkingBranch: "existing"})
	require.NoError(t, err)
	branch, err := repo.Branch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "existing", branch)
}

func TestRemoteBranchesAndTags(t *testing.T) {
	setup(t)
	remote := testutil.NewRemote(t, "openstax/osbooks-chemistry", nil)
	remote.AddBranch(t, "2e")
	remote.AddBranch(t, "stale-work")
	remote.AddTag(t, "1.0.0")
	ctx := context.Background()

	repo, err := gitrepo.Open(ctx, gitrepo.Options{
		Path:    filepath.Join(t.TempDir(), "chem"),
		Remote:  remote.Slug,
		BaseURL: remote.BaseURL,
	})
	require.NoError(t, err)

	branches, err := repo.RemoteBranches(ctx)
	require.NoError(t, err)
	assert.Contains(t, branches, "origin/main")
	assert.Contains(t, branches, "origin/2e")
	assert.Contains(t, branches, "origin/stale-work")

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0"}, tags)
}

func TestCommitAll(t *testing.T) {
	setup(t)
	path := t.TempDir()
	ctx := context.Background()
	repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: path, Create: true})
	require.NoError(t, err)

	committed, err := repo.CommitAll(ctx, "nothing to do")
	require.NoError(t, err)
	assert.False(t, committed, "clean tree should not commit")

	testutil.WriteFiles(t, path, map[string]string{"LICENSE": "Creative Commons\n"})
	committed, err = repo.CommitAll(ctx, "Update LICENSE")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, "Update LICENSE", testutil.RunGit(t, path, "log", "-1", "--format=%s"))
}

func TestCommitAll_LogRecord(t *testing.T) {
	setup(t)
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	path := t.TempDir()
	ctx := context.Background()
	repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: path, Create: true})
	require.NoError(t, err)
	testutil.WriteFiles(t, path, map[string]string{"README.md": "# Physics\n"})
	_, err = repo.CommitAll(ctx, "Add README and repository settings")
	require.NoError(t, err)

	var record string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "Committed changes") {
			record = line
		}
	}
	require.NotEmpty(t, record)
	assert.Equal(t, 1, strings.Count(record, `"message":`), record)
	assert.Contains(t, record, `"commit_message":"Add README and repository settings"`)
}

func TestPushChanges(t *testing.T) {
	setup(t)
	remote := testutil.NewRemote(t, "openstax/osbooks-history", nil)
	path := filepath.Join(t.TempDir(), "history")
	ctx := context.Background()
	repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: path, Remote: remote.Slug, BaseURL: remote.BaseURL})
	require.NoError(t, err)

	pushed, err := repo.PushChanges(ctx)
	require.NoError(t, err)
	assert.False(t, pushed, "nothing differs from origin")

	testutil.WriteFiles(t, path, map[string]string{"README.md": "new readme\n"})
	_, err = repo.CommitAll(ctx, "Add README and repository settings")
	require.NoError(t, err)

	pushed, err = repo.PushChanges(ctx)
	require.NoError(t, err)
	assert.True(t, pushed)
	assert.Equal(t, "Add README and repository settings", remote.Log(t)[0])
}

func TestDeleteRemoteBranchAndTag(t *testing.T) {
	setup(t)
	remote := testutil.NewRemote(t, "openstax/osbooks-math", nil)
	remote.AddBranch(t, "old")
	remote.AddTag(t, "v1")
	ctx := context.Background()
	repo, err := gitrepo.Open(ctx, gitrepo.Options{
		Path:    filepath.Join(t.TempDir(), "math"),
		Remote:  remote.Slug,
		BaseURL: remote.BaseURL,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteRemoteBranch(ctx, "origin", "old"))
	require.NoError(t, repo.DeleteRemoteTag(ctx, "v1"))

	assert.Equal(t, []string{"main"}, remote.Branches(t))
	assert.Empty(t, remote.Tags(t))
}

func TestCheckout_UnknownBranch(t *testing.T) {
	setup(t)
	path := t.TempDir()
	ctx := context.Background()
	repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: path, Create: true})
	require.NoError(t, err)

	err = repo.Checkout(ctx, "does-not-exist", false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrGitBranch))
	assert.Equal(t, gitrepo.UnknownReference, gitrepo.ErrorKindOf(err))
	assert.Equal(t, "main", repo.WorkingBranch)
}
