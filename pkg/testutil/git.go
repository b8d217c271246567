package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// IsolateGitConfig points git at an empty global config inside a temp
// directory and sets a commit identity through the environment. It returns
// the global config path.
func IsolateGitConfig(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	global := filepath.Join(home, ".gitconfig")
	if err := os.WriteFile(global, nil, 0644); err != nil {
		t.Fatalf("write gitconfig: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("GIT_CONFIG_GLOBAL", global)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "bookops-test")
	t.Setenv("GIT_AUTHOR_EMAIL", "bookops-test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "bookops-test")
	t.Setenv("GIT_COMMITTER_EMAIL", "bookops-test@example.com")
	return global
}

// RunGit runs git in dir and returns trimmed stdout, failing the test on error.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %v failed: %v\nstdout:\n%s\nstderr:\n%s", args, err, stdout.String(), stderr.String())
	}
	return strings.TrimSpace(stdout.String())
}

// WriteFiles writes files (relative path -> content) under dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

// Remote is a bare repository standing in for a GitHub remote.
type Remote struct {
	// BaseURL is the directory that plays the role of https://github.com.
	BaseURL string
	// Slug is owner/name.
	Slug string
	// Dir is the bare repository.
	Dir string

	seed string
}

// NewRemote creates BaseURL/<slug>.git with a main branch holding files.
func NewRemote(t *testing.T, slug string, files map[string]string) *Remote {
	t.Helper()
	return NewRemoteAt(t, t.TempDir(), slug, files)
}

// NewRemoteAt is NewRemote with a given BaseURL, so that several remotes
// can share one.
func NewRemoteAt(t *testing.T, base, slug string, files map[string]string) *Remote {
	t.Helper()

	bare := filepath.Join(base, slug+".git")
	if err := os.MkdirAll(bare, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", bare, err)
	}
	RunGit(t, bare, "init", "--bare", "--initial-branch=main")

	seed := t.TempDir()
	RunGit(t, seed, "init", "--initial-branch=main")
	if len(files) == 0 {
		files = map[string]string{"README.md": "seed\n"}
	}
	WriteFiles(t, seed, files)
	RunGit(t, seed, "add", ".")
	RunGit(t, seed, "commit", "-m", "init")
	RunGit(t, seed, "remote", "add", "origin", bare)
	RunGit(t, seed, "push", "origin", "main")

	return &Remote{BaseURL: base, Slug: slug, Dir: bare, seed: seed}
}

// AddBranch pushes a new branch (forked from main) to the remote.
func (r *Remote) AddBranch(t *testing.T, name string) {
	t.Helper()
	RunGit(t, r.seed, "branch", name, "main")
	RunGit(t, r.seed, "push", "origin", name)
}

// AddTag pushes a lightweight tag on main to the remote.
func (r *Remote) AddTag(t *testing.T, name string) {
	t.Helper()
	RunGit(t, r.seed, "tag", name, "main")
	RunGit(t, r.seed, "push", "origin", name)
}

// Commit adds files to main on the remote.
func (r *Remote) Commit(t *testing.T, msg string, files map[string]string) {
	t.Helper()
	RunGit(t, r.seed, "checkout", "main")
	WriteFiles(t, r.seed, files)
	RunGit(t, r.seed, "add", ".")
	RunGit(t, r.seed, "commit", "-m", msg)
	RunGit(t, r.seed, "push", "origin", "main")
}

// Branches lists branch names on the remote.
func (r *Remote) Branches(t *testing.T) []string {
	t.Helper()
	out := RunGit(t, r.Dir, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	return splitNonEmpty(out)
}

// Tags lists tag names on the remote.
func (r *Remote) Tags(t *testing.T) []string {
	t.Helper()
	return splitNonEmpty(RunGit(t, r.Dir, "tag", "-l"))
}

// Log returns the one-line subjects on the remote's main branch, newest first.
func (r *Remote) Log(t *testing.T) []string {
	t.Helper()
	return splitNonEmpty(RunGit(t, r.Dir, "log", "--format=%s", "main"))
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
