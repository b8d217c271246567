package gitrepo

import (
	"context"
	"os/exec"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/proc"
)

// Runner runs git commands against one working directory.
type Runner struct {
	gitPath string

	// Dir is passed to git with -C.
	Dir string
}

// NewRunner returns a Runner for dir. git must be on PATH.
func NewRunner(dir string) (*Runner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrGitExec, "no 'git' program on path")
	}
	return &Runner{gitPath: p, Dir: dir}, nil
}

// Run executes git -C Dir args... and returns stdout with surrounding
// whitespace removed.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", r.Dir}, args...)
	res, err := proc.Run(ctx, r.gitPath, full...)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		stderr := string(res.Stderr)
		return "", errors.Wrap(&ExecError{
			Kind:     determineErrorKind(stderr),
			Args:     args,
			ExitCode: res.ExitCode,
			Stdout:   string(res.Stdout),
			Stderr:   stderr,
		}, errors.ErrGitExec, "git command failed").WithDetail("dir", r.Dir)
	}
	return strings.TrimSpace(string(res.Stdout)), nil
}

// Lines runs a command and returns its non-empty, trimmed output lines.
func (r *Runner) Lines(ctx context.Context, args ...string) ([]string, error) {
	out, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ErrorKindOf reports the ExecError kind inside err, or Unknown.
func ErrorKindOf(err error) ErrorKind {
	var execErr *ExecError
	if errors.As(err, &execErr) {
		return execErr.Kind
	}
	return Unknown
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
