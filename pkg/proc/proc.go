package proc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
)

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Options tunes a single process invocation.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the current environment.
	Env []string
}

// Run starts name with args and waits for it. Only a failure to start the
// process is returned as an error.
func Run(ctx context.Context, name string, args ...string) (Result, error) {
	return RunWithOptions(ctx, Options{}, name, args...)
}

// RunWithOptions is Run with a working directory and extra environment.
func RunWithOptions(ctx context.Context, opts Options, name string, args ...string) (Result, error) {
	logger := logging.GetLogger("proc")
	logging.LogCommand(logger, opts.Dir, CommandLine(name, args))

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return res, errors.Wrapf(err, errors.ErrProcessStart, "could not start %s", name)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	logger.Debug().
		Str("command", name).
		Int("exit_code", res.ExitCode).
		Int("stdout_bytes", len(res.Stdout)).
		Msg("Process finished")
	return res, nil
}

// Spawn runs name with args and returns its stdout. A non-zero exit status
// is an error carrying stderr when there is any.
func Spawn(ctx context.Context, name string, args ...string) ([]byte, error) {
	return SpawnWithOptions(ctx, Options{}, name, args...)
}

// SpawnWithOptions is Spawn with a working directory and extra environment.
func SpawnWithOptions(ctx context.Context, opts Options, name string, args ...string) ([]byte, error) {
	res, err := RunWithOptions(ctx, opts, name, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return res.Stdout, exitError(name, args, res)
	}
	return res.Stdout, nil
}

// SpawnLine splits a shell-like command line and spawns it. Quoting is
// honored; no shell is involved.
func SpawnLine(ctx context.Context, line string) ([]byte, error) {
	return SpawnLineWithOptions(ctx, Options{}, line)
}

// SpawnLineWithOptions is SpawnLine with a working directory and extra
// environment.
func SpawnLineWithOptions(ctx context.Context, opts Options, line string) ([]byte, error) {
	argv, err := Split(line)
	if err != nil {
		return nil, err
	}
	return SpawnWithOptions(ctx, opts, argv[0], argv[1:]...)
}

// Split breaks a command line into argv.
func Split(line string) ([]string, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse command %q", line)
	}
	if len(argv) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "empty command")
	}
	return argv, nil
}

// CommandLine renders name and args the way they would be typed.
func CommandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func exitError(name string, args []string, res Result) error {
	line := CommandLine(name, args)
	stderr := strings.TrimSpace(string(res.Stderr))
	var err *errors.BookopsError
	if stderr != "" {
		err = errors.Newf(errors.ErrProcessExit, "%s: %s", line, stderr)
	} else {
		err = errors.Newf(errors.ErrProcessExit, "could not run %s", line)
	}
	return err.
		WithDetail("exit_code", res.ExitCode).
		WithDetail("stdout", string(res.Stdout))
}

// PrependPath puts dir (made absolute) in front of PATH.
func PrependPath(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", dir)
	}
	if current, ok := os.LookupEnv("PATH"); ok && current != "" {
		return os.Setenv("PATH", fmt.Sprintf("%s%c%s", abs, os.PathListSeparator, current))
	}
	return os.Setenv("PATH", abs)
}
