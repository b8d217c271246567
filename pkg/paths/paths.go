package paths

import (
	"os"
	"path/filepath"

	"github.com/openstax/bookops/pkg/errors"
)

const (
	// EnvRoot overrides root discovery.
	EnvRoot = "BOOKOPS_ROOT"
	// Marker identifies a tool root during discovery.
	Marker = "bookops.toml"
)

// Root is a resolved tool root.
type Root struct {
	Path string
	// Fallback is set when no explicit root or marker was found and the
	// working directory was used.
	Fallback bool
}

// FindRoot resolves the tool root starting from the working directory.
func FindRoot(explicit string) (Root, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Root{}, errors.Wrap(err, errors.ErrFileAccess, "failed to get current directory")
	}
	return FindRootFrom(explicit, cwd)
}

// FindRootFrom resolves the tool root, searching for the marker from dir
// upwards.
func FindRootFrom(explicit, dir string) (Root, error) {
	for _, candidate := range []string{explicit, os.Getenv(EnvRoot)} {
		if candidate != "" {
			abs, err := filepath.Abs(ExpandHome(candidate))
			if err != nil {
				return Root{}, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve root %s", candidate)
			}
			return Root{Path: abs}, nil
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", dir)
	}
	for d := abs; ; d = filepath.Dir(d) {
		if info, err := os.Stat(filepath.Join(d, Marker)); err == nil && !info.IsDir() {
			return Root{Path: d}, nil
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	return Root{Path: abs, Fallback: true}, nil
}

// ExpandHome replaces a leading ~ or ~/ with the home directory. Other
// paths, and ~user forms, are returned unchanged.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) > 1 && path[1] != '/' && path[1] != filepath.Separator {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
