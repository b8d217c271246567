// Package poet drives the external poet CLI, which validates CNXML book
// content and lists files no longer referenced by any collection.
package poet

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/openstax/bookops/pkg/proc"
)

// OrphansExitCode is the status poet exits with when it has output for the
// orphans subcommand: either validation errors or a list of orphans.
const OrphansExitCode = 111

// ModuleFile is the CNXML file name whose removal also removes its
// module directory.
const ModuleFile = "index.cnxml"

// Poet runs a poet binary.
type Poet struct {
	command []string
}

// New returns a Poet for the given command line, e.g. "poet" or
// "node /opt/poet/server/dist/model/_cli.js". Empty means "poet".
func New(command string) (*Poet, error) {
	if strings.TrimSpace(command) == "" {
		command = "poet"
	}
	argv, err := proc.Split(command)
	if err != nil {
		return nil, err
	}
	return &Poet{command: argv}, nil
}

// Orphans runs poet orphans on bookPath and returns the reported paths.
// An empty result means poet had nothing to report. Validation errors are
// returned as an ErrValidation error listing them.
func (p *Poet) Orphans(ctx context.Context, bookPath string) ([]string, error) {
	args := append(append([]string{}, p.command[1:]...), "orphans", bookPath)
	res, err := proc.Run(ctx, p.command[0], args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != OrphansExitCode {
		return nil, nil
	}

	stdout := strings.Split(strings.TrimSpace(string(res.Stdout)), "\n")
	for _, line := range strings.Split(strings.TrimSpace(string(res.Stderr)), "\n") {
		if !strings.Contains(line, "Validation Errors") {
			continue
		}
		_, countText, _ := strings.Cut(line, ":")
		count, convErr := strconv.Atoi(strings.TrimSpace(countText))
		if convErr != nil {
			return nil, errors.Wrapf(convErr, errors.ErrValidation, "cannot read error count from %q", line)
		}
		if count > len(stdout) {
			count = len(stdout)
		}
		return nil, errors.New(errors.ErrValidation,
			"Validation Errors:\n"+strings.Join(stdout[:count], "\n")).
			WithDetail("count", count)
	}

	var orphans []string
	for _, line := range stdout {
		if line = strings.TrimSpace(line); line != "" {
			orphans = append(orphans, line)
		}
	}
	return orphans, nil
}

// RemoveOrphans deletes the orphans poet reports for bookPath, restricted
// to regular files directly inside one of the whitelisted directories.
// Removing a module's index.cnxml also removes the module directory. The
// number of removed files is returned.
func (p *Poet) RemoveOrphans(ctx context.Context, bookPath string, whitelist []string) (int, error) {
	logger := logging.GetLogger("poet")

	orphans, err := p.Orphans(ctx, bookPath)
	if err != nil {
		return 0, err
	}

	allowed := make(map[string]bool, len(whitelist))
	for _, dir := range whitelist {
		allowed[absPath(dir)] = true
	}

	total := 0
	for _, orphan := range orphans {
		info, err := os.Stat(orphan)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		parent := filepath.Dir(absPath(orphan))
		if !allowed[parent] {
			continue
		}
		if err := os.Remove(orphan); err != nil {
			return total, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", orphan)
		}
		if filepath.Base(orphan) == ModuleFile {
			if err := os.Remove(parent); err != nil {
				return total, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove module directory %s", parent)
			}
		}
		total++
		logger.Info().Str("path", orphan).Msg("Removing orphan")
	}
	logger.Info().Int("count", total).Msgf("Removed %d orphan(s)", total)
	return total, nil
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
