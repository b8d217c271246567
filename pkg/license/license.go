// Package license keeps the LICENSE file of a book repository in line with
// the license declared in its collection metadata.
package license

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/openstax/bookops/pkg/bookmeta"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

// FileName is the license file at the root of a book repository.
const FileName = "LICENSE"

// CommitMessage is used when the LICENSE file is replaced.
const CommitMessage = "Update LICENSE"

// Committer commits every pending change of a repository.
type Committer interface {
	CommitAll(ctx context.Context, msg string) (bool, error)
}

// Status is the outcome of a license check.
type Status int

const (
	// Unknown means no license text is available for the declared license.
	Unknown Status = iota
	// UpToDate means the book already carries the expected license.
	UpToDate
	// Updated means the license was replaced and committed.
	Updated
	// WouldUpdate means the license differs and a dry run left it alone.
	WouldUpdate
)

func (s Status) String() string {
	switch s {
	case UpToDate:
		return "up to date"
	case Updated:
		return "updated"
	case WouldUpdate:
		return "would update"
	default:
		return "unknown license"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result describes what Ensure did for one book.
type Result struct {
	Status Status `json:"status" yaml:"status"`
	// Source is the license text file that was compared against.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Diff is a unified diff of the first lines when they differ.
	Diff string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Syncer compares book licenses against the texts in a licenses directory.
// It is safe for concurrent use.
type Syncer struct {
	fs     afero.Fs
	dir    string
	dryRun bool

	firstLines sync.Map
}

// NewSyncer returns a Syncer reading license texts from dir on fsys.
func NewSyncer(fsys afero.Fs, dir string, dryRun bool) *Syncer {
	return &Syncer{fs: fsys, dir: dir, dryRun: dryRun}
}

// SourcePath is the license text for lic: <dir>/<type>-<version>.txt.
func (s *Syncer) SourcePath(lic bookmeta.License) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%s.txt", lic.Type, lic.Version))
}

// Ensure makes sure the LICENSE in bookPath starts like the license text
// for lic, replacing it and committing through repo otherwise.
func (s *Syncer) Ensure(ctx context.Context, repo Committer, bookPath string, lic bookmeta.License) (Result, error) {
	logger := logging.GetLogger("license").With().Str("book", bookPath).Logger()

	source := s.SourcePath(lic)
	result := Result{Source: source}
	if ok, err := afero.Exists(s.fs, source); err != nil || !ok {
		logger.Warn().Str("license", source).Msg("Unknown license")
		return result, nil
	}

	expected, err := s.expectedFirstLine(source)
	if err != nil {
		return result, err
	}
	target := filepath.Join(bookPath, FileName)
	existing, err := firstLine(s.fs, target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return result, err
	}

	if existing == expected {
		result.Status = UpToDate
		return result, nil
	}
	result.Diff = firstLineDiff(target, source, existing, expected)

	if s.dryRun {
		result.Status = WouldUpdate
		logger.Info().Str("license", source).Msg("License differs, leaving it in place")
		return result, nil
	}

	if err := s.copyFile(source, target); err != nil {
		return result, err
	}
	if _, err := repo.CommitAll(ctx, CommitMessage); err != nil {
		return result, err
	}
	result.Status = Updated
	logger.Info().Str("license", source).Msg("Updated LICENSE")
	return result, nil
}

func (s *Syncer) expectedFirstLine(path string) (string, error) {
	if line, ok := s.firstLines.Load(path); ok {
		return line.(string), nil
	}
	line, err := firstLine(s.fs, path)
	if err != nil {
		return "", err
	}
	s.firstLines.Store(path, line)
	return line, nil
}

func (s *Syncer) copyFile(src, dst string) error {
	data, err := afero.ReadFile(s.fs, src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	if err := afero.WriteFile(s.fs, dst, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return nil
}

// firstLine returns the trimmed first line of path. A missing file is
// reported as an empty line together with the wrapped not-exist error.
func firstLine(fsys afero.Fs, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	return "", nil
}

func firstLineDiff(target, source, existing, expected string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        []string{existing + "\n"},
		B:        []string{expected + "\n"},
		FromFile: target,
		ToFile:   source,
		Context:  0,
	})
	if err != nil {
		return ""
	}
	return diff
}
