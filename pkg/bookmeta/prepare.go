package bookmeta

import (
	"os"
	"path/filepath"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/logging"
	cp "github.com/otiai10/copy"
)

// RepoSettingsDir is the directory inside the static resources whose
// contents are copied into every book repository.
const RepoSettingsDir = "repo-settings"

// CopyRepoSettings copies settingsDir recursively into bookPath,
// overwriting existing files. Symlinks are skipped.
func CopyRepoSettings(bookPath, settingsDir string) error {
	if _, err := os.Stat(settingsDir); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", settingsDir)
	}
	err := cp.Copy(settingsDir, bookPath, cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Skip },
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy %s into %s", settingsDir, bookPath)
	}
	return nil
}

// Prepare reads the book's metadata, writes its README and copies the
// repository settings from staticDir. The metadata is returned for the
// license step that follows.
func Prepare(bookPath, staticDir string) (*BookMeta, error) {
	logger := logging.GetLogger("bookmeta")
	done := logging.LogOperationStart(logger, "prepare")
	defer done()

	meta, err := Read(bookPath)
	if err != nil {
		return nil, err
	}
	if err := WriteReadme(meta, bookPath, staticDir); err != nil {
		return nil, err
	}
	if err := CopyRepoSettings(bookPath, filepath.Join(staticDir, RepoSettingsDir)); err != nil {
		return nil, err
	}
	logger.Info().Str("book", bookPath).Int("collections", len(meta.SlugsMeta)).Msg("Prepared book repository")
	return meta, nil
}
