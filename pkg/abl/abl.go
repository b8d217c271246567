// Package abl reads the approved book list, the registry of book
// repositories that the maintenance run visits.
package abl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/httpx"
	"github.com/openstax/bookops/pkg/logging"
)

// FileName is the cached copy of the approved book list.
const FileName = "approved-book-list.json"

// Book is one approved_books entry. Only the repository name is used;
// the other fields are kept for `bookops books -o json`.
type Book struct {
	RepositoryName string          `json:"repository_name"`
	Platforms      []string        `json:"platforms,omitempty"`
	Versions       json.RawMessage `json:"versions,omitempty"`
}

// List is the approved book list document.
type List struct {
	ApprovedBooks []Book `json:"approved_books"`
}

// Repositories returns the repository name of every approved book.
func (l *List) Repositories() []string {
	names := make([]string, 0, len(l.ApprovedBooks))
	for _, b := range l.ApprovedBooks {
		names = append(names, b.RepositoryName)
	}
	return names
}

// Loader loads the list from Path, downloading it from URL first when
// Path does not exist.
type Loader struct {
	Path   string
	URL    string
	Client *http.Client
}

// Load returns the approved book list.
func (l *Loader) Load(ctx context.Context) (*List, error) {
	if _, err := os.Stat(l.Path); os.IsNotExist(err) {
		if err := l.Download(ctx); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", l.Path)
	}
	var list List
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrapf(err, errors.ErrApprovedBookList, "cannot parse %s", l.Path)
	}
	return &list, nil
}

// Repositories loads the list and returns its repository names.
func (l *Loader) Repositories(ctx context.Context) ([]string, error) {
	list, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return list.Repositories(), nil
}

// Download fetches URL into Path, replacing any existing file.
func (l *Loader) Download(ctx context.Context) error {
	logger := logging.GetLogger("abl")
	if l.URL == "" {
		return errors.New(errors.ErrApprovedBookList, "no approved book list URL configured (ABL_URL)").
			WithDetail("path", l.Path)
	}

	logger.Info().Str("url", l.URL).Str("path", l.Path).Msg("Downloading approved book list")
	client := l.Client
	if client == nil {
		client = httpx.NewClient("abl")
	}
	resp, err := httpx.Get(ctx, client, l.URL)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := os.MkdirAll(filepath.Dir(l.Path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(l.Path))
	}
	tmp := l.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmp)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.Wrapf(err, errors.ErrRemoteRequest, "cannot download %s", l.URL)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", tmp)
	}
	if err := os.Rename(tmp, l.Path); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", l.Path)
	}
	return nil
}
