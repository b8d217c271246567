// Package cnxuris lists the legacy archive URIs of a book and its pages,
// used to test redirects after a book moves off the legacy site.
package cnxuris

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/httpx"
	"github.com/openstax/bookops/pkg/logging"
)

// SubcollectionID is the placeholder id archive gives to unnumbered
// subcollections (units, chapters).
const SubcollectionID = "subcol"

// Node is an entry of a book's table of contents.
type Node struct {
	ID       string `json:"id"`
	ShortID  string `json:"shortId,omitempty"`
	Title    string `json:"title"`
	Contents []Node `json:"contents,omitempty"`
}

// Book is the subset of the archive content document that is walked.
type Book struct {
	ID      string `json:"id"`
	ShortID string `json:"shortId,omitempty"`
	Version string `json:"version"`
	Title   string `json:"title"`
	Tree    Node   `json:"tree"`
}

// Generator fetches books from an archive host.
type Generator struct {
	// Host is a bare host name (https is assumed) or a full base URL.
	Host   string
	Client *http.Client
}

// NewGenerator returns a Generator for host using the shared retrying
// client.
func NewGenerator(host string) *Generator {
	return &Generator{Host: host, Client: httpx.NewClient("cnxuris")}
}

// BaseURL returns the scheme and host URIs are built on.
func (g *Generator) BaseURL() string {
	host := strings.TrimSuffix(g.Host, "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// Fetch downloads the content document of cnxID.
func (g *Generator) Fetch(ctx context.Context, cnxID string) (*Book, error) {
	if cnxID == "" {
		return nil, errors.New(errors.ErrInvalidInput, "empty book id")
	}
	var book Book
	url := g.BaseURL() + "/contents/" + cnxID + ".json"
	if err := httpx.GetJSON(ctx, g.Client, url, nil, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// Generate returns the book URI followed by one URI per node of its tree.
func (g *Generator) Generate(ctx context.Context, cnxID string) ([]string, error) {
	logger := logging.GetLogger("cnxuris")
	book, err := g.Fetch(ctx, cnxID)
	if err != nil {
		return nil, err
	}
	uris := URIs(g.BaseURL(), cnxID, book)
	logger.Info().Str("book", cnxID).Str("title", book.Title).Int("uris", len(uris)).Msg("Generated URIs")
	return uris, nil
}

// URIs builds the URI list for book. Pages and numbered subcollections
// get `<base>/contents/<cnxID>:<node id>` with the node version dropped;
// placeholder subcollections are walked but not listed.
func URIs(base, cnxID string, book *Book) []string {
	prefix := base + "/contents/" + cnxID
	uris := []string{prefix}
	var walk func(nodes []Node)
	walk = func(nodes []Node) {
		for _, n := range nodes {
			if id := stripVersion(n.ID); id != "" && id != SubcollectionID {
				uris = append(uris, prefix+":"+id)
			}
			walk(n.Contents)
		}
	}
	walk(book.Tree.Contents)
	return uris
}

func stripVersion(id string) string {
	if i := strings.IndexByte(id, '@'); i >= 0 {
		return id[:i]
	}
	return id
}

// Write stores uris one per line in `<outputDir>/<cnxID>.txt` and returns
// the file path.
func Write(outputDir, cnxID string, uris []string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", outputDir)
	}
	path := filepath.Join(outputDir, cnxID+".txt")
	var b strings.Builder
	for _, u := range uris {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return path, nil
}
