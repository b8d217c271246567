package testutil

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// Collection describes one collection of a book fixture.
type Collection struct {
	Slug         string
	CollectionID string
	Title        string
	LicenseURL   string
	LicenseText  string
}

// DefaultLicenseURL is the license of fixture collections that set none.
const DefaultLicenseURL = "http://creativecommons.org/licenses/by/4.0/"

// BookFiles returns the files of a book repository holding cols: a
// META-INF/books.xml and one collections/<slug>.collection.xml each.
func BookFiles(cols ...Collection) map[string]string {
	files := map[string]string{}
	var entries strings.Builder
	for _, c := range cols {
		href := "../collections/" + c.Slug + ".collection.xml"
		fmt.Fprintf(&entries, "  <book slug=%q collection-id=%q href=%q />\n", c.Slug, c.CollectionID, href)
		files[filepath.Join("collections", c.Slug+".collection.xml")] = CollectionXML(c)
	}
	files[filepath.Join("META-INF", "books.xml")] = `<container xmlns="https://openstax.org/namespaces/book-container" version="1">
` + entries.String() + `</container>
`
	return files
}

// CollectionXML renders the collxml document for c.
func CollectionXML(c Collection) string {
	url := c.LicenseURL
	if url == "" {
		url = DefaultLicenseURL
	}
	return fmt.Sprintf(`<col:collection xmlns:col="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
  <col:metadata>
    <md:title>%s</md:title>
    <md:license url=%q>%s</md:license>
    <md:uuid>00000000-0000-0000-0000-000000000000</md:uuid>
  </col:metadata>
  <col:content />
</col:collection>
`, c.Title, url, c.LicenseText)
}

// StaticFiles returns a static resource directory with README templates
// and a repo-settings tree.
func StaticFiles() map[string]string {
	return map[string]string{
		"book.md":   "# {{ book_title }}\n\n[Read online]({{ book_link }})\n\n{{ license_text }} ({{license_type}} {{ license_version }})\n",
		"bundle.md": "# {{ book_titles }}\n\n{{ book_links }}\n\n{{ license_text }} ({{ license_type }} {{ license_version }})\n",
		filepath.Join("repo-settings", ".github", "settings.yml"): "repository:\n  has_wiki: false\n",
		filepath.Join("repo-settings", ".gitignore"):              "node_modules/\n",
	}
}

// WriteFilesFs writes files (relative path -> content) under dir of fs.
func WriteFilesFs(t *testing.T, fs afero.Fs, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}
