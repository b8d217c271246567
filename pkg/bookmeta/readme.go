package bookmeta

import (
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openstax/bookops/pkg/errors"
)

// BookWebRoot is the prefix of a book's details page on openstax.org.
const BookWebRoot = "https://openstax.org/details/books/"

// Template file names inside the static resource directory.
const (
	BookTemplate   = "book.md"
	BundleTemplate = "bundle.md"
)

var placeholder = regexp.MustCompile(`\{{2}.+?\}{2}`)

// RenderReadme renders the README for meta from the templates in
// templateDir.
func RenderReadme(meta *BookMeta, templateDir string) (string, error) {
	switch len(meta.SlugsMeta) {
	case 0:
		return "", errors.New(errors.ErrBookMeta, "books.xml lists no collections")
	case 1:
		return renderTemplateFile(filepath.Join(templateDir, BookTemplate), BookReplacements(meta.SlugsMeta[0]))
	default:
		replacements, err := BundleReplacements(meta.SlugsMeta)
		if err != nil {
			return "", err
		}
		return renderTemplateFile(filepath.Join(templateDir, BundleTemplate), replacements)
	}
}

// WriteReadme renders the README into bookPath/README.md.
func WriteReadme(meta *BookMeta, bookPath, templateDir string) error {
	readme, err := RenderReadme(meta, templateDir)
	if err != nil {
		return err
	}
	path := filepath.Join(bookPath, "README.md")
	if err := os.WriteFile(path, []byte(readme), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return nil
}

// BookReplacements are the template values for a single-collection book.
func BookReplacements(slug SlugMeta) map[string]string {
	license := slug.ColMeta.License
	return map[string]string{
		"book_title":      slug.ColMeta.Title,
		"book_link":       BookWebRoot + EncodeURIComponent(slug.SlugName),
		"license_text":    license.Text,
		"license_type":    license.Type,
		"license_version": license.Version,
	}
}

// BundleReplacements are the template values for a multi-collection book.
// All collections must share one license.
func BundleReplacements(slugs []SlugMeta) (map[string]string, error) {
	license := slugs[0].ColMeta.License
	for _, s := range slugs[1:] {
		if s.ColMeta.License != license {
			return nil, errors.New(errors.ErrBookMeta, "Licenses differ between collections")
		}
	}

	titles := make([]string, len(slugs))
	links := make([]string, len(slugs))
	for i, s := range slugs {
		titles[i] = s.ColMeta.Title
		if i == len(slugs)-1 {
			titles[i] = "and " + s.ColMeta.Title
		}
		links[i] = "- _" + s.ColMeta.Title + "_ [online](" + BookWebRoot + EncodeURIComponent(s.SlugName) + ")"
	}
	sep := " "
	if len(slugs) > 2 {
		sep = ", "
	}

	return map[string]string{
		"book_titles":     strings.Join(titles, sep),
		"book_links":      strings.Join(links, "\n"),
		"license_text":    license.Text,
		"license_type":    license.Type,
		"license_version": license.Version,
	}, nil
}

// PopulateTemplate replaces every {{ name }} in template with its value.
// A placeholder without a value is an error.
func PopulateTemplate(template string, replacements map[string]string) (string, error) {
	var missing error
	out := placeholder.ReplaceAllStringFunc(template, func(m string) string {
		prop := m[2 : len(m)-2]
		value, ok := replacements[strings.TrimSpace(prop)]
		if !ok {
			if missing == nil {
				missing = errors.Newf(errors.ErrBookTemplate, "%s is undefined", prop)
			}
			return m
		}
		return value
	})
	if missing != nil {
		return "", missing
	}
	return out, nil
}

func renderTemplateFile(path string, replacements map[string]string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read template %s", path)
	}
	return PopulateTemplate(string(data), replacements)
}

// EncodeURIComponent escapes s the way JavaScript's encodeURIComponent does.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return uriComponentFixups.Replace(escaped)
}

var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)
