package bookmeta

import (
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/openstax/bookops/pkg/errors"
)

// XML namespaces used by book content.
const (
	NSCollection = "http://cnx.rice.edu/collxml"
	NSCNXML      = "http://cnx.rice.edu/cnxml"
	NSMetadata   = "http://cnx.rice.edu/mdml"
	NSContainer  = "https://openstax.org/namespaces/book-container"
)

// licenseNames maps Creative Commons license types to their display names.
var licenseNames = map[string]string{
	"by":       "Creative Commons Attribution License",
	"by-nd":    "Creative Commons Attribution-NoDerivs License",
	"by-nd-nc": "Creative Commons Attribution-NoDerivs-NonCommercial License",
	"by-sa":    "Creative Commons Attribution-ShareAlike License",
	"by-nc":    "Creative Commons Attribution-NonCommercial License",
	"by-nc-sa": "Creative Commons Attribution-NonCommercial-ShareAlike License",
}

// BooksXMLPath returns the path of the container file inside a book.
func BooksXMLPath(bookPath string) string {
	return filepath.Join(bookPath, "META-INF", "books.xml")
}

// Read parses the container file of the book at bookPath and the metadata
// of every collection it lists.
func Read(bookPath string) (*BookMeta, error) {
	booksXML := BooksXMLPath(bookPath)
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(booksXML); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", booksXML)
	}

	meta := &BookMeta{SlugsMeta: []SlugMeta{}}
	for _, el := range doc.FindElements("//*[@slug]") {
		slug, err := requireAttr(el, "slug", "Slug not found")
		if err != nil {
			return nil, err
		}
		href, err := requireAttr(el, "href", "Slug href not found")
		if err != nil {
			return nil, err
		}
		collectionID, err := requireAttr(el, "collection-id", "collection-id not found")
		if err != nil {
			return nil, err
		}

		colMeta, err := ReadCollection(filepath.Join(filepath.Dir(booksXML), href))
		if err != nil {
			return nil, err
		}
		meta.SlugsMeta = append(meta.SlugsMeta, SlugMeta{
			SlugName:     slug,
			CollectionID: collectionID,
			Href:         href,
			ColMeta:      *colMeta,
		})
	}
	return meta, nil
}

// ReadCollection parses the title and license of a collxml file.
func ReadCollection(colPath string) (*ColMeta, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(colPath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", colPath)
	}
	return collectionMeta(doc, colPath)
}

func collectionMeta(doc *etree.Document, source string) (*ColMeta, error) {
	titleEl, err := selectOneMetadata(doc, "title", source)
	if err != nil {
		return nil, err
	}
	licenseEl, err := selectOneMetadata(doc, "license", source)
	if err != nil {
		return nil, err
	}

	// An empty title element is accepted; only a missing one is an error.
	title := textContent(titleEl)
	license, err := ParseLicense(licenseEl.SelectAttrValue("url", ""), textContent(licenseEl))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBookMeta, "invalid license in %s", source)
	}
	return &ColMeta{Title: title, License: license}, nil
}

// selectOneMetadata finds exactly one md:<tag> child across all metadata
// elements of the document, whatever their prefix.
func selectOneMetadata(doc *etree.Document, tag, source string) (*etree.Element, error) {
	var found []*etree.Element
	for _, metadata := range doc.FindElements("//metadata") {
		for _, child := range metadata.ChildElements() {
			if child.Tag == tag && child.NamespaceURI() == NSMetadata {
				found = append(found, child)
			}
		}
	}
	if len(found) != 1 {
		return nil, errors.Newf(errors.ErrBookMeta,
			"Expected one but found %d results that match 'md:%s'", len(found), tag).
			WithDetail("file", source)
	}
	return found[0], nil
}

// ParseLicense derives type, version and display text from a license URL
// such as http://creativecommons.org/licenses/by/4.0/ or the localized
// http://creativecommons.org/licenses/by/4.0/deed.pl. The element text is
// used when the license is localized or of an unknown type.
func ParseLicense(url, elementText string) (License, error) {
	if url == "" {
		return License{}, errors.New(errors.ErrBookMeta, "No license url")
	}
	localized := strings.Contains(url, "/deed.")
	url = strings.TrimSuffix(url, "/")

	base := url
	if localized {
		base = url[:strings.LastIndex(url, "/deed.")]
	}
	parts := strings.Split(base, "/")
	if len(parts) < 2 {
		return License{}, errors.Newf(errors.ErrBookMeta, "cannot read license type from %s", url)
	}
	licenseType, version := parts[len(parts)-2], parts[len(parts)-1]

	text, known := licenseNames[licenseType]
	if localized || !known {
		text = strings.TrimSpace(elementText)
	}
	if text == "" {
		return License{}, errors.New(errors.ErrBookMeta, "Expected license text")
	}
	return License{URL: url, Type: licenseType, Version: version, Text: text}, nil
}

func requireAttr(el *etree.Element, name, message string) (string, error) {
	attr := el.SelectAttr(name)
	if attr == nil {
		return "", errors.New(errors.ErrBookMeta, message).WithDetail("element", el.GetPath())
	}
	return attr.Value, nil
}

// textContent concatenates all character data below el.
func textContent(el *etree.Element) string {
	var b strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, tok := range e.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return strings.TrimSpace(b.String())
}
