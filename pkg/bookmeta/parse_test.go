// pkg/bookmeta/parse_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: temp directories
// PURPOSE: Test books.xml and collection metadata parsing

package bookmeta_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openstax/bookops/pkg/bookmeta"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	book := t.TempDir()
	testutil.WriteFiles(t, book, testutil.BookFiles(
		testutil.Collection{Slug: "college-physics", CollectionID: "col11406", Title: "College Physics"},
		testutil.Collection{Slug: "college-physics-ap", CollectionID: "col11844", Title: "  College Physics for AP Courses "},
	))

	meta, err := bookmeta.Read(book)
	require.NoError(t, err)

	license := bookmeta.License{
		URL:     "http://creativecommons.org/licenses/by/4.0",
		Type:    "by",
		Version: "4.0",
		Text:    "Creative Commons Attribution License",
	}
	want := &bookmeta.BookMeta{SlugsMeta: []bookmeta.SlugMeta{
		{
			SlugName:     "college-physics",
			CollectionID: "col11406",
			Href:         "../collections/college-physics.collection.xml",
			ColMeta:      bookmeta.ColMeta{Title: "College Physics", License: license},
		},
		{
			SlugName:     "college-physics-ap",
			CollectionID: "col11844",
			Href:         "../collections/college-physics-ap.collection.xml",
			ColMeta:      bookmeta.ColMeta{Title: "College Physics for AP Courses", License: license},
		},
	}}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}

	primary, ok := meta.PrimaryLicense()
	assert.True(t, ok)
	assert.Equal(t, license, primary)
}

func TestRead_MissingAttributes(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		message string
	}{
		{"no href", `<book slug="a" collection-id="col1" />`, "Slug href not found"},
		{"no collection id", `<book slug="a" href="../collections/a.collection.xml" />`, "collection-id not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := t.TempDir()
			testutil.WriteFiles(t, book, map[string]string{
				"META-INF/books.xml": "<container>" + tt.entry + "</container>",
			})
			_, err := bookmeta.Read(book)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrBookMeta))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRead_MissingBooksXML(t *testing.T) {
	_, err := bookmeta.Read(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestReadCollection_ExpectsExactlyOneTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.collection.xml")
	testutil.WriteFiles(t, dir, map[string]string{
		"c.collection.xml": `<col:collection xmlns:col="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
  <col:metadata>
    <md:title>One</md:title>
    <md:title>Two</md:title>
    <md:license url="http://creativecommons.org/licenses/by/4.0/"/>
  </col:metadata>
</col:collection>`,
	})

	_, err := bookmeta.ReadCollection(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected one but found 2 results that match 'md:title'")
}

func TestReadCollection_EmptyTitle(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"c.collection.xml": `<col:collection xmlns:col="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
  <col:metadata>
    <md:title>  </md:title>
    <md:license url="http://creativecommons.org/licenses/by/4.0/"/>
  </col:metadata>
</col:collection>`,
	})

	col, err := bookmeta.ReadCollection(filepath.Join(dir, "c.collection.xml"))
	require.NoError(t, err)
	assert.Empty(t, col.Title)
	assert.Equal(t, "by", col.License.Type)
}

func TestReadCollection_IgnoresOtherNamespaces(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"c.collection.xml": `<collection xmlns="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml" xmlns:x="urn:other">
  <metadata>
    <x:title>Not this</x:title>
    <md:title>Biology</md:title>
    <md:license url="http://creativecommons.org/licenses/by-nc-sa/4.0/"/>
  </metadata>
</collection>`,
	})

	col, err := bookmeta.ReadCollection(filepath.Join(dir, "c.collection.xml"))
	require.NoError(t, err)
	assert.Equal(t, "Biology", col.Title)
	assert.Equal(t, "by-nc-sa", col.License.Type)
	assert.Equal(t, "Creative Commons Attribution-NonCommercial-ShareAlike License", col.License.Text)
}

func TestParseLicense(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		text    string
		want    bookmeta.License
		wantErr string
	}{
		{
			name: "known type uses fixed name",
			url:  "http://creativecommons.org/licenses/by-sa/4.0/",
			text: "ignored",
			want: bookmeta.License{
				URL: "http://creativecommons.org/licenses/by-sa/4.0", Type: "by-sa", Version: "4.0",
				Text: "Creative Commons Attribution-ShareAlike License",
			},
		},
		{
			name: "localized uses element text",
			url:  "http://creativecommons.org/licenses/by/4.0/deed.pl",
			text: " Uznanie autorstwa ",
			want: bookmeta.License{
				URL: "http://creativecommons.org/licenses/by/4.0/deed.pl", Type: "by", Version: "4.0",
				Text: "Uznanie autorstwa",
			},
		},
		{
			name: "unknown type uses element text",
			url:  "http://example.org/licenses/custom/1.0",
			text: "Custom License",
			want: bookmeta.License{
				URL: "http://example.org/licenses/custom/1.0", Type: "custom", Version: "1.0",
				Text: "Custom License",
			},
		},
		{name: "missing url", url: "", wantErr: "No license url"},
		{name: "unknown type without text", url: "http://example.org/licenses/custom/1.0", wantErr: "Expected license text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bookmeta.ParseLicense(tt.url, tt.text)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
