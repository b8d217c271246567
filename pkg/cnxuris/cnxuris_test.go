// pkg/cnxuris/cnxuris_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: httptest server, temp directories
// PURPOSE: Test archive tree walking and URI file output

package cnxuris_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openstax/bookops/pkg/cnxuris"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookID = "e42bd376-624b-4c0f-972f-e0c57998e765"

const archiveDoc = `{
  "id": "e42bd376-624b-4c0f-972f-e0c57998e765",
  "version": "1.4",
  "title": "Elementary Algebra",
  "tree": {
    "id": "e42bd376-624b-4c0f-972f-e0c57998e765@1.4",
    "title": "Elementary Algebra",
    "contents": [
      {"id": "0b7ae3cd-9a45-4d28-ba3e-1a1d6d3f2a6b@3", "title": "Preface"},
      {"id": "subcol", "title": "Foundations", "contents": [
        {"id": "57e6e4b9-8d4d-4b07-9ba4-4a8f28e0f6d1@5", "title": "Introduction"},
        {"id": "6d6bb3d0-3a8b-4a8f-bf3e-2fe2fa0cb9e3@2", "title": "Whole Numbers"}
      ]}
    ]
  }
}`

func archive(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/contents/"+bookID+".json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(archiveDoc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	srv := archive(t)
	g := &cnxuris.Generator{Host: srv.URL, Client: srv.Client()}

	uris, err := g.Generate(context.Background(), bookID)
	require.NoError(t, err)

	prefix := srv.URL + "/contents/" + bookID
	want := []string{
		prefix,
		prefix + ":0b7ae3cd-9a45-4d28-ba3e-1a1d6d3f2a6b",
		prefix + ":57e6e4b9-8d4d-4b07-9ba4-4a8f28e0f6d1",
		prefix + ":6d6bb3d0-3a8b-4a8f-bf3e-2fe2fa0cb9e3",
	}
	if diff := cmp.Diff(want, uris); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_UnknownBook(t *testing.T) {
	srv := archive(t)
	g := &cnxuris.Generator{Host: srv.URL, Client: srv.Client()}

	_, err := g.Generate(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRemoteRequest))
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://archive.cnx.org", (&cnxuris.Generator{Host: "archive.cnx.org"}).BaseURL())
	assert.Equal(t, "http://localhost:6543", (&cnxuris.Generator{Host: "http://localhost:6543/"}).BaseURL())
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	path, err := cnxuris.Write(dir, bookID, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, bookID+".txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}
