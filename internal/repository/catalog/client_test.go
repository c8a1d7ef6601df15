package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/jlink-updater/internal/version"
)

// TestNewClient_ValidatesURL verifies that an empty page URL is rejected.
func TestNewClient_ValidatesURL(t *testing.T) {
	t.Parallel()

	c, err := NewClient("")
	require.ErrorIs(t, err, errPageURLRequired)
	require.Nil(t, c)
}

// TestClient_Fetch parses the page served over HTTP.
func TestClient_Fetch(t *testing.T) {
	t.Parallel()

	userAgents := make(chan string, 1)

	files := http.FileServer(http.Dir("testdata"))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents <- r.UserAgent()
		files.ServeHTTP(w, r)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL+"/download_page.html", WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	doc, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, ParseVersionIndex(doc), 3)
	require.Equal(t, version.UserAgent(), <-userAgents)
}

// TestClient_Fetch_BadStatus reports non-200 answers as ErrRemote.
func TestClient_Fetch_BadStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	c, err := NewClient(ts.URL)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.ErrorIs(t, err, ErrRemote)
}
