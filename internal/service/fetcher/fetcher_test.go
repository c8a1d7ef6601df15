package fetcher

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// artifactServer serves body as a binary once the license form is posted.
func artifactServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.FormValue(LicenseField) != LicenseAccepted {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html>Please accept the license</html>"))

			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}))
	t.Cleanup(ts.Close)

	return ts
}

// TestDownload_SavesArtifact posts the license form and writes the body to disk.
func TestDownload_SavesArtifact(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("jlink"), 10_000)
	ts := artifactServer(t, body)

	var (
		progress bytes.Buffer
		last     int64
		calls    int
	)

	d := New(
		WithHTTPClient(ts.Client()),
		WithProgressOutput(&progress),
		WithChunkSize(1024),
		WithProgressFunc(func(written, total int64) {
			require.GreaterOrEqual(t, written, last)
			last = written
			calls++

			require.Equal(t, int64(len(body)), total)
		}),
	)

	destination := filepath.Join(t.TempDir(), "JLink_Linux_V810g_x86_64.deb")
	require.NoError(t, d.Download(context.Background(), ts.URL+"/JLink_Linux_V810g_x86_64.deb", destination))

	saved, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, body, saved)

	require.Equal(t, int64(len(body)), last)
	require.GreaterOrEqual(t, calls, len(body)/1024)
	require.NotEmpty(t, progress.String())

	// Only the artifact is left behind.
	entries, err := os.ReadDir(filepath.Dir(destination))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

// TestDownload_ReplacesExistingFile overwrites an earlier download of the same name.
func TestDownload_ReplacesExistingFile(t *testing.T) {
	t.Parallel()

	ts := artifactServer(t, []byte("new contents"))

	destination := filepath.Join(t.TempDir(), "JLink.tgz")
	require.NoError(t, os.WriteFile(destination, []byte("old contents that are longer"), 0o600))

	d := New(WithHTTPClient(ts.Client()), WithProgressOutput(nil))
	require.NoError(t, d.Download(context.Background(), ts.URL+"/JLink.tgz", destination))

	saved, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "new contents", string(saved))
}

// TestDownload_FailedPlacementLeavesNothing keeps the final name free when the move fails.
func TestDownload_FailedPlacementLeavesNothing(t *testing.T) {
	t.Parallel()

	ts := artifactServer(t, []byte("contents"))

	dir := t.TempDir()
	destination := filepath.Join(dir, "JLink.deb")

	// The staging file of the atomic replace cannot be created over a directory.
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".JLink.deb.new"), 0o755))

	d := New(WithHTTPClient(ts.Client()), WithProgressOutput(nil))
	require.Error(t, d.Download(context.Background(), ts.URL+"/JLink.deb", destination))

	_, err := os.Stat(destination)
	require.ErrorIs(t, err, os.ErrNotExist)

	// An existing download survives a failed replacement.
	require.NoError(t, os.WriteFile(destination, []byte("previous"), 0o600))
	require.Error(t, d.Download(context.Background(), ts.URL+"/JLink.deb", destination))

	saved, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "previous", string(saved))
}

// TestDownload_RejectsLicensePage treats an HTML answer as a remote error.
func TestDownload_RejectsLicensePage(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	defer ts.Close()

	destination := filepath.Join(t.TempDir(), "JLink.deb")

	err := New(WithProgressOutput(nil)).Download(context.Background(), ts.URL, destination)
	require.ErrorIs(t, err, ErrRemote)

	_, err = os.Stat(destination)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDownload_RejectsBadStatus treats non-200 answers as remote errors.
func TestDownload_RejectsBadStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	err := New(WithProgressOutput(nil)).Download(context.Background(), ts.URL, filepath.Join(t.TempDir(), "JLink.deb"))
	require.ErrorIs(t, err, ErrRemote)
}
