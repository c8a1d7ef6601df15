package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/schollz/progressbar/v3"

	"github.com/oshokin/jlink-updater/internal/logger"
	"github.com/oshokin/jlink-updater/internal/version"
)

const (
	// LicenseField is the form field the server expects before serving a package.
	LicenseField = "accept_license_agreement"
	// LicenseAccepted is the value of LicenseField that accepts the license.
	LicenseAccepted = "accepted"

	// DefaultChunkSize is the size of each block copied from the response body.
	DefaultChunkSize = 32 * 1024

	// DefaultFileMode is the permission of the saved artifact.
	DefaultFileMode os.FileMode = 0o644

	binaryContentType = "application/octet-stream"

	progressBarWidth    = 30
	progressBarThrottle = 100 * time.Millisecond
)

// ErrRemote is returned when the server answers with something other than the artifact.
var ErrRemote = errors.New("unexpected artifact response")

// ProgressFunc receives the cumulative number of written bytes and the
// expected total (-1 when unknown).
type ProgressFunc func(written, total int64)

// Downloader fetches license-protected artifacts.
type Downloader struct {
	// httpClient performs the request.
	httpClient *http.Client
	// progressOutput receives the progress bar; nil disables it.
	progressOutput io.Writer
	// progressFunc is notified after each chunk.
	progressFunc ProgressFunc
	// chunkSize is the copy buffer size.
	chunkSize int
}

// Option configures the downloader.
type Option func(*Downloader)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(d *Downloader) {
		if httpClient != nil {
			d.httpClient = httpClient
		}
	}
}

// WithProgressOutput sets where the progress bar is drawn. Nil hides it.
func WithProgressOutput(w io.Writer) Option {
	return func(d *Downloader) {
		d.progressOutput = w
	}
}

// WithProgressFunc registers a byte counter callback.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(d *Downloader) {
		d.progressFunc = fn
	}
}

// WithChunkSize sets the copy buffer size.
func WithChunkSize(size int) Option {
	return func(d *Downloader) {
		if size > 0 {
			d.chunkSize = size
		}
	}
}

// New creates a downloader drawing its progress bar on stderr.
func New(opts ...Option) *Downloader {
	d := &Downloader{
		httpClient:     http.DefaultClient,
		progressOutput: os.Stderr,
		chunkSize:      DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Download posts the license acceptance to fileURL and saves the artifact at destination.
// The body is streamed into a temporary file next to destination, which then
// replaces destination in one step.
func (d *Downloader) Download(ctx context.Context, fileURL, destination string) error {
	response, err := d.request(ctx, fileURL)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	name := filepath.Base(destination)
	logger.InfoKV(ctx, "Downloading", "file", name, "size", response.ContentLength)

	partial, err := os.CreateTemp(filepath.Dir(destination), "."+name+"-*.part")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	defer func() {
		_ = partial.Close()
		_ = os.Remove(partial.Name())
	}()

	if err = d.copyBody(partial, response.Body, response.ContentLength, name); err != nil {
		return fmt.Errorf("download %s: %w", name, err)
	}

	if _, err = partial.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if err = place(partial, destination); err != nil {
		return fmt.Errorf("save %s: %w", destination, err)
	}

	logger.InfoKV(ctx, "Downloaded file", "path", destination)

	return nil
}

// request sends the license form and checks that a binary came back.
func (d *Downloader) request(ctx context.Context, fileURL string) (*http.Response, error) {
	form := url.Values{LicenseField: {LicenseAccepted}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fileURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.UserAgent())

	response, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", fileURL, err)
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, %s: %w", fileURL, response.Status, ErrRemote)
	}

	// A license or error page comes back as HTML with status 200.
	contentType := response.Header.Get("Content-Type")
	if mediaType, _, _ := mime.ParseMediaType(contentType); mediaType != binaryContentType {
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s, content type %q: %w", fileURL, contentType, ErrRemote)
	}

	return response, nil
}

func (d *Downloader) copyBody(dst io.Writer, body io.Reader, total int64, name string) error {
	writers := []io.Writer{dst}

	var bar *progressbar.ProgressBar
	if d.progressOutput != nil {
		bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(d.progressOutput),
			progressbar.OptionSetDescription(name),
			progressbar.OptionSetWidth(progressBarWidth),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(progressBarThrottle),
			progressbar.OptionOnCompletion(func() {
				_, _ = fmt.Fprintln(d.progressOutput)
			}),
		)
		writers = append(writers, bar)
	}

	if d.progressFunc != nil {
		writers = append(writers, &progressCounter{total: total, notify: d.progressFunc})
	}

	buffer := make([]byte, d.chunkSize)
	if _, err := io.CopyBuffer(io.MultiWriter(writers...), body, buffer); err != nil {
		return err
	}

	if bar != nil {
		return bar.Finish()
	}

	return nil
}

// place moves the downloaded bytes to destination, replacing any previous file.
// A placeholder created here is removed again when the move fails.
func place(downloaded io.Reader, destination string) error {
	// go-update renames the current target away first, so it has to exist.
	createdPlaceholder := false

	if _, err := os.Stat(destination); errors.Is(err, os.ErrNotExist) {
		empty, createErr := os.Create(destination)
		if createErr != nil {
			return createErr
		}

		createdPlaceholder = true

		if err = empty.Close(); err != nil {
			_ = os.Remove(destination)
			return err
		}
	}

	err := goupdate.Apply(downloaded, goupdate.Options{
		TargetPath: destination,
		TargetMode: DefaultFileMode,
	})
	if err != nil && createdPlaceholder {
		_ = os.Remove(destination)
	}

	return err
}

// progressCounter reports cumulative bytes to a ProgressFunc.
type progressCounter struct {
	written int64
	total   int64
	notify  ProgressFunc
}

func (c *progressCounter) Write(p []byte) (int, error) {
	c.written += int64(len(p))
	c.notify(c.written, c.total)

	return len(p), nil
}
