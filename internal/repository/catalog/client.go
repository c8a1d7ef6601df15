package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/PuerkitoBio/goquery"

	"github.com/oshokin/jlink-updater/internal/version"
)

// ErrRemote is returned when the download page answers with a non-200 status.
var ErrRemote = errors.New("unexpected download page response")

// errPageURLRequired is returned when no page URL is configured.
var errPageURLRequired = errors.New("page URL must be provided")

// Client fetches the download page.
type Client struct {
	// pageURL is the address of the download page.
	pageURL string
	// httpClient performs the request.
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a client for the page at pageURL.
func NewClient(pageURL string, opts ...Option) (*Client, error) {
	if pageURL == "" {
		return nil, errPageURLRequired
	}

	client := &Client{
		pageURL:    pageURL,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Fetch downloads and parses the page.
func (c *Client) Fetch(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch download page: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", c.pageURL, response.Status, ErrRemote)
	}

	return ParseDocument(response.Body)
}
