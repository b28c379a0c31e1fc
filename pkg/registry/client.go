// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultBaseURL is the root of the public NUR registry.
	DefaultBaseURL = "https://raw.githubusercontent.com/neutron-modules/nur/refs/heads/main"

	// DefaultUserAgent is sent with every registry request.
	DefaultUserAgent = "Box/1.0"

	// IndexFileName is the index document at the registry root.
	IndexFileName = "nur.json"

	fileScheme = "file://"

	// maxRedirects bounds redirect chains (GitHub raw URLs redirect once or twice).
	maxRedirects = 10
)

var (
	// ErrModuleNotFound is returned when a module name is absent from the index.
	ErrModuleNotFound = errors.New("module not found")

	// ErrFetchFailed is returned when a document or artifact cannot be retrieved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrEmptyBody is returned when a download succeeds with zero bytes.
	ErrEmptyBody = errors.New("empty response body")

	// ErrUnsupportedScheme is returned for URLs that are not http, https or file.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)

type (
	// Client fetches the NUR index, module manifests and artifacts.
	// The index is loaded at most once per Client. A Client is not safe for
	// concurrent use.
	Client struct {
		baseURL   string
		userAgent string
		timeout   time.Duration
		http      *resty.Client
		logger    *log.Logger

		index ModuleIndex
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)

	// HTTPStatusError is returned when the server answers with a non-2xx status.
	HTTPStatusError struct {
		URL        string
		StatusCode int
	}
)

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap returns ErrFetchFailed for errors.Is() compatibility.
func (e *HTTPStatusError) Unwrap() error { return ErrFetchFailed }

// WithBaseURL overrides the registry root. A trailing slash is dropped so
// that relative manifest URLs concatenate cleanly.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets the underlying HTTP client (useful for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a registry client for the public NUR unless overridden.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		logger:    log.NewWithOptions(os.Stderr, log.Options{Prefix: "registry", Level: log.WarnLevel}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New()
	}
	c.http.
		SetHeader("User-Agent", c.userAgent).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetLogger(c.logger)
	if c.timeout > 0 {
		c.http.SetTimeout(c.timeout)
	}
	return c
}

// BaseURL returns the registry root used to resolve relative manifest URLs.
func (c *Client) BaseURL() string { return c.baseURL }

// IndexURL returns the location of nur.json.
func (c *Client) IndexURL() string { return c.baseURL + "/" + IndexFileName }

// FetchIndex loads the module index. Once an index has been loaded further
// calls return immediately; a failed attempt leaves the index empty and may
// be retried.
func (c *Client) FetchIndex(ctx context.Context) error {
	if c.index != nil {
		return nil
	}

	u := c.IndexURL()
	c.logger.Debug("fetching index", "url", u)
	data, err := c.Download(ctx, u)
	if err != nil {
		return fmt.Errorf("fetch registry index: %w", err)
	}
	idx, err := ParseIndex(data, c.baseURL)
	if err != nil {
		return fmt.Errorf("parse registry index %s: %w", u, err)
	}
	c.index = idx
	c.logger.Debug("index loaded", "modules", len(idx))
	return nil
}

// Index returns the loaded index, which is empty before FetchIndex succeeds.
func (c *Client) Index() ModuleIndex {
	if c.index == nil {
		return ModuleIndex{}
	}
	return c.index
}

// ModuleURL returns the manifest URL of name, or "" when it is unknown.
func (c *Client) ModuleURL(name string) string {
	return c.index[name]
}

// ListModules returns every module name in the index, sorted.
func (c *Client) ListModules() []string {
	return c.Index().Names()
}

// Search returns the index names that contain query, ignoring case, sorted.
func (c *Client) Search(query string) []string {
	q := strings.ToLower(query)
	var matches []string
	for _, name := range c.ListModules() {
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, name)
		}
	}
	return matches
}

// FetchModuleMetadata fetches and parses the manifest of name, loading the
// index first if needed. The returned metadata always carries Name, even when
// an error is returned; every other field is empty in that case.
func (c *Client) FetchModuleMetadata(ctx context.Context, name string) (ModuleMetadata, error) {
	empty := ModuleMetadata{Name: name}

	if err := c.FetchIndex(ctx); err != nil {
		return empty, err
	}
	u := c.ModuleURL(name)
	if u == "" {
		return empty, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	c.logger.Debug("fetching manifest", "module", name, "url", u)
	data, err := c.Download(ctx, u)
	if err != nil {
		return empty, fmt.Errorf("fetch manifest of %s: %w", name, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return empty, fmt.Errorf("%w: manifest of %s: %w", ErrFetchFailed, name, err)
	}
	m.Name = name
	return m, nil
}

// Download retrieves the body at u. A successful call never returns an empty
// body; zero bytes are reported as ErrEmptyBody.
func (c *Client) Download(ctx context.Context, u string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(u, fileScheme):
		data, err = readFileURL(u)
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		data, err = c.get(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u)
	}
	if err != nil {
		c.logger.Debug("download failed", "url", u, "err", err)
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyBody, u)
	}
	return data, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

func readFileURL(u string) ([]byte, error) {
	f, err := os.Open(FilePath(u))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return data, nil
}

// FileURL converts an absolute local path into a file:// URL understood by
// Download.
func FileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return fileScheme + p
}

// FilePath converts a file:// URL back into a local path.
func FilePath(u string) string {
	p := strings.TrimPrefix(u, fileScheme)
	// file:///C:/dir -> C:/dir
	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}
