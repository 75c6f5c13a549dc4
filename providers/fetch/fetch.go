package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/leofalp/flowlab/internal/utils"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the default User-Agent header value.
	DefaultUserAgent = "flowlab-fetch/1.0"
	// MaxBodySize is the maximum response body size (10MB).
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout is the maximum time to wait for a TCP connection.
	DialTimeout = 10 * time.Second
	// ResponseHeaderTimeout is the maximum time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second
)

// Reader fetches web pages and converts their HTML to Markdown, producing
// text suitable as prompt context for a workflow node.
type Reader struct {
	client    *http.Client
	userAgent string
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithHttpClient sets a custom HTTP client (tests point it at a local
// server).
func WithHttpClient(client *http.Client) ReaderOption {
	return func(reader *Reader) {
		reader.client = client
	}
}

// WithUserAgent overrides the User-Agent header sent with every request.
func WithUserAgent(userAgent string) ReaderOption {
	return func(reader *Reader) {
		reader.userAgent = userAgent
	}
}

// NewReader creates a Reader with conservative transport timeouts, so a slow
// or unresponsive server can never hang a workflow node past its deadline.
func NewReader(opts ...ReaderOption) *Reader {
	reader := &Reader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: ResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: func(request *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Page is the fetched content of one URL.
type Page struct {
	// URL is the final URL after following all redirects.
	URL string

	// Markdown is the page content converted from HTML.
	Markdown string
}

// Read retrieves the page at the given URL and returns its content as
// Markdown. Partial URLs (e.g. "example.com") are normalised by prepending
// "https://". The body is capped at [MaxBodySize] bytes.
func (reader *Reader) Read(ctx context.Context, pageURL string) (*Page, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if !strings.HasPrefix(pageURL, "http://") && !strings.HasPrefix(pageURL, "https://") {
		pageURL = "https://" + pageURL
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", reader.userAgent)

	response, err := reader.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(response.Body)

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d %s", response.StatusCode, response.Status)
	}

	// Read one byte past the cap so a body of exactly MaxBodySize is accepted.
	htmlBytes, err := io.ReadAll(io.LimitReader(response.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(htmlBytes) > MaxBodySize {
		return nil, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return &Page{
		URL:      response.Request.URL.String(),
		Markdown: markdown,
	}, nil
}
