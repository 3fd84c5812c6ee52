/*
	fetch package implements crawler.Fetcher on top of an HTTP client. It
	refuses to fetch links that point to non-HTML assets or to hosts that
	resolve to private networks, and only accepts successful HTML responses.
*/

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/mycok/wikigraph/crawler"
	"github.com/mycok/wikigraph/crawler/privnet"
)

//go:generate mockgen -package mock_fetch -destination mocks/mock.go github.com/mycok/wikigraph/crawler/fetch URLGetter,PrivateNetworkDetector

// DefaultMaxBodySize caps the number of bytes read from a response body.
const DefaultMaxBodySize = 10 << 20

var (
	_ crawler.Fetcher        = (*HTTPFetcher)(nil)
	_ PrivateNetworkDetector = (*privnet.NetDetector)(nil)

	// Locate links that point to resources that don't serve html content.
	exclusionRegex = regexp.MustCompile(`(?i)\.(?:jpg|jpeg|png|gif|svg|ico|css|js|pdf|zip)$`)

	// ErrExcludedURL is returned for links that point to non-HTML assets.
	ErrExcludedURL = errors.New("url points to a non-html resource")

	// ErrPrivateNetwork is returned for hosts that resolve to a private
	// network.
	ErrPrivateNetwork = errors.New("host resolves to a private network")

	// ErrNonHTMLContent is returned when the response is not an HTML page.
	ErrNonHTMLContent = errors.New("response content is not html")
)

// StatusError is returned when the server responds with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.Code)
}

// URLGetter should be implemented by objects that perform HTTP requests.
// *http.Client satisfies it.
type URLGetter interface {
	Do(req *http.Request) (*http.Response, error)
}

// PrivateNetworkDetector should be implemented by objects that can detect
// whether a host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsNetworkPrivate(address string) (bool, error)
}

// Config defines the options of an HTTPFetcher.
type Config struct {
	// An API for performing HTTP requests. If not specified,
	// http.DefaultClient will be used instead.
	Client URLGetter

	// An API for detecting private network addresses. If not specified,
	// a default implementation that handles the private network ranges
	// defined in RFC1918 will be used instead.
	NetDetector PrivateNetworkDetector

	// The User-Agent header sent with every request.
	UserAgent string

	// The maximum number of body bytes read per page. Defaults to
	// DefaultMaxBodySize.
	MaxBodySize int64
}

// HTTPFetcher retrieves page contents over HTTP(S).
type HTTPFetcher struct {
	client      URLGetter
	netDetector PrivateNetworkDetector
	userAgent   string
	maxBodySize int64
}

// New returns an HTTPFetcher configured with cfg.
func New(cfg Config) (*HTTPFetcher, error) {
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}

	if cfg.NetDetector == nil {
		detector, err := privnet.NewDetector()
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		cfg.NetDetector = detector
	}

	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	return &HTTPFetcher{
		client:      cfg.Client,
		netDetector: cfg.NetDetector,
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
	}, nil
}

// IsExcludedURL reports whether rawURL points to a resource that doesn't
// serve html content, judging by its extension.
func IsExcludedURL(rawURL string) bool {
	return exclusionRegex.MatchString(rawURL)
}

// Fetch performs a GET request for rawURL and returns the response body.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if IsExcludedURL(rawURL) {
		return nil, ErrExcludedURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	isPrivate, err := f.netDetector.IsNetworkPrivate(parsedURL.Hostname())
	if err != nil {
		return nil, err
	}
	if isPrivate {
		return nil, ErrPrivateNetwork
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Only allow 2xx responses.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "html") {
		return nil, ErrNonHTMLContent
	}

	return io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
}
