/*
	extract package implements crawler.LinkExtractor on top of the
	golang.org/x/net/html tokenizer-backed parser. Extracted links are made
	absolute, stripped of fragments, de-duplicated and filtered down to the
	links that point at internal content pages.
*/

package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/mycok/wikigraph/crawler"
	"github.com/mycok/wikigraph/crawler/fetch"
)

var _ crawler.LinkExtractor = (*LinkExtractor)(nil)

// Filter decides which of the links found on a page are kept.
type Filter struct {
	// Keep only links to the same host as the page.
	SameHost bool

	// Keep only links whose path starts with PathPrefix. Empty keeps all.
	PathPrefix string

	// Drop links whose path after PathPrefix, or whose query, contains
	// NamespaceDelimiter. Empty disables the check.
	NamespaceDelimiter string

	// Drop links marked with rel="nofollow".
	SkipNoFollow bool
}

// WikiFilter returns the filter for encyclopedia article pages: same host,
// under /wiki/ and outside of any "Namespace:" pages.
func WikiFilter() Filter {
	return Filter{
		SameHost:           true,
		PathPrefix:         "/wiki/",
		NamespaceDelimiter: ":",
	}
}

// LinkExtractor extracts the links embedded in an HTML page.
type LinkExtractor struct {
	filter Filter
}

// New returns a LinkExtractor that applies filter to every extracted link.
func New(filter Filter) *LinkExtractor {
	return &LinkExtractor{filter: filter}
}

type anchor struct {
	href     string
	noFollow bool
}

// ExtractLinks parses content and returns the absolute, de-duplicated links
// it contains, in document order.
func (e *LinkExtractor) ExtractLinks(pageURL string, content []byte) ([]string, error) {
	pageRef, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract: parse page url: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	baseHref, anchors := collectAnchors(doc)

	// A <base href> overrides the page URL for resolving relative links.
	relativeTo := pageRef
	if baseHref != "" {
		if baseURL := resolveToAbsoluteURL(pageRef, withTrailingSlash(baseHref)); baseURL != nil {
			relativeTo = baseURL
		}
	}

	var links []string
	seen := make(map[string]struct{})
	for _, a := range anchors {
		if a.noFollow && e.filter.SkipNoFollow {
			continue
		}

		link := resolveToAbsoluteURL(relativeTo, a.href)
		if !e.shouldRetainURL(pageRef.Hostname(), link) {
			continue
		}

		link.Fragment = ""
		link.RawFragment = ""
		linkStr := link.String()

		if fetch.IsExcludedURL(linkStr) {
			continue
		}
		if _, exists := seen[linkStr]; exists {
			continue
		}

		seen[linkStr] = struct{}{}
		links = append(links, linkStr)
	}

	return links, nil
}

func (e *LinkExtractor) shouldRetainURL(pageHost string, link *url.URL) bool {
	if link == nil {
		return false
	}

	if link.Scheme != "http" && link.Scheme != "https" {
		return false
	}

	if e.filter.SameHost && !strings.EqualFold(link.Hostname(), pageHost) {
		return false
	}

	if !strings.HasPrefix(link.Path, e.filter.PathPrefix) {
		return false
	}

	if e.filter.NamespaceDelimiter != "" {
		rest := strings.TrimPrefix(link.Path, e.filter.PathPrefix)
		if link.RawQuery != "" {
			// Index pages take the target title as a query parameter.
			query, err := url.QueryUnescape(link.RawQuery)
			if err != nil {
				query = link.RawQuery
			}
			rest += "?" + query
		}

		if strings.Contains(rest, e.filter.NamespaceDelimiter) {
			return false
		}
	}

	return true
}

// collectAnchors walks the document and returns the first <base href> value
// along with every <a href> in document order.
func collectAnchors(doc *html.Node) (string, []anchor) {
	var (
		baseHref string
		anchors  []anchor
	)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "base":
				if href := strings.TrimSpace(getAttr(n, "href")); baseHref == "" && href != "" {
					baseHref = href
				}
			case "a":
				if href := strings.TrimSpace(getAttr(n, "href")); href != "" {
					anchors = append(anchors, anchor{
						href:     href,
						noFollow: hasRelToken(getAttr(n, "rel"), "nofollow"),
					})
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	return baseHref, anchors
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}

	return ""
}

func hasRelToken(rel, token string) bool {
	for _, t := range strings.Fields(rel) {
		if strings.EqualFold(t, token) {
			return true
		}
	}

	return false
}

func withTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}

	return s + "/"
}

// resolveToAbsoluteURL expands target into an absolute URL. Targets starting
// with "//" inherit the scheme of relativeTo; every other target is resolved
// relative to it. Unparsable targets yield nil.
func resolveToAbsoluteURL(relativeTo *url.URL, target string) *url.URL {
	if target == "" {
		return nil
	}

	if strings.HasPrefix(target, "//") {
		target = relativeTo.Scheme + ":" + target
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return nil
	}

	return relativeTo.ResolveReference(parsedURL)
}
