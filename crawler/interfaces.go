package crawler

import (
	"context"

	"github.com/mycok/wikigraph/linkgraph/graph"
)

//go:generate mockgen -package mock_crawler -destination mocks/mock.go github.com/mycok/wikigraph/crawler Fetcher,LinkExtractor,Graph

// Fetcher should be implemented by objects that can retrieve the raw HTML
// content of a page. Implementations must honour ctx cancellation and
// deadlines.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LinkExtractor should be implemented by objects that can parse a page's raw
// content and return the absolute, de-duplicated links it points to.
type LinkExtractor interface {
	ExtractLinks(pageURL string, content []byte) ([]string, error)
}

// Graph should be implemented by link graph stores the crawler assembles its
// output into. Implementations must be safe for concurrent use.
type Graph interface {
	// UpsertLink creates a new or updates an existing link.
	UpsertLink(link *graph.Link) error

	// UpsertEdge creates a new or updates an existing edge.
	UpsertEdge(edge *graph.Edge) error

	// NodeCount returns the number of links in the graph.
	NodeCount() (int, error)

	// EdgeCount returns the number of distinct directed edges in the graph.
	EdgeCount() (int, error)
}
