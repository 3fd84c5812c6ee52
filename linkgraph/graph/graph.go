/*
	graph package defines types that outline the behavior of the link
	graph data stores used to accumulate the pages and hyperlinks
	discovered by a crawl.
*/

package graph

import (
	"time"

	"github.com/google/uuid"
)

// Graph should be implemented by graph data stores / types.
type Graph interface {
	// UpsertLink creates a new or updates an existing link.
	UpsertLink(link *Link) error

	// FindLink performs a link lookup by id.
	FindLink(id uuid.UUID) (*Link, error)

	// FindLinkByURL performs a link lookup by URL.
	FindLinkByURL(url string) (*Link, error)

	// Links returns an iterator for the set of all links in the graph.
	Links() (LinkIterator, error)

	// UpsertEdge creates a new edge or refreshes the UpdatedAt timestamp of
	// an existing edge with the same Src and Dest. It is idempotent with
	// respect to the (Src, Dest) pair.
	UpsertEdge(edge *Edge) error

	// Edges returns an iterator for the set of all edges in the graph.
	Edges() (EdgeIterator, error)

	// NodeCount returns the number of links stored in the graph.
	NodeCount() (int, error)

	// EdgeCount returns the number of distinct edges stored in the graph.
	EdgeCount() (int, error)
}

// LinkIterator is implemented by types that iterate graph links.
type LinkIterator interface {
	Iterator

	// Link returns the currently fetched link object.
	Link() *Link
}

// EdgeIterator is implemented by types that iterate graph edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched Edge object.
	Edge() *Edge
}

// Iterator should be embedded / implemented by types that require
// iteration functionality.
type Iterator interface {
	// Next loads the next item, returns false when no more items
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error
}

// Link represents a web page. it serves as a graph node / vertex.
type Link struct {
	ID          uuid.UUID // Link unique identifier
	URL         string    // Link target
	RetrievedAt time.Time // Time the page outbound links were resolved
}

// Edge represents a graph edge that originates from Src and terminates
// at Dest. it serves as a model / schema object.
type Edge struct {
	ID        uuid.UUID // Edge unique identifier
	Src       uuid.UUID // Unique identifier for edge origin / source link ID
	Dest      uuid.UUID // Unique identifier for edge destination / destination link ID
	UpdatedAt time.Time // Last updated timestamp
}
