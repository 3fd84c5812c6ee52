package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mycok/wikigraph/linkgraph/graph"
)

// Static and compile-time check to ensure InMemoryGraph implements
// Graph interface.
var _ graph.Graph = (*InMemoryGraph)(nil)

// edgeKey identifies an edge by its endpoints. Two edges with the same key
// are the same edge.
type edgeKey struct {
	src, dest uuid.UUID
}

// InMemoryGraph implements an in-memory link and edge graph that can be concurrently
// accessed by multiple clients.
type InMemoryGraph struct {
	mu           sync.RWMutex
	links        map[uuid.UUID]*graph.Link
	edges        map[uuid.UUID]*graph.Edge
	linkURLIndex map[string]*graph.Link
	edgeIndex    map[edgeKey]*graph.Edge
}

// NewInMemoryGraph creates a new in-memory link graph.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{
		links:        make(map[uuid.UUID]*graph.Link),
		edges:        make(map[uuid.UUID]*graph.Edge),
		linkURLIndex: make(map[string]*graph.Link),
		edgeIndex:    make(map[edgeKey]*graph.Edge),
	}
}

// UpsertLink creates a new or updates an existing link.
func (s *InMemoryGraph) UpsertLink(link *graph.Link) error {
	// Acquire a general lock to avoid data races while mutating graph data.
	// Note: No other writes and reads are allowed for as long as this lock
	// is active.
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check if a link with the same URL already exists.
	// If so, convert the operation into an update: the provided link takes
	// the existing link ID and the most recent RetrievedAt value wins.
	if l, exists := s.linkURLIndex[link.URL]; exists {
		link.ID = l.ID
		existingLinkRetrievedAt := l.RetrievedAt
		*l = *link

		if existingLinkRetrievedAt.After(link.RetrievedAt) {
			l.RetrievedAt = existingLinkRetrievedAt
			link.RetrievedAt = existingLinkRetrievedAt
		}

		return nil
	}

	// Try to assign a random ID to a new link. in case the generated ID
	// is already used, run the ID generator until a unique ID is found.
	for {
		link.ID = uuid.New()
		if _, exists := s.links[link.ID]; !exists {
			break
		}
	}

	// Make a new local pointer to the link provided by the user.
	// This step protects the local link data from side-effects triggered
	// outside this method.
	lCopy := new(graph.Link)
	*lCopy = *link

	s.links[lCopy.ID] = lCopy
	s.linkURLIndex[lCopy.URL] = lCopy

	return nil
}

// FindLink performs a link lookup by id.
func (s *InMemoryGraph) FindLink(id uuid.UUID) (*graph.Link, error) {
	// Read lock allows other processes or goroutines to perform reads by
	// concurrently acquiring other read locks.
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.links[id]
	if !exists {
		return nil, fmt.Errorf("find link: %w", graph.ErrNotFound)
	}

	lCopy := new(graph.Link)
	*lCopy = *l

	return lCopy, nil
}

// FindLinkByURL performs a link lookup by URL.
func (s *InMemoryGraph) FindLinkByURL(url string) (*graph.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.linkURLIndex[url]
	if !exists {
		return nil, fmt.Errorf("find link by url: %w", graph.ErrNotFound)
	}

	lCopy := new(graph.Link)
	*lCopy = *l

	return lCopy, nil
}

// Links returns an iterator for the set of all links in the graph.
func (s *InMemoryGraph) Links() (graph.LinkIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*graph.Link, 0, len(s.links))
	for _, link := range s.links {
		list = append(list, link)
	}

	return newLinkIterator(s, list), nil
}

// UpsertEdge creates a new edge or refreshes the UpdatedAt timestamp of an
// existing edge with the same Src and Dest.
func (s *InMemoryGraph) UpsertEdge(edge *graph.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, isSrcExists := s.links[edge.Src]
	_, isDestExists := s.links[edge.Dest]
	if !isSrcExists || !isDestExists {
		return fmt.Errorf("upsert edge: %w", graph.ErrUnknownEdgeLinks)
	}

	key := edgeKey{src: edge.Src, dest: edge.Dest}
	if existingEdge, exists := s.edgeIndex[key]; exists {
		existingEdge.UpdatedAt = time.Now()
		// Copy the contents of the matching edge to the provided edge.
		// ie: the provided edge now has the ID from the existing edge.
		*edge = *existingEdge

		return nil
	}

	// Try to assign a random ID to a new edge. in case the generated ID
	// is already used, run the ID generator until a unique ID is found.
	for {
		edge.ID = uuid.New()
		if _, exists := s.edges[edge.ID]; !exists {
			break
		}
	}

	edge.UpdatedAt = time.Now()
	eCopy := new(graph.Edge)
	*eCopy = *edge

	s.edges[eCopy.ID] = eCopy
	s.edgeIndex[key] = eCopy

	return nil
}

// Edges returns an iterator for the set of all edges in the graph.
func (s *InMemoryGraph) Edges() (graph.EdgeIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*graph.Edge, 0, len(s.edges))
	for _, edge := range s.edges {
		list = append(list, edge)
	}

	return newEdgeIterator(s, list), nil
}

// NodeCount returns the number of links stored in the graph.
func (s *InMemoryGraph) NodeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.links), nil
}

// EdgeCount returns the number of distinct edges stored in the graph.
func (s *InMemoryGraph) EdgeCount() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.edges), nil
}
