package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/mycok/wikigraph/linkgraph/graph"
	"github.com/mycok/wikigraph/pipeline"
)

var _ pipeline.Processor = (*GraphAssembler)(nil)

type edgeKey struct {
	src, dest string
}

// GraphAssembler records the directed edges discovered by a crawl into a
// Graph. Nodes are only ever created as endpoints of edges. It is safe for
// concurrent use as long as the underlying Graph is.
//
// The node and edge counts only cover what was added through this
// assembler, so a persistent Graph holding earlier crawls does not inflate
// them.
type GraphAssembler struct {
	graph Graph

	mu    sync.Mutex
	nodes map[string]struct{}
	edges map[edgeKey]struct{}
}

// NewGraphAssembler returns a GraphAssembler that writes into g.
func NewGraphAssembler(g Graph) *GraphAssembler {
	return &GraphAssembler{
		graph: g,
		nodes: make(map[string]struct{}),
		edges: make(map[edgeKey]struct{}),
	}
}

// AddEdge records the directed edge src -> dest. Adding the same edge twice
// leaves the graph unchanged.
func (a *GraphAssembler) AddEdge(src, dest string) error {
	srcLink := &graph.Link{URL: src}
	if err := a.graph.UpsertLink(srcLink); err != nil {
		return err
	}

	return a.addEdgeFrom(srcLink, dest)
}

// NodeCount returns the number of distinct nodes added by this assembler.
func (a *GraphAssembler) NodeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.nodes)
}

// EdgeCount returns the number of distinct directed edges added by this
// assembler.
func (a *GraphAssembler) EdgeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.edges)
}

// Process adds an edge from the payload URL to each of its links. Pages
// without links leave the graph untouched. Graph errors abort the crawl.
func (a *GraphAssembler) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	p, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, fmt.Errorf("graph assembler: unexpected payload type %T", payload)
	}

	if len(p.Links) == 0 {
		return p, nil
	}

	// The source was retrieved successfully, so stamp its retrieval time.
	srcLink := &graph.Link{URL: p.URL, RetrievedAt: p.RetrievedAt}
	if err := a.graph.UpsertLink(srcLink); err != nil {
		return nil, err
	}

	for _, dest := range p.Links {
		if err := a.addEdgeFrom(srcLink, dest); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (a *GraphAssembler) addEdgeFrom(srcLink *graph.Link, dest string) error {
	destLink := &graph.Link{URL: dest}
	if dest == srcLink.URL {
		destLink = srcLink
	} else if err := a.graph.UpsertLink(destLink); err != nil {
		return err
	}

	if err := a.graph.UpsertEdge(&graph.Edge{Src: srcLink.ID, Dest: destLink.ID}); err != nil {
		return err
	}

	a.mu.Lock()
	a.nodes[srcLink.URL] = struct{}{}
	a.nodes[dest] = struct{}{}
	a.edges[edgeKey{src: srcLink.URL, dest: dest}] = struct{}{}
	a.mu.Unlock()

	return nil
}
