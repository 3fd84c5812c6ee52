/*
	crawler package implements a concurrent, depth-bounded, breadth-first
	link crawler. Starting from a seed URL it resolves every page of a BFS
	level concurrently, records a directed edge from each page to every link
	found on it and advances to the next level only once the current level
	has been fully resolved and assembled. Each level runs as a two-stage
	pipeline:
		1. Resolve: every frontier URL is turned into its link set. Results
		   are memoized in a LinkCache and fetches are bounded by a FetchGate.
		2. Assemble: the edges from each resolved page are added to the graph
		   by a fixed pool of workers.
	The level sink then builds the next frontier from links that were never
	enqueued before in the same crawl.
*/

package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mycok/wikigraph/pipeline"
)

// Result describes the outcome of a crawl.
type Result struct {
	// The graph the crawl assembled.
	Graph Graph

	// The number of nodes and directed edges in Graph.
	NodeCount int
	EdgeCount int

	// Per-level statistics in BFS order.
	Levels []LevelStats

	// The highest number of simultaneously in-flight fetches.
	PeakInFlight int

	// The time the crawl took.
	Elapsed time.Duration
}

// LevelStats describes a single BFS level.
type LevelStats struct {
	Depth      int
	Width      int
	Resolved   int
	Failed     int
	CacheHits  int
	Discovered int
	Elapsed    time.Duration
}

// Crawler executes depth-bounded breadth-first crawls.
type Crawler struct {
	cfg Config
}

// New validates cfg and returns a configured Crawler.
func New(cfg Config) (*Crawler, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("crawler: config validation failed: %w", err)
	}

	return &Crawler{cfg: cfg}, nil
}

// Crawl builds the link graph reachable from seedURL within maxDepth hops.
// Pages at depth maxDepth are resolved and their edges recorded, but links
// discovered there are not followed. Calls to Crawl block until the crawl
// completes, a graph store error occurs or ctx is cancelled. In the last two
// cases the partially assembled result is returned alongside the error.
func (c *Crawler) Crawl(
	ctx context.Context, seedURL string, maxDepth int,
) (*Result, error) {

	if seedURL == "" {
		return nil, ErrInvalidSeed
	}
	if maxDepth < 0 {
		return nil, ErrInvalidDepth
	}

	g, err := c.cfg.NewGraph()
	if err != nil {
		return nil, fmt.Errorf("crawler: create graph: %w", err)
	}

	cache := c.cfg.LinkCache
	if cache == nil {
		cache = NewLinkCache()
	}

	gate := NewFetchGate(c.cfg.MaxInFlight)
	resolver := newPageResolver(&c.cfg, cache, gate)
	assembler := NewGraphAssembler(g)

	logger := c.cfg.Logger.WithFields(logrus.Fields{
		"seed_url":  seedURL,
		"max_depth": maxDepth,
	})

	res := &Result{Graph: g}
	startedAt := c.cfg.Clock.Now()

	enqueued := map[string]struct{}{seedURL: {}}
	frontier := []string{seedURL}

	for depth := 0; len(frontier) > 0; depth++ {
		if depth > maxDepth {
			logger.WithField("dropped", len(frontier)).Debug("max depth reached; dropping pending frontier")
			break
		}

		next, stats, err := c.runLevel(ctx, depth, frontier, enqueued, resolver, assembler)
		res.Levels = append(res.Levels, stats)

		if err != nil {
			c.finalize(res, gate, assembler, startedAt)
			return res, fmt.Errorf("crawler: level %d: %w", depth, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.finalize(res, gate, assembler, startedAt)
			return res, ctxErr
		}

		logger.WithFields(logrus.Fields{
			"depth":        stats.Depth,
			"width":        stats.Width,
			"failed":       stats.Failed,
			"cache_hits":   stats.CacheHits,
			"discovered":   stats.Discovered,
			"elapsed_time": stats.Elapsed.String(),
		}).Info("level complete")

		frontier = next
	}

	c.finalize(res, gate, assembler, startedAt)

	logger.WithFields(logrus.Fields{
		"nodes":        res.NodeCount,
		"edges":        res.EdgeCount,
		"elapsed_time": res.Elapsed.String(),
	}).Info("crawl complete")

	return res, nil
}

// runLevel resolves and assembles every URL of a single level. It returns
// only after all of them have been processed.
func (c *Crawler) runLevel(
	ctx context.Context, depth int, frontier []string,
	enqueued map[string]struct{}, resolver *pageResolver,
	assembler *GraphAssembler,
) ([]string, LevelStats, error) {

	startedAt := c.cfg.Clock.Now()

	p := pipeline.New(
		pipeline.NewDynamicWorkerPool(resolver, len(frontier)),
		pipeline.NewFixedWorkerPool(assembler, c.cfg.NumOfAssemblers),
	)

	sink := newLevelSink(enqueued, depth, len(frontier), c.cfg.Logger)
	err := p.Execute(ctx, newLevelSource(frontier, depth), sink)

	stats := sink.stats
	stats.Discovered = len(sink.nextFrontier())
	stats.Elapsed = c.cfg.Clock.Now().Sub(startedAt)

	return sink.nextFrontier(), stats, err
}

// finalize fills in the summary fields of res. Node and edge counts cover
// this crawl only, even when the graph store outlives it.
func (c *Crawler) finalize(
	res *Result, gate *FetchGate, assembler *GraphAssembler, startedAt time.Time,
) {
	res.PeakInFlight = gate.Peak()
	res.Elapsed = c.cfg.Clock.Now().Sub(startedAt)
	res.NodeCount = assembler.NodeCount()
	res.EdgeCount = assembler.EdgeCount()
}
