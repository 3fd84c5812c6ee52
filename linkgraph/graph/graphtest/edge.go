package graphtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/wikigraph/linkgraph/graph"
)

// TestEdgeUpsert verifies the edge upsert logic.
func (s *BaseSuite) TestEdgeUpsert(c *check.C) {
	linkIDs := s.upsertLinks(c, 3)

	e := &graph.Edge{
		Src:  linkIDs[0],
		Dest: linkIDs[1],
	}

	err := s.g.UpsertEdge(e)
	c.Assert(err, check.IsNil)
	c.Assert(e.ID, check.Not(check.Equals), uuid.Nil, check.Commentf(
		"expected an ID to be assigned to the new edge",
	))
	c.Assert(e.UpdatedAt.IsZero(), check.Equals, false, check.Commentf(
		"UpdatedAt field not set",
	))

	// Upserting the same (src, dest) pair must not create a second edge.
	again := &graph.Edge{
		Src:  linkIDs[0],
		Dest: linkIDs[1],
	}
	err = s.g.UpsertEdge(again)
	c.Assert(err, check.IsNil)
	c.Assert(again.ID, check.Equals, e.ID, check.Commentf("edge ID changed while upserting"))

	count, err := s.g.EdgeCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, 1)

	// The reverse direction is a distinct edge.
	reverse := &graph.Edge{
		Src:  linkIDs[1],
		Dest: linkIDs[0],
	}
	c.Assert(s.g.UpsertEdge(reverse), check.IsNil)
	c.Assert(reverse.ID, check.Not(check.Equals), e.ID)

	count, err = s.g.EdgeCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, 2)

	// Create edge with unknown link IDs
	invalid := &graph.Edge{
		Src:  linkIDs[0],
		Dest: uuid.New(),
	}
	err = s.g.UpsertEdge(invalid)
	c.Assert(errors.Is(err, graph.ErrUnknownEdgeLinks), check.Equals, true)
}

// TestSelfEdge verifies that a page linking to itself produces a single
// node and a single edge.
func (s *BaseSuite) TestSelfEdge(c *check.C) {
	linkIDs := s.upsertLinks(c, 1)

	c.Assert(s.g.UpsertEdge(&graph.Edge{Src: linkIDs[0], Dest: linkIDs[0]}), check.IsNil)

	nodes, err := s.g.NodeCount()
	c.Assert(err, check.IsNil)
	c.Assert(nodes, check.Equals, 1)

	edges, err := s.g.EdgeCount()
	c.Assert(err, check.IsNil)
	c.Assert(edges, check.Equals, 1)
}

// TestConcurrentEdgeUpserts ensures concurrent upserts of the same edges
// collapse into one edge per (src, dest) pair.
func (s *BaseSuite) TestConcurrentEdgeUpserts(c *check.C) {
	var (
		wg           sync.WaitGroup
		numOfWriters = 8
		numOfEdges   = 25
	)

	linkIDs := s.upsertLinks(c, numOfEdges+1)

	wg.Add(numOfWriters)

	for i := 0; i < numOfWriters; i++ {
		go func() {
			defer wg.Done()

			for j := 1; j <= numOfEdges; j++ {
				err := s.g.UpsertEdge(&graph.Edge{Src: linkIDs[0], Dest: linkIDs[j]})
				c.Check(err, check.IsNil)
			}
		}()
	}

	s.waitOrTimeout(c, &wg)

	count, err := s.g.EdgeCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, numOfEdges)
}

// TestConcurrentEdgeIterators ensures that multiple clients can concurrently
// access the store without causing data races.
func (s *BaseSuite) TestConcurrentEdgeIterators(c *check.C) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numEdges     = 100
	)

	linkIDs := s.upsertLinks(c, numEdges*2)

	for i := 0; i < numEdges; i++ {
		e := &graph.Edge{
			Src:  linkIDs[0],
			Dest: linkIDs[i],
		}

		c.Assert(s.g.UpsertEdge(e), check.IsNil)
	}

	wg.Add(numIterators)

	for i := 0; i < numIterators; i++ {
		go func(id int) {
			defer wg.Done()

			comment := check.Commentf("iterator %d", id)
			seen := make(map[string]bool)

			it, err := s.g.Edges()
			c.Assert(err, check.IsNil)

			for it.Next() {
				e := it.Edge()
				edgeID := e.ID.String()
				c.Assert(seen[edgeID], check.Equals, false, check.Commentf(
					"Iterator %d iterated the same edge twice", id,
				))
				seen[edgeID] = true
			}

			c.Assert(seen, check.HasLen, numEdges, comment)
			c.Assert(it.Error(), check.IsNil, comment)
			c.Assert(it.Close(), check.IsNil, comment)
		}(i)
	}

	s.waitOrTimeout(c, &wg)
}

func (s *BaseSuite) upsertLinks(c *check.C, n int) []uuid.UUID {
	linkIDs := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		c.Assert(s.g.UpsertLink(l), check.IsNil)

		linkIDs[i] = l.ID
	}

	return linkIDs
}
