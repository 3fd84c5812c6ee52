package graphtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/wikigraph/linkgraph/graph"
)

// TestLinkUpsert verifies the link upsert logic.
func (s *BaseSuite) TestLinkUpsert(c *check.C) {
	// Create a new link
	initial := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: time.Now().Add(-10 * time.Hour),
	}

	err := s.g.UpsertLink(initial)

	c.Assert(err, check.IsNil)
	// Expect a new ID to be assigned to the new Link.
	c.Assert(initial.ID, check.Not(check.Equals), uuid.Nil,
		check.Commentf("Expected an ID to be assigned to the new link."),
	)

	// Upsert the same URL with a newer RetrievedAt timestamp. This should
	// update the existing link in place.
	accessedAt := time.Now().Truncate(time.Second).UTC()
	updated := &graph.Link{
		URL:         initial.URL,
		RetrievedAt: accessedAt,
	}

	err = s.g.UpsertLink(updated)

	c.Assert(err, check.IsNil)
	c.Assert(
		updated.ID, check.Equals, initial.ID,
		check.Commentf("ID changed during upsert"),
	)

	l, err := s.g.FindLink(updated.ID)

	c.Assert(err, check.IsNil)
	c.Assert(
		l.RetrievedAt, check.Equals, accessedAt,
		check.Commentf("RetrievedAt timestamp was never updated during upsert"),
	)

	// A link discovered but not yet resolved carries a zero RetrievedAt
	// value and must not roll back the timestamp of a resolved link.
	discovered := &graph.Link{URL: updated.URL}

	err = s.g.UpsertLink(discovered)
	c.Assert(err, check.IsNil)
	c.Assert(discovered.ID, check.Equals, updated.ID)

	l, err = s.g.FindLink(updated.ID)
	c.Assert(err, check.IsNil)
	c.Assert(l.RetrievedAt, check.Equals, accessedAt)

	count, err := s.g.NodeCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, 1)
}

// TestFindLink verifies the link lookup logic.
func (s *BaseSuite) TestFindLink(c *check.C) {
	newLink := &graph.Link{
		URL:         "https://example.com",
		RetrievedAt: time.Now().Truncate(time.Second).UTC(),
	}

	err := s.g.UpsertLink(newLink)
	c.Assert(err, check.IsNil)

	// Lookup link by ID.
	l, err := s.g.FindLink(newLink.ID)
	c.Assert(err, check.IsNil)
	c.Assert(
		l, check.DeepEquals, newLink,
		check.Commentf("Lookup by ID returned wrong link"),
	)

	// Lookup link by URL.
	l, err = s.g.FindLinkByURL(newLink.URL)
	c.Assert(err, check.IsNil)
	c.Assert(
		l, check.DeepEquals, newLink,
		check.Commentf("Lookup by URL returned wrong link"),
	)

	// Lookup link by unknown ID and URL.
	_, err = s.g.FindLink(uuid.Nil)
	c.Assert(errors.Is(err, graph.ErrNotFound), check.Equals, true)

	_, err = s.g.FindLinkByURL("https://unknown.example.com")
	c.Assert(errors.Is(err, graph.ErrNotFound), check.Equals, true)
}

// TestConcurrentLinkUpserts ensures that concurrent upserts of the same set
// of URLs collapse into a single link per URL.
func (s *BaseSuite) TestConcurrentLinkUpserts(c *check.C) {
	var (
		wg           sync.WaitGroup
		numOfWriters = 10
		numOfLinks   = 50
	)

	wg.Add(numOfWriters)

	for i := 0; i < numOfWriters; i++ {
		go func() {
			defer wg.Done()

			for j := 0; j < numOfLinks; j++ {
				err := s.g.UpsertLink(&graph.Link{URL: fmt.Sprint(j)})
				c.Check(err, check.IsNil)
			}
		}()
	}

	s.waitOrTimeout(c, &wg)

	count, err := s.g.NodeCount()
	c.Assert(err, check.IsNil)
	c.Assert(count, check.Equals, numOfLinks)
}

// TestConcurrentLinkIterators ensures that multiple clients can concurrently
// access the store without causing data races.
func (s *BaseSuite) TestConcurrentLinkIterators(c *check.C) {
	var (
		wg             sync.WaitGroup
		numOfIterators = 10
		numOfLinks     = 100
	)

	for i := 0; i < numOfLinks; i++ {
		l := &graph.Link{URL: fmt.Sprint(i)}
		err := s.g.UpsertLink(l)
		c.Assert(err, check.IsNil)
	}

	wg.Add(numOfIterators)

	for i := 0; i < numOfIterators; i++ {
		go func(id int) {
			defer wg.Done()

			errComment := check.Commentf("Iterator %d", id)

			iterated := make(map[string]bool)

			it, err := s.g.Links()
			c.Assert(err, check.IsNil)

			for it.Next() {
				link := it.Link()
				linkID := link.ID.String()

				c.Assert(
					iterated[linkID], check.Equals, false,
					check.Commentf("Iterator %d iterated the same link twice", id),
				)

				iterated[linkID] = true
			}

			c.Assert(iterated, check.HasLen, numOfLinks, errComment)
			c.Assert(it.Error(), check.IsNil, errComment)
			c.Assert(it.Close(), check.IsNil, errComment)
		}(i)
	}

	s.waitOrTimeout(c, &wg)
}

func (s *BaseSuite) waitOrTimeout(c *check.C, wg *sync.WaitGroup) {
	doneCh := make(chan struct{})

	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh: // Test completed successfully.
	case <-time.After(10 * time.Second):
		c.Fatal("Exceeded set test execution time: timed out!")
	}
}
