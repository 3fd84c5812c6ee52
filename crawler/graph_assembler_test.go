package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/golang/mock/gomock"
	check "gopkg.in/check.v1"

	mock_crawler "github.com/mycok/wikigraph/crawler/mocks"
	"github.com/mycok/wikigraph/linkgraph/graph"
	"github.com/mycok/wikigraph/linkgraph/store/memory"
)

var _ = check.Suite(new(GraphAssemblerTestSuite))

type GraphAssemblerTestSuite struct{}

func (s *GraphAssemblerTestSuite) TestAddEdgeIsIdempotent(c *check.C) {
	a := NewGraphAssembler(memory.NewInMemoryGraph())

	c.Assert(a.AddEdge("A", "B"), check.IsNil)
	c.Assert(a.AddEdge("A", "B"), check.IsNil)

	c.Assert(a.EdgeCount(), check.Equals, 1)
	c.Assert(a.NodeCount(), check.Equals, 2)
}

func (s *GraphAssemblerTestSuite) TestSelfEdge(c *check.C) {
	a := NewGraphAssembler(memory.NewInMemoryGraph())

	c.Assert(a.AddEdge("A", "A"), check.IsNil)

	c.Assert(a.EdgeCount(), check.Equals, 1)
	c.Assert(a.NodeCount(), check.Equals, 1)
}

func (s *GraphAssemblerTestSuite) TestProcessWithoutLinks(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	// No graph calls are expected for a page without links.
	a := NewGraphAssembler(mock_crawler.NewMockGraph(ctrl))

	out, err := a.Process(context.TODO(), &crawlerPayload{URL: "A"})
	c.Assert(err, check.IsNil)
	c.Assert(out, check.Not(check.IsNil))
}

func (s *GraphAssemblerTestSuite) TestProcess(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	mockGraph := mock_crawler.NewMockGraph(ctrl)
	retrievedAt := time.Now()

	mockGraph.EXPECT().UpsertLink(linkMatcher{url: "A", retrievedAt: retrievedAt}).Return(nil)
	mockGraph.EXPECT().UpsertLink(linkMatcher{url: "B"}).Return(nil)
	mockGraph.EXPECT().UpsertLink(linkMatcher{url: "C"}).Return(nil)
	mockGraph.EXPECT().UpsertEdge(gomock.Any()).Return(nil).Times(2)

	a := NewGraphAssembler(mockGraph)
	_, err := a.Process(context.TODO(), &crawlerPayload{
		URL:         "A",
		Links:       []string{"B", "C"},
		RetrievedAt: retrievedAt,
	})
	c.Assert(err, check.IsNil)
}

func (s *GraphAssemblerTestSuite) TestProcessGraphError(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	mockGraph := mock_crawler.NewMockGraph(ctrl)
	mockGraph.EXPECT().UpsertLink(gomock.Any()).Return(nil).Times(2)
	mockGraph.EXPECT().UpsertEdge(gomock.Any()).Return(errors.New("write failed"))

	a := NewGraphAssembler(mockGraph)
	out, err := a.Process(context.TODO(), &crawlerPayload{
		URL:   "A",
		Links: []string{"B", "C"},
	})
	c.Assert(err, check.ErrorMatches, "write failed")
	c.Assert(out, check.IsNil)
}

func (s *GraphAssemblerTestSuite) TestCountsExcludeExistingGraphContents(c *check.C) {
	g := memory.NewInMemoryGraph()
	c.Assert(NewGraphAssembler(g).AddEdge("X", "Y"), check.IsNil)

	a := NewGraphAssembler(g)
	c.Assert(a.AddEdge("A", "B"), check.IsNil)
	c.Assert(a.AddEdge("A", "X"), check.IsNil)

	c.Assert(a.NodeCount(), check.Equals, 3)
	c.Assert(a.EdgeCount(), check.Equals, 2)

	total, err := g.NodeCount()
	c.Assert(err, check.IsNil)
	c.Assert(total, check.Equals, 4)
}

func (s *GraphAssemblerTestSuite) TestProcessUnexpectedPayload(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	a := NewGraphAssembler(mock_crawler.NewMockGraph(ctrl))

	out, err := a.Process(context.TODO(), foreignPayload{})
	c.Assert(err, check.ErrorMatches, ".*unexpected payload type.*")
	c.Assert(out, check.IsNil)
}

// foreignPayload is a pipeline payload not produced by the crawler.
type foreignPayload struct{}

func (foreignPayload) MarkAsProcessed() {}

type linkMatcher struct {
	url         string
	retrievedAt time.Time
}

func (m linkMatcher) Matches(x interface{}) bool {
	link, ok := x.(*graph.Link)
	if !ok {
		return false
	}

	return link.URL == m.url && link.RetrievedAt.Equal(m.retrievedAt)
}

func (m linkMatcher) String() string {
	return "link with URL " + m.url
}
