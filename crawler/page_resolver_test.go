package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"

	mock_crawler "github.com/mycok/wikigraph/crawler/mocks"
)

var _ = check.Suite(new(PageResolverTestSuite))

type PageResolverTestSuite struct {
	fetcher   *mock_crawler.MockFetcher
	extractor *mock_crawler.MockLinkExtractor
	cache     *LinkCache
	gate      *FetchGate
	resolver  *pageResolver
}

func (s *PageResolverTestSuite) setUp(c *check.C, ctrl *gomock.Controller) {
	s.fetcher = mock_crawler.NewMockFetcher(ctrl)
	s.extractor = mock_crawler.NewMockLinkExtractor(ctrl)
	s.cache = NewLinkCache()
	s.gate = NewFetchGate(2)

	cfg := Config{
		Fetcher:       s.fetcher,
		LinkExtractor: s.extractor,
		Clock:         testclock.NewClock(time.Now()),
	}
	c.Assert(cfg.validate(), check.IsNil)

	s.resolver = newPageResolver(&cfg, s.cache, s.gate)
}

func (s *PageResolverTestSuite) TestResolveAndCache(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	s.fetcher.EXPECT().Fetch(gomock.Any(), "http://example.com").Return([]byte("<html/>"), nil)
	s.extractor.EXPECT().ExtractLinks("http://example.com", []byte("<html/>")).Return(
		[]string{"http://a.com", "http://b.com", "http://a.com"}, nil,
	)

	res := s.resolver.resolve(context.TODO(), "http://example.com")
	c.Assert(res.err, check.IsNil)
	c.Assert(res.cached, check.Equals, false)
	c.Assert(res.links, check.DeepEquals, []string{"http://a.com", "http://b.com"})

	// The second resolution is served from the cache without touching the
	// fetcher or the gate.
	res = s.resolver.resolve(context.TODO(), "http://example.com")
	c.Assert(res.cached, check.Equals, true)
	c.Assert(res.links, check.DeepEquals, []string{"http://a.com", "http://b.com"})
	c.Assert(s.gate.Peak(), check.Equals, 1)
	c.Assert(s.gate.InFlight(), check.Equals, 0)
}

func (s *PageResolverTestSuite) TestFetchFailure(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	s.fetcher.EXPECT().Fetch(gomock.Any(), "http://example.com").Return(nil, errors.New("timeout")).Times(2)

	for i := 0; i < 2; i++ {
		res := s.resolver.resolve(context.TODO(), "http://example.com")
		c.Assert(res.err, check.ErrorMatches, "fetch: timeout")
		c.Assert(res.links, check.HasLen, 0)
	}

	c.Assert(s.cache.Len(), check.Equals, 0)
	c.Assert(s.gate.InFlight(), check.Equals, 0)
}

func (s *PageResolverTestSuite) TestExtractionFailure(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	s.fetcher.EXPECT().Fetch(gomock.Any(), "http://example.com").Return([]byte("garbage"), nil)
	s.extractor.EXPECT().ExtractLinks("http://example.com", []byte("garbage")).Return(nil, errors.New("bad markup"))

	res := s.resolver.resolve(context.TODO(), "http://example.com")
	c.Assert(res.err, check.ErrorMatches, "extract links: bad markup")
	c.Assert(s.cache.Len(), check.Equals, 0)
}

func (s *PageResolverTestSuite) TestFetchHonoursTimeout(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)
	s.resolver.fetchTimeout = 10 * time.Millisecond

	s.fetcher.EXPECT().Fetch(gomock.Any(), "http://slow.com").DoAndReturn(
		func(ctx context.Context, _ string) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	)

	res := s.resolver.resolve(context.TODO(), "http://slow.com")
	c.Assert(errors.Is(res.err, context.DeadlineExceeded), check.Equals, true)
}

func (s *PageResolverTestSuite) TestConcurrentResolutionsShareOneFetch(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	s.fetcher.EXPECT().Fetch(gomock.Any(), "http://example.com").DoAndReturn(
		func(context.Context, string) ([]byte, error) {
			<-time.After(20 * time.Millisecond)
			return []byte("page"), nil
		},
	).Times(1)
	s.extractor.EXPECT().ExtractLinks("http://example.com", []byte("page")).Return([]string{"http://a.com"}, nil)

	var wg sync.WaitGroup
	results := make([]resolution, 8)
	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.resolver.resolve(context.TODO(), "http://example.com")
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		c.Assert(res.err, check.IsNil)
		c.Assert(res.links, check.DeepEquals, []string{"http://a.com"})
	}
}

func (s *PageResolverTestSuite) TestProcessCopiesLinks(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	s.cache.Store("http://example.com", []string{"http://a.com"})

	payload := &crawlerPayload{URL: "http://example.com"}
	out, err := s.resolver.Process(context.TODO(), payload)
	c.Assert(err, check.IsNil)

	p := out.(*crawlerPayload)
	c.Assert(p.Cached, check.Equals, true)
	c.Assert(p.Links, check.DeepEquals, []string{"http://a.com"})

	p.Links[0] = "http://mutated.com"
	links, _ := s.cache.Lookup("http://example.com")
	c.Assert(links, check.DeepEquals, []string{"http://a.com"})
}

func (s *PageResolverTestSuite) TestResolversSharingACacheShareOneFetch(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	s.fetcher.EXPECT().Fetch(gomock.Any(), "http://example.com").DoAndReturn(
		func(context.Context, string) ([]byte, error) {
			<-time.After(20 * time.Millisecond)
			return []byte("page"), nil
		},
	).Times(1)
	s.extractor.EXPECT().ExtractLinks("http://example.com", []byte("page")).Return([]string{"http://a.com"}, nil)

	// Each crawl builds its own resolver and gate around the shared cache.
	cfg := Config{
		Fetcher:       s.fetcher,
		LinkExtractor: s.extractor,
		Clock:         testclock.NewClock(time.Now()),
	}
	c.Assert(cfg.validate(), check.IsNil)

	var wg sync.WaitGroup
	results := make([]resolution, 4)
	for i := 0; i < len(results); i++ {
		resolver := newPageResolver(&cfg, s.cache, NewFetchGate(1))

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = resolver.resolve(context.TODO(), "http://example.com")
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		c.Assert(res.err, check.IsNil)
		c.Assert(res.links, check.DeepEquals, []string{"http://a.com"})
	}
}

func (s *PageResolverTestSuite) TestProcessUnexpectedPayload(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()
	s.setUp(c, ctrl)

	out, err := s.resolver.Process(context.TODO(), foreignPayload{})
	c.Assert(err, check.ErrorMatches, ".*unexpected payload type.*")
	c.Assert(out, check.IsNil)
}
