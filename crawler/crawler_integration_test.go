package crawler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	check "gopkg.in/check.v1"

	"github.com/mycok/wikigraph/crawler"
	"github.com/mycok/wikigraph/crawler/extract"
	"github.com/mycok/wikigraph/crawler/fetch"
	"github.com/mycok/wikigraph/crawler/privnet"
)

var _ = check.Suite(new(CrawlerIntegrationTestSuite))

type CrawlerIntegrationTestSuite struct{}

func (s *CrawlerIntegrationTestSuite) TestCrawlAgainstHTTPServer(c *check.C) {
	site := map[string][]string{
		"/wiki/S": {"/wiki/A", "/wiki/B", "/wiki/Special:Random"},
		"/wiki/A": {"/wiki/C", "/wiki/C#Section"},
		"/wiki/B": {},
		"/wiki/C": {"/wiki/S"},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		links, found := site[r.URL.Path]
		if !found {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>")
		for _, link := range links {
			fmt.Fprintf(w, `<a href="%s">%s</a>`, link, strings.TrimPrefix(link, "/wiki/"))
		}
		fmt.Fprint(w, "</body></html>")
	}))
	defer srv.Close()

	// The test server listens on loopback so private network checks are off.
	detector, err := privnet.NewDetectorFromCIDRs()
	c.Assert(err, check.IsNil)

	fetcher, err := fetch.New(fetch.Config{Client: srv.Client(), NetDetector: detector})
	c.Assert(err, check.IsNil)

	cr, err := crawler.New(crawler.Config{
		Fetcher:       fetcher,
		LinkExtractor: extract.New(extract.WikiFilter()),
		MaxInFlight:   2,
	})
	c.Assert(err, check.IsNil)

	res, err := cr.Crawl(context.TODO(), srv.URL+"/wiki/S", 2)
	c.Assert(err, check.IsNil)
	c.Assert(res.NodeCount, check.Equals, 4)
	c.Assert(res.EdgeCount, check.Equals, 4)
	c.Assert(res.PeakInFlight <= 2, check.Equals, true)
}
