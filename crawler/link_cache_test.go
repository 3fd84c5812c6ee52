package crawler

import (
	"fmt"
	"sync"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(LinkCacheTestSuite))

type LinkCacheTestSuite struct{}

func (s *LinkCacheTestSuite) TestLookupMiss(c *check.C) {
	cache := NewLinkCache()

	links, found := cache.Lookup("http://example.com")
	c.Assert(found, check.Equals, false)
	c.Assert(links, check.IsNil)
	c.Assert(cache.Len(), check.Equals, 0)
}

func (s *LinkCacheTestSuite) TestFirstStoreWins(c *check.C) {
	cache := NewLinkCache()

	first := cache.Store("http://example.com", []string{"http://a.com"})
	c.Assert(first, check.DeepEquals, []string{"http://a.com"})

	second := cache.Store("http://example.com", []string{"http://b.com"})
	c.Assert(second, check.DeepEquals, []string{"http://a.com"})

	links, found := cache.Lookup("http://example.com")
	c.Assert(found, check.Equals, true)
	c.Assert(links, check.DeepEquals, []string{"http://a.com"})
	c.Assert(cache.Len(), check.Equals, 1)
}

func (s *LinkCacheTestSuite) TestEmptyLinkSetIsCached(c *check.C) {
	cache := NewLinkCache()
	cache.Store("http://example.com", nil)

	links, found := cache.Lookup("http://example.com")
	c.Assert(found, check.Equals, true)
	c.Assert(links, check.HasLen, 0)
}

func (s *LinkCacheTestSuite) TestStoreCopiesInput(c *check.C) {
	cache := NewLinkCache()
	input := []string{"http://a.com"}
	cache.Store("http://example.com", input)

	input[0] = "http://mutated.com"

	links, _ := cache.Lookup("http://example.com")
	c.Assert(links, check.DeepEquals, []string{"http://a.com"})
}

func (s *LinkCacheTestSuite) TestConcurrentStores(c *check.C) {
	cache := NewLinkCache()

	var wg sync.WaitGroup
	winners := make([][]string, 16)
	for i := 0; i < len(winners); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			winners[i] = cache.Store("http://example.com", []string{fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(winners); i++ {
		c.Assert(winners[i], check.DeepEquals, winners[0])
	}
	c.Assert(cache.Len(), check.Equals, 1)
}
