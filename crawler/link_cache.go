package crawler

import (
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LinkCache memoizes the link set of every successfully resolved URL. An
// entry is either absent or fully populated and, once stored, never changes.
// A LinkCache is safe for concurrent use and may be shared across crawls;
// resolutions of the same URL through one cache are collapsed into a single
// fetch, whichever crawl started them.
type LinkCache struct {
	entries *cache.Cache
	flights singleflight.Group
}

// NewLinkCache returns an empty LinkCache. Entries never expire.
func NewLinkCache() *LinkCache {
	return &LinkCache{entries: cache.New(cache.NoExpiration, 0)}
}

// Lookup returns the link set stored for url. The returned slice is shared
// and must not be modified.
func (c *LinkCache) Lookup(url string) ([]string, bool) {
	v, found := c.entries.Get(url)
	if !found {
		return nil, false
	}

	return v.([]string), true
}

// Store records links for url unless an entry already exists and returns the
// entry that ended up in the cache. The first store for a URL wins.
func (c *LinkCache) Store(url string, links []string) []string {
	stored := make([]string, len(links))
	copy(stored, links)

	if err := c.entries.Add(url, stored, cache.NoExpiration); err == nil {
		return stored
	}

	// Lost the race against a concurrent store for the same URL.
	if existing, found := c.Lookup(url); found {
		return existing
	}

	return stored
}

// Len returns the number of cached URLs.
func (c *LinkCache) Len() int {
	return c.entries.ItemCount()
}

// resolveOnce calls fn for url unless a resolution of url through this cache
// is already in flight, in which case it waits for that one and shares its
// outcome.
func (c *LinkCache) resolveOnce(url string, fn func() ([]string, error)) ([]string, error) {
	v, err, _ := c.flights.Do(url, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}

	return v.([]string), nil
}
