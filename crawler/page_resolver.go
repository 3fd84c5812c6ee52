package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/wikigraph/pipeline"
)

var _ pipeline.Processor = (*pageResolver)(nil)

// resolution is the outcome of resolving a single URL. A failed resolution
// carries an empty link set and the error that caused it.
type resolution struct {
	links  []string
	cached bool
	err    error
}

// pageResolver turns a URL into its link set. Results are memoized in the
// link cache, which also collapses concurrent resolutions of the same URL
// into a single fetch. Every fetch holds a gate permit for its whole
// duration.
type pageResolver struct {
	fetcher      Fetcher
	extractor    LinkExtractor
	cache        *LinkCache
	gate         *FetchGate
	fetchTimeout time.Duration
	clock        clock.Clock
	logger       *logrus.Entry
}

func newPageResolver(
	cfg *Config, cache *LinkCache, gate *FetchGate,
) *pageResolver {

	return &pageResolver{
		fetcher:      cfg.Fetcher,
		extractor:    cfg.LinkExtractor,
		cache:        cache,
		gate:         gate,
		fetchTimeout: cfg.FetchTimeout,
		clock:        cfg.Clock,
		logger:       cfg.Logger,
	}
}

// Process resolves the payload URL and populates its link set. Resolution
// failures leave the payload with an empty link set and are not returned.
func (r *pageResolver) Process(
	ctx context.Context, payload pipeline.Payload,
) (pipeline.Payload, error) {

	p, ok := payload.(*crawlerPayload)
	if !ok {
		return nil, fmt.Errorf("page resolver: unexpected payload type %T", payload)
	}

	res := r.resolve(ctx, p.URL)

	// Copy into the pooled backing array; cached slices are shared.
	p.Links = append(p.Links[:0], res.links...)
	p.Cached = res.cached
	p.Err = res.err
	p.RetrievedAt = r.clock.Now()

	return p, nil
}

func (r *pageResolver) resolve(ctx context.Context, url string) resolution {
	if links, found := r.cache.Lookup(url); found {
		return resolution{links: links, cached: true}
	}

	links, err := r.cache.resolveOnce(url, func() ([]string, error) {
		return r.fetchAndStore(ctx, url)
	})
	if err != nil {
		return resolution{err: err}
	}

	return resolution{links: links}
}

func (r *pageResolver) fetchAndStore(ctx context.Context, url string) ([]string, error) {
	// A flight for the same URL may have completed after our cache lookup.
	if links, found := r.cache.Lookup(url); found {
		return links, nil
	}

	links, err := r.fetchLinks(ctx, url)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"url": url,
			"err": err,
		}).Warn("page resolution failed; treating it as a page without links")

		return nil, err
	}

	return r.cache.Store(url, uniqueLinks(links)), nil
}

func (r *pageResolver) fetchLinks(ctx context.Context, url string) ([]string, error) {
	if err := r.gate.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("acquire fetch permit: %w", err)
	}
	defer r.gate.Release()

	fetchCtx, cancelFn := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancelFn()

	content, err := r.fetcher.Fetch(fetchCtx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	links, err := r.extractor.ExtractLinks(url, content)
	if err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}

	return links, nil
}

// uniqueLinks drops empty and repeated links while preserving order.
func uniqueLinks(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))

	for _, link := range links {
		if link == "" {
			continue
		}
		if _, exists := seen[link]; exists {
			continue
		}

		seen[link] = struct{}{}
		out = append(out, link)
	}

	return out
}
