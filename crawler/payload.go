package crawler

import (
	"sync"
	"time"

	"github.com/mycok/wikigraph/pipeline"
)

var (
	_ pipeline.Payload = (*crawlerPayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} {
			return new(crawlerPayload)
		},
	}
)

type crawlerPayload struct {
	URL         string    // populated by the level source.
	Depth       int       // populated by the level source.
	Links       []string  // populated by the page resolver.
	Cached      bool      // populated by the page resolver.
	Err         error     // populated by the page resolver.
	RetrievedAt time.Time // populated by the page resolver.
}

// MarkAsProcessed is invoked by the stage runners when the payload either
// reaches the level sink or gets discarded by one of the stages.
func (p *crawlerPayload) MarkAsProcessed() {
	p.URL = p.URL[:0]
	p.Depth = 0
	p.Links = p.Links[:0]
	p.Cached = false
	p.Err = nil
	p.RetrievedAt = time.Time{}

	payloadPool.Put(p)
}
