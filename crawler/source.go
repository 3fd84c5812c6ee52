package crawler

import (
	"context"

	"github.com/mycok/wikigraph/pipeline"
)

var _ pipeline.Source = (*levelSource)(nil)

// levelSource emits one payload per frontier URL of a single BFS level.
type levelSource struct {
	urls  []string
	depth int
	next  int
	cur   string
}

func newLevelSource(urls []string, depth int) *levelSource {
	return &levelSource{urls: urls, depth: depth}
}

// Next advances to the next frontier URL.
func (s *levelSource) Next(ctx context.Context) bool {
	if s.next >= len(s.urls) || ctx.Err() != nil {
		return false
	}

	s.cur = s.urls[s.next]
	s.next++

	return true
}

// Payload returns a pooled payload for the current frontier URL.
func (s *levelSource) Payload() pipeline.Payload {
	payload := payloadPool.Get().(*crawlerPayload)
	payload.URL = s.cur
	payload.Depth = s.depth

	return payload
}

// Error always returns nil since the frontier is held in memory.
func (s *levelSource) Error() error {
	return nil
}
