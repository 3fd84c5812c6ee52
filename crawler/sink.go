package crawler

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mycok/wikigraph/pipeline"
)

var _ pipeline.Sink = (*levelSink)(nil)

// levelSink collects the resolved pages of a level and builds the next
// frontier from the links that were never enqueued before in this crawl.
// The pipeline invokes Consume from a single goroutine.
type levelSink struct {
	enqueued map[string]struct{}
	next     []string
	stats    LevelStats
	logger   *logrus.Entry
}

func newLevelSink(
	enqueued map[string]struct{}, depth, width int, logger *logrus.Entry,
) *levelSink {

	return &levelSink{
		enqueued: enqueued,
		stats:    LevelStats{Depth: depth, Width: width},
		logger:   logger,
	}
}

// Consume records a resolved page and extends the next frontier.
func (s *levelSink) Consume(ctx context.Context, payload pipeline.Payload) error {
	p, ok := payload.(*crawlerPayload)
	if !ok {
		return fmt.Errorf("level sink: unexpected payload type %T", payload)
	}

	s.stats.Resolved++
	if p.Err != nil {
		s.stats.Failed++
	}
	if p.Cached {
		s.stats.CacheHits++
	}

	for _, link := range p.Links {
		if _, seen := s.enqueued[link]; seen {
			continue
		}

		s.enqueued[link] = struct{}{}
		s.next = append(s.next, link)
	}

	s.logger.WithFields(logrus.Fields{
		"url":   p.URL,
		"depth": p.Depth,
		"links": len(p.Links),
	}).Debug("resolved page")

	return nil
}

func (s *levelSink) nextFrontier() []string {
	return s.next
}
