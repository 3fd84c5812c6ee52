package crawler

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/wikigraph/linkgraph/store/memory"
)

const (
	// DefaultMaxInFlight is the fetch gate capacity used when none is set.
	DefaultMaxInFlight = 10

	// DefaultFetchTimeout bounds a single page fetch when none is set.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultNumOfAssemblers is the number of graph assembly workers used
	// when none is set.
	DefaultNumOfAssemblers = 4
)

// Config defines the configuration options for a Crawler.
type Config struct {
	// An API for retrieving page contents.
	Fetcher Fetcher

	// An API for extracting links from retrieved page contents.
	LinkExtractor LinkExtractor

	// A factory that returns an empty graph for every crawl. If not
	// specified, an in-memory graph will be used.
	NewGraph func() (Graph, error)

	// A link cache shared across crawls. If not specified, every crawl
	// starts with an empty cache of its own.
	LinkCache *LinkCache

	// The maximum number of simultaneously in-flight fetches.
	MaxInFlight int

	// The upper bound for retrieving a single page.
	FetchTimeout time.Duration

	// The number of concurrent workers adding edges to the graph.
	NumOfAssemblers int

	// A clock instance for stamping retrieved links. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error

	if cfg.Fetcher == nil {
		err = multierror.Append(err, fmt.Errorf("fetcher not provided"))
	}

	if cfg.LinkExtractor == nil {
		err = multierror.Append(err, fmt.Errorf("link extractor not provided"))
	}

	if cfg.NewGraph == nil {
		cfg.NewGraph = func() (Graph, error) { return memory.NewInMemoryGraph(), nil }
	}

	switch {
	case cfg.MaxInFlight == 0:
		cfg.MaxInFlight = DefaultMaxInFlight
	case cfg.MaxInFlight < 0:
		err = multierror.Append(err, fmt.Errorf("invalid value for max in-flight fetches, must be > 0"))
	}

	switch {
	case cfg.FetchTimeout == 0:
		cfg.FetchTimeout = DefaultFetchTimeout
	case cfg.FetchTimeout < 0:
		err = multierror.Append(err, fmt.Errorf("invalid value for fetch timeout, must be > 0"))
	}

	switch {
	case cfg.NumOfAssemblers == 0:
		cfg.NumOfAssemblers = DefaultNumOfAssemblers
	case cfg.NumOfAssemblers < 0:
		err = multierror.Append(err, fmt.Errorf("invalid value for assembly workers, must be > 0"))
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
