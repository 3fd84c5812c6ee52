package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mycok/wikigraph/crawler"
	"github.com/mycok/wikigraph/crawler/extract"
	"github.com/mycok/wikigraph/crawler/fetch"
	"github.com/mycok/wikigraph/crawler/privnet"
	"github.com/mycok/wikigraph/linkgraph/store/cdb"
	"github.com/mycok/wikigraph/linkgraph/store/memory"
)

var (
	appName = "wikigraph"
	appSHA  = "latest-app-git-sha" // Populated by the compiler at the linking stage.
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSHA,
		"host": host,
	})

	if err := configureAppEnv().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		_ = os.Stderr.Sync()

		os.Exit(1)
	}
}

func configureAppEnv() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSHA
	app.Usage = "crawl a wiki breadth-first and report the size of its link graph"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "seed-url",
			Value:   "https://en.wikipedia.org/wiki/Example",
			EnvVars: []string{"WIKIGRAPH_SEED_URL"},
			Usage:   "The page the crawl starts from",
		},
		&cli.IntFlag{
			Name:    "max-depth",
			Value:   1,
			EnvVars: []string{"WIKIGRAPH_MAX_DEPTH"},
			Usage:   "The maximum number of hops from the seed page",
		},
		&cli.IntFlag{
			Name:    "max-in-flight",
			Value:   crawler.DefaultMaxInFlight,
			EnvVars: []string{"WIKIGRAPH_MAX_IN_FLIGHT"},
			Usage:   "The maximum number of simultaneous page fetches",
		},
		&cli.DurationFlag{
			Name:    "fetch-timeout",
			Value:   crawler.DefaultFetchTimeout,
			EnvVars: []string{"WIKIGRAPH_FETCH_TIMEOUT"},
			Usage:   "The upper bound for fetching a single page",
		},
		&cli.IntFlag{
			Name:    "assemblers",
			Value:   crawler.DefaultNumOfAssemblers,
			EnvVars: []string{"WIKIGRAPH_ASSEMBLERS"},
			Usage:   "Number of workers adding edges to the link graph",
		},
		&cli.StringFlag{
			Name:    "path-prefix",
			Value:   extract.WikiFilter().PathPrefix,
			EnvVars: []string{"WIKIGRAPH_PATH_PREFIX"},
			Usage:   "Only follow links whose path starts with this prefix",
		},
		&cli.StringFlag{
			Name:    "namespace-delimiter",
			Value:   extract.WikiFilter().NamespaceDelimiter,
			EnvVars: []string{"WIKIGRAPH_NAMESPACE_DELIMITER"},
			Usage:   "Skip links whose path contains this delimiter after the prefix",
		},
		&cli.BoolFlag{
			Name:    "skip-nofollow",
			EnvVars: []string{"WIKIGRAPH_SKIP_NOFOLLOW"},
			Usage:   `Skip links marked with rel="nofollow"`,
		},
		&cli.BoolFlag{
			Name:    "allow-private-networks",
			EnvVars: []string{"WIKIGRAPH_ALLOW_PRIVATE_NETWORKS"},
			Usage:   "Allow fetching pages from private network hosts (local testing only)",
		},
		&cli.StringFlag{
			Name:    "link-graph-uri",
			Value:   "in-memory://",
			EnvVars: []string{"WIKIGRAPH_LINK_GRAPH_URI"},
			Usage: "URI for connecting to a link-graph data store." +
				" [supported URI's: in-memory://, postgresql://user@host:26257/linkgraph?sslmode=disable]",
		},
		&cli.StringFlag{
			Name:    "user-agent",
			Value:   appName + "/" + appSHA,
			EnvVars: []string{"WIKIGRAPH_USER_AGENT"},
			Usage:   "The User-Agent header sent with every request",
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "json",
			EnvVars: []string{"WIKIGRAPH_LOG_FORMAT"},
			Usage:   "The log output format. Supported values are 'json' and 'text'",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			EnvVars: []string{"WIKIGRAPH_LOG_LEVEL"},
			Usage:   "The minimum level of emitted log entries",
		},
	}

	app.Before = configureLogger
	app.Action = execute

	return app
}

func configureLogger(appCtx *cli.Context) error {
	switch appCtx.String("log-format") {
	case "json":
		logger.Logger.SetFormatter(new(logrus.JSONFormatter))
	case "text":
		logger.Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unsupported log format: %q", appCtx.String("log-format"))
	}

	level, err := logrus.ParseLevel(appCtx.String("log-level"))
	if err != nil {
		return err
	}
	logger.Logger.SetLevel(level)

	return nil
}

func execute(appCtx *cli.Context) error {
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	// Start os signal watcher.
	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)
		defer signal.Stop(signalChan)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to signal")

			cancelFn()

		case <-ctx.Done():
		}
	}()

	g, closeFn, err := getLinkGraph(ctx, appCtx.String("link-graph-uri"))
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	netDetector, err := getNetDetector(appCtx.Bool("allow-private-networks"))
	if err != nil {
		return err
	}

	fetcher, err := fetch.New(fetch.Config{
		Client:      &http.Client{Timeout: appCtx.Duration("fetch-timeout")},
		NetDetector: netDetector,
		UserAgent:   appCtx.String("user-agent"),
	})
	if err != nil {
		return err
	}

	var config crawler.Config
	config.Fetcher = fetcher
	config.LinkExtractor = extract.New(extract.Filter{
		SameHost:           true,
		PathPrefix:         appCtx.String("path-prefix"),
		NamespaceDelimiter: appCtx.String("namespace-delimiter"),
		SkipNoFollow:       appCtx.Bool("skip-nofollow"),
	})
	config.NewGraph = func() (crawler.Graph, error) { return g, nil }
	config.MaxInFlight = appCtx.Int("max-in-flight")
	config.FetchTimeout = appCtx.Duration("fetch-timeout")
	config.NumOfAssemblers = appCtx.Int("assemblers")
	config.Logger = logger

	c, err := crawler.New(config)
	if err != nil {
		return err
	}

	res, err := c.Crawl(ctx, appCtx.String("seed-url"), appCtx.Int("max-depth"))
	if res != nil {
		fmt.Fprintf(appCtx.App.Writer, "Number of nodes: %d\n", res.NodeCount)
		fmt.Fprintf(appCtx.App.Writer, "Number of directed edges: %d\n", res.EdgeCount)
	}

	return err
}

// getLinkGraph returns the graph store selected by linkGraphURI and a func
// that releases it.
func getLinkGraph(ctx context.Context, linkGraphURI string) (crawler.Graph, func() error, error) {
	if linkGraphURI == "" {
		return nil, nil, fmt.Errorf("link graph URI must be specified with --link-graph-uri")
	}

	uri, err := url.Parse(linkGraphURI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse link graph URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory link graph store")

		return memory.NewInMemoryGraph(), func() error { return nil }, nil
	case "postgresql":
		logger.Info("using CDB link graph store")

		g, err := cdb.NewCockroachDBGraph(linkGraphURI)
		if err != nil {
			return nil, nil, err
		}

		schemaCtx, cancelFn := context.WithTimeout(ctx, 30*time.Second)
		defer cancelFn()

		if err := g.EnsureSchema(schemaCtx); err != nil {
			_ = g.Close()
			return nil, nil, err
		}

		return g, g.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported link graph URI scheme: %q", uri.Scheme)
	}
}

func getNetDetector(allowPrivate bool) (fetch.PrivateNetworkDetector, error) {
	if allowPrivate {
		logger.Warn("private network checks are disabled")

		return privnet.NewDetectorFromCIDRs()
	}

	return privnet.NewDetector()
}
