package crawler

import "errors"

var (
	// ErrInvalidSeed is returned by Crawl when the seed URL is empty.
	ErrInvalidSeed = errors.New("invalid seed url")

	// ErrInvalidDepth is returned by Crawl when the maximum depth is negative.
	ErrInvalidDepth = errors.New("invalid max depth, must be >= 0")
)
