package cdb

import (
	"database/sql"
	"fmt"

	"github.com/mycok/wikigraph/linkgraph/graph"
)

// Static and compile-time checks to ensure the iterators implement the
// graph iterator interfaces.
var (
	_ graph.LinkIterator = (*linkIterator)(nil)
	_ graph.EdgeIterator = (*edgeIterator)(nil)
)

// rowIterator wraps the [database/sql] Rows type and decodes one row per
// call to Next using scanFn.
type rowIterator[T any] struct {
	rows    *sql.Rows
	scanFn  func(*sql.Rows) (*T, error)
	lastErr error
	item    *T
}

// Next loads the next item, returns false when no more rows are available
// or when an error occurs.
func (i *rowIterator[T]) Next() bool {
	if i.lastErr != nil {
		return false
	}

	if !i.rows.Next() {
		i.lastErr = i.rows.Err()

		return false
	}

	i.item, i.lastErr = i.scanFn(i.rows)

	return i.lastErr == nil
}

// Error returns the last error encountered by the iterator.
func (i *rowIterator[T]) Error() error {
	return i.lastErr
}

// Close releases the underlying result set.
func (i *rowIterator[T]) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("iterator: %w", err)
	}

	return nil
}

// linkIterator is a graph.LinkIterator implementation for the database backed graph.
type linkIterator struct {
	rowIterator[graph.Link]
}

func newLinkIterator(rows *sql.Rows) *linkIterator {
	return &linkIterator{rowIterator[graph.Link]{rows: rows, scanFn: scanLink}}
}

// Link returns the currently fetched link object.
func (i *linkIterator) Link() *graph.Link {
	return i.item
}

// edgeIterator is a graph.EdgeIterator implementation for the database backed graph.
type edgeIterator struct {
	rowIterator[graph.Edge]
}

func newEdgeIterator(rows *sql.Rows) *edgeIterator {
	return &edgeIterator{rowIterator[graph.Edge]{rows: rows, scanFn: scanEdge}}
}

// Edge returns the currently fetched edge object.
func (i *edgeIterator) Edge() *graph.Edge {
	return i.item
}

func scanLink(rows *sql.Rows) (*graph.Link, error) {
	l := new(graph.Link)
	if err := rows.Scan(&l.ID, &l.URL, &l.RetrievedAt); err != nil {
		return nil, err
	}

	// Timestamps may come back in the session time zone.
	l.RetrievedAt = l.RetrievedAt.UTC()

	return l, nil
}

func scanEdge(rows *sql.Rows) (*graph.Edge, error) {
	e := new(graph.Edge)
	if err := rows.Scan(&e.ID, &e.Src, &e.Dest, &e.UpdatedAt); err != nil {
		return nil, err
	}

	e.UpdatedAt = e.UpdatedAt.UTC()

	return e, nil
}
