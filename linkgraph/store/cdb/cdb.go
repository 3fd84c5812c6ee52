package cdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mycok/wikigraph/linkgraph/graph"
)

const queryTimeout = 500 * time.Millisecond

var (
	schemaQueries = []string{
		`CREATE TABLE IF NOT EXISTS links (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			url TEXT NOT NULL UNIQUE,
			retrieved_at TIMESTAMP NOT NULL DEFAULT '0001-01-01 00:00:00'
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			src UUID NOT NULL REFERENCES links(id) ON DELETE CASCADE,
			dest UUID NOT NULL REFERENCES links(id) ON DELETE CASCADE,
			updated_at TIMESTAMP NOT NULL,
			CONSTRAINT edge_links UNIQUE(src, dest)
		)`,
	}

	upsertLinkQuery = `
					INSERT INTO links (url, retrieved_at)
					VALUES ($1, $2)
					ON CONFLICT (url)
					DO UPDATE SET retrieved_at=GREATEST(links.retrieved_at, $2)
					RETURNING id, retrieved_at
					`
	findLinkQuery      = "SELECT id, url, retrieved_at FROM links WHERE id=$1"
	findLinkByURLQuery = "SELECT id, url, retrieved_at FROM links WHERE url=$1"
	linksQuery         = "SELECT id, url, retrieved_at FROM links"

	upsertEdgeQuery = `
					INSERT INTO edges (src, dest, updated_at)
					VALUES ($1, $2, NOW())
					ON CONFLICT (src, dest)
					DO UPDATE SET updated_at=NOW()
					RETURNING id, updated_at
					`
	edgesQuery = "SELECT id, src, dest, updated_at FROM edges"

	countLinksQuery = "SELECT count(*) FROM links"
	countEdgesQuery = "SELECT count(*) FROM edges"
)

// Static and compile-time check to ensure CockroachDBGraph implements
// Graph interface.
var _ graph.Graph = (*CockroachDBGraph)(nil)

// CockroachDBGraph implements a persistent link and edge graph using a
// CockroachDB or PostgreSQL instance.
type CockroachDBGraph struct {
	db *sql.DB
}

// NewCockroachDBGraph returns a CockroachDBGraph instance.
func NewCockroachDBGraph(dsn string) (*CockroachDBGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &CockroachDBGraph{db}, nil
}

// EnsureSchema creates the links and edges tables if they do not exist.
func (s *CockroachDBGraph) EnsureSchema(ctx context.Context) error {
	for _, q := range schemaQueries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

// Close terminates the connection to the database instance.
func (s *CockroachDBGraph) Close() error {
	return s.db.Close()
}

// UpsertLink creates a new or updates an existing link.
func (s *CockroachDBGraph) UpsertLink(link *graph.Link) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := s.db.QueryRowContext(
		ctx, upsertLinkQuery, link.URL, link.RetrievedAt.UTC(),
	).Scan(&link.ID, &link.RetrievedAt)
	if err != nil {
		return fmt.Errorf("upsert link: %w", err)
	}

	link.RetrievedAt = link.RetrievedAt.UTC()

	return nil
}

// FindLink performs a link lookup by id.
func (s *CockroachDBGraph) FindLink(id uuid.UUID) (*graph.Link, error) {
	l, err := s.findLink(findLinkQuery, id)
	if err != nil {
		return nil, fmt.Errorf("find link: %w", err)
	}

	return l, nil
}

// FindLinkByURL performs a link lookup by URL.
func (s *CockroachDBGraph) FindLinkByURL(url string) (*graph.Link, error) {
	l, err := s.findLink(findLinkByURLQuery, url)
	if err != nil {
		return nil, fmt.Errorf("find link by url: %w", err)
	}

	return l, nil
}

func (s *CockroachDBGraph) findLink(query string, arg interface{}) (*graph.Link, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	l := new(graph.Link)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&l.ID, &l.URL, &l.RetrievedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, graph.ErrNotFound
		}

		return nil, err
	}

	l.RetrievedAt = l.RetrievedAt.UTC()

	return l, nil
}

// Links returns an iterator for the set of all links in the graph.
func (s *CockroachDBGraph) Links() (graph.LinkIterator, error) {
	rows, err := s.db.Query(linksQuery)
	if err != nil {
		return nil, fmt.Errorf("links: %w", err)
	}

	return newLinkIterator(rows), nil
}

// UpsertEdge creates a new edge or refreshes the UpdatedAt timestamp of an
// existing edge with the same Src and Dest.
func (s *CockroachDBGraph) UpsertEdge(edge *graph.Edge) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	err := s.db.QueryRowContext(
		ctx, upsertEdgeQuery, edge.Src, edge.Dest,
	).Scan(&edge.ID, &edge.UpdatedAt)
	if err != nil {
		if isForeignKeyViolationError(err) {
			err = graph.ErrUnknownEdgeLinks
		}

		return fmt.Errorf("upsert edge: %w", err)
	}

	edge.UpdatedAt = edge.UpdatedAt.UTC()

	return nil
}

// Edges returns an iterator for the set of all edges in the graph.
func (s *CockroachDBGraph) Edges() (graph.EdgeIterator, error) {
	rows, err := s.db.Query(edgesQuery)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}

	return newEdgeIterator(rows), nil
}

// NodeCount returns the number of links stored in the graph.
func (s *CockroachDBGraph) NodeCount() (int, error) {
	n, err := s.count(countLinksQuery)
	if err != nil {
		return 0, fmt.Errorf("node count: %w", err)
	}

	return n, nil
}

// EdgeCount returns the number of distinct edges stored in the graph.
func (s *CockroachDBGraph) EdgeCount() (int, error) {
	n, err := s.count(countEdgesQuery)
	if err != nil {
		return 0, fmt.Errorf("edge count: %w", err)
	}

	return n, nil
}

func (s *CockroachDBGraph) count(query string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

// isForeignKeyViolationError returns true if error is a foreign key
// constraint violation error.
func isForeignKeyViolationError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code.Name() == "foreign_key_violation"
}
