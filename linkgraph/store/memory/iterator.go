package memory

import "github.com/mycok/wikigraph/linkgraph/graph"

// Static and compile-time checks to ensure the iterators implement the
// graph iterator interfaces.
var (
	_ graph.LinkIterator = (*linkIterator)(nil)
	_ graph.EdgeIterator = (*edgeIterator)(nil)
)

// snapshotIterator walks a snapshot of store entries taken when the
// iterator was created. Entries added afterwards are not visited.
type snapshotIterator[T any] struct {
	// Pointer to an inMemoryGraph instance. it's used here to provide
	// access to the store's mutex object.
	store        *InMemoryGraph
	items        []*T
	currentIndex int
}

// Next loads the next item, returns false when no more items
// are available.
func (i *snapshotIterator[T]) Next() bool {
	if i.currentIndex >= len(i.items) {
		return false
	}

	i.currentIndex++

	return true
}

// Error returns the last error encountered by the iterator.
func (i *snapshotIterator[T]) Error() error {
	return nil
}

// Close releases any resources allocated to the iterator.
func (i *snapshotIterator[T]) Close() error {
	return nil
}

// current returns a copy of the item the iterator points at. The stored
// item may be modified by a concurrent upsert, so the copy is made while
// holding the store read lock.
func (i *snapshotIterator[T]) current() *T {
	i.store.mu.RLock()
	defer i.store.mu.RUnlock()

	item := new(T)
	*item = *i.items[i.currentIndex-1]

	return item
}

// linkIterator is a graph.LinkIterator implementation for the in-memory graph.
type linkIterator struct {
	snapshotIterator[graph.Link]
}

func newLinkIterator(store *InMemoryGraph, links []*graph.Link) *linkIterator {
	return &linkIterator{snapshotIterator[graph.Link]{store: store, items: links}}
}

// Link returns the currently fetched link object.
func (i *linkIterator) Link() *graph.Link {
	return i.current()
}

// edgeIterator is a graph.EdgeIterator implementation for the in-memory graph.
type edgeIterator struct {
	snapshotIterator[graph.Edge]
}

func newEdgeIterator(store *InMemoryGraph, edges []*graph.Edge) *edgeIterator {
	return &edgeIterator{snapshotIterator[graph.Edge]{store: store, items: edges}}
}

// Edge returns the currently fetched edge object.
func (i *edgeIterator) Edge() *graph.Edge {
	return i.current()
}
