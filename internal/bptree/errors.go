package bptree

import "errors"

// ErrOutOfMemory is surfaced from Insert, FromOrdered, and Clear-then-rebuild
// flows when the configured PageAllocator refuses a new page. The tree is
// left exactly as it was before the call that returned it.
var ErrOutOfMemory = errors.New("bptree: allocator out of memory")

// ErrOutOfOrderInput is returned by FromOrdered when the supplied slice is
// not strictly ascending under the tree's comparator.
var ErrOutOfOrderInput = errors.New("bptree: from_ordered input is not strictly ascending")

// ErrIteratorInvalidated is returned by an Iterator or ReverseIterator whose
// tree was mutated since the iterator was obtained.
var ErrIteratorInvalidated = errors.New("bptree: iterator invalidated by a mutation")
