package bptree

import (
	"fmt"
	"unsafe"

	"github.com/go-logr/logr"
)

const (
	defaultPageBytes     = 4096
	defaultMinFanoutFloor = 4

	// per-entry/per-child bookkeeping overhead folded into the byte-budget
	// estimate, standing in for slice headers and page metadata that a
	// real on-disk page format would also have to account for.
	pairOverhead  = 16
	childOverhead = 8
)

// Options configures the fanout bounds a Tree derives for itself. The zero
// value selects sane defaults.
type Options struct {
	// PageBytes is the byte budget a single page is sized against. <= 0
	// selects defaultPageBytes.
	PageBytes int
	// MinFanoutFloor is a hard lower bound on LEAF_MIN/NODE_MIN, keeping
	// recursion shallow even when K or V is large. <= 0 selects
	// defaultMinFanoutFloor.
	MinFanoutFloor int
}

// Pair is one (key, value) entry, returned by iteration and bulk-build APIs.
type Pair[K any, V any] struct {
	Key   K
	Value V
}

// Tree is a generic, in-memory B+-tree ordered associative container. The
// zero value is not usable; construct with NewTree or FromOrdered.
type Tree[K any, V any] struct {
	cmp   func(a, b K) bool
	alloc PageAllocator[K, V]
	log   logr.Logger

	root      *page[K, V]
	firstLeaf *page[K, V]
	lastLeaf  *page[K, V]
	count     int

	leafMax, leafMin int
	nodeMax, nodeMin int

	// generation is bumped on every structural mutation; iterators compare
	// against the value they captured to detect invalidation.
	generation uint64
}

// NewTree constructs an empty tree ordered by cmp (cmp(a, b) reports whether
// a sorts strictly before b) using a default in-process page allocator.
func NewTree[K any, V any](cmp func(a, b K) bool, opts Options) *Tree[K, V] {
	return NewTreeWithAllocator[K, V](cmp, opts, newArenaAllocator[K, V]())
}

// NewTreeWithAllocator is NewTree with an explicit PageAllocator, for
// callers that want to simulate allocation failure or share a page arena
// across trees.
func NewTreeWithAllocator[K any, V any](cmp func(a, b K) bool, opts Options, alloc PageAllocator[K, V]) *Tree[K, V] {
	leafMax, leafMin, nodeMax, nodeMin := computeFanout[K, V](opts)
	return &Tree[K, V]{
		cmp:     cmp,
		alloc:   alloc,
		log:     defaultLogger(),
		leafMax: leafMax,
		leafMin: leafMin,
		nodeMax: nodeMax,
		nodeMin: nodeMin,
	}
}

// newTreeWithFanout builds a tree with explicit fanout bounds, bypassing the
// byte-budget estimate. Unexported: used by in-package tests that need the
// exact LEAF_MAX/NODE_MAX values the testable-property scenarios specify.
func newTreeWithFanout[K any, V any](cmp func(a, b K) bool, leafMax, nodeMax int) *Tree[K, V] {
	leafMin := ceilDiv(leafMax, 2)
	nodeMin := ceilDiv(nodeMax, 2)
	return &Tree[K, V]{
		cmp:     cmp,
		alloc:   newArenaAllocator[K, V](),
		log:     defaultLogger(),
		leafMax: leafMax,
		leafMin: leafMin,
		nodeMax: nodeMax,
		nodeMin: nodeMin,
	}
}

// newTreeWithFanoutAndAllocator is newTreeWithFanout with an explicit
// allocator, for tests that need both a deterministic fanout and a
// boundedAllocator to exercise ErrOutOfMemory unwinding.
func newTreeWithFanoutAndAllocator[K any, V any](cmp func(a, b K) bool, leafMax, nodeMax int, alloc PageAllocator[K, V]) *Tree[K, V] {
	leafMin := ceilDiv(leafMax, 2)
	nodeMin := ceilDiv(nodeMax, 2)
	return &Tree[K, V]{
		cmp:     cmp,
		alloc:   alloc,
		log:     defaultLogger(),
		leafMax: leafMax,
		leafMin: leafMin,
		nodeMax: nodeMax,
		nodeMin: nodeMin,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// computeFanout derives LEAF_MAX/LEAF_MIN/NODE_MAX/NODE_MIN from a byte
// budget, mirroring the teacher's overfill/splitTwo byte arithmetic but
// against unsafe.Sizeof estimates of the generic K/V types instead of a
// fixed on-disk page layout.
func computeFanout[K any, V any](opts Options) (leafMax, leafMin, nodeMax, nodeMin int) {
	pageBytes := opts.PageBytes
	if pageBytes <= 0 {
		pageBytes = defaultPageBytes
	}
	floor := opts.MinFanoutFloor
	if floor <= 0 {
		floor = defaultMinFanoutFloor
	}

	var k K
	var v V
	entrySize := int(unsafe.Sizeof(k)) + int(unsafe.Sizeof(v)) + pairOverhead
	sepSize := int(unsafe.Sizeof(k)) + childOverhead

	leafMax = pageBytes / entrySize
	if leafMax < 2*floor {
		leafMax = 2 * floor
	}
	nodeMax = pageBytes / sepSize
	if nodeMax < 2*floor {
		nodeMax = 2 * floor
	}

	leafMin = ceilDiv(leafMax, 2)
	if leafMin < floor {
		leafMin = floor
	}
	nodeMin = ceilDiv(nodeMax, 2)
	if nodeMin < floor {
		nodeMin = floor
	}
	return leafMax, leafMin, nodeMax, nodeMin
}

// SetLogger overrides the tree's logr.Logger. Ambient concern, not part of
// the container's configuration surface, so it lives outside Options.
func (t *Tree[K, V]) SetLogger(l logr.Logger) {
	t.log = l
}

// Len reports the number of entries in the tree.
func (t *Tree[K, V]) Len() int { return t.count }

// IsEmpty reports whether the tree holds no entries.
func (t *Tree[K, V]) IsEmpty() bool { return t.count == 0 }

func (t *Tree[K, V]) equalK(a, b K) bool {
	return !t.cmp(a, b) && !t.cmp(b, a)
}

// Clear empties the tree, returning every page to the allocator.
func (t *Tree[K, V]) Clear() {
	var freePage func(p *page[K, V])
	freePage = func(p *page[K, V]) {
		if p == nil {
			return
		}
		if p.kind == internalKind {
			for _, c := range p.children {
				freePage(c)
			}
			p.children, p.seps = nil, nil
		} else {
			p.keys, p.values, p.prev, p.next = nil, nil, nil, nil
		}
		t.alloc.Free(p)
	}
	freePage(t.root)

	t.root, t.firstLeaf, t.lastLeaf = nil, nil, nil
	t.count = 0
	t.generation++
}

// Swap exchanges the entire contents of t and other in constant time.
func (t *Tree[K, V]) Swap(other *Tree[K, V]) {
	t.cmp, other.cmp = other.cmp, t.cmp
	t.alloc, other.alloc = other.alloc, t.alloc
	t.root, other.root = other.root, t.root
	t.firstLeaf, other.firstLeaf = other.firstLeaf, t.firstLeaf
	t.lastLeaf, other.lastLeaf = other.lastLeaf, t.lastLeaf
	t.count, other.count = other.count, t.count
	t.leafMax, other.leafMax = other.leafMax, t.leafMax
	t.leafMin, other.leafMin = other.leafMin, t.leafMin
	t.nodeMax, other.nodeMax = other.nodeMax, t.nodeMax
	t.nodeMin, other.nodeMin = other.nodeMin, t.nodeMin
	t.generation++
	other.generation++
}

// CheckInvariants walks the whole tree and verifies the structural
// invariants from the design: bounded fanout on every non-root page (entry
// count for a leaf, child count for an internal page),
// strictly ascending keys within a page, uniform leaf depth, a consistent
// leaf ring, and a leaf-entry count matching the cached counter. It is a
// test and diagnostic helper, not part of the container's steady-state API.
func (t *Tree[K, V]) CheckInvariants() error {
	if t.root == nil {
		if t.count != 0 {
			return fmt.Errorf("bptree: empty tree has non-zero count %d", t.count)
		}
		return nil
	}

	leafDepth := -1
	totalLeafEntries := 0

	var walk func(p *page[K, V], depth int, lo, hi *K) error
	walk = func(p *page[K, V], depth int, lo, hi *K) error {
		if p != t.root {
			if p.kind == leafKind {
				if n := len(p.keys); n < t.leafMin || n > t.leafMax {
					return fmt.Errorf("bptree: leaf size %d out of [%d,%d]", n, t.leafMin, t.leafMax)
				}
			} else if n := len(p.children); n < t.nodeMin || n > t.nodeMax {
				return fmt.Errorf("bptree: internal fanout %d out of [%d,%d]", n, t.nodeMin, t.nodeMax)
			}
		}

		if p.kind == leafKind {
			if leafDepth == -1 {
				leafDepth = depth
			} else if leafDepth != depth {
				return fmt.Errorf("bptree: uneven leaf depth: %d vs %d", depth, leafDepth)
			}
			for i, k := range p.keys {
				if lo != nil && t.cmp(k, *lo) {
					return fmt.Errorf("bptree: leaf key below separator lower bound")
				}
				if hi != nil && !t.cmp(k, *hi) {
					return fmt.Errorf("bptree: leaf key at or above separator upper bound")
				}
				if i > 0 && !t.cmp(p.keys[i-1], p.keys[i]) {
					return fmt.Errorf("bptree: leaf keys not strictly ascending at %d", i)
				}
			}
			totalLeafEntries += len(p.keys)
			return nil
		}

		for i := 1; i < len(p.seps); i++ {
			if !t.cmp(p.seps[i-1], p.seps[i]) {
				return fmt.Errorf("bptree: internal separators not strictly ascending at %d", i)
			}
		}
		for i, c := range p.children {
			var childLo, childHi *K
			if i > 0 {
				childLo = &p.seps[i-1]
			} else {
				childLo = lo
			}
			if i < len(p.seps) {
				childHi = &p.seps[i]
			} else {
				childHi = hi
			}
			if err := walk(c, depth+1, childLo, childHi); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(t.root, 0, nil, nil); err != nil {
		return err
	}
	if totalLeafEntries != t.count {
		return fmt.Errorf("bptree: counter %d does not match leaf entry sum %d", t.count, totalLeafEntries)
	}

	n := t.firstLeaf
	var prev *page[K, V]
	for n != nil {
		if n.prev != prev {
			return fmt.Errorf("bptree: leaf ring prev link broken")
		}
		if n == t.lastLeaf {
			if n.next != nil {
				return fmt.Errorf("bptree: lastLeaf has a dangling next pointer")
			}
			return nil
		}
		prev = n
		n = n.next
	}
	return fmt.Errorf("bptree: leaf ring never reached lastLeaf")
}
