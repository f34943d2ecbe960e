package bptree

import "sort"

// Cursor positions an entry within the leaf ring. The end cursor is
// represented as (lastLeaf, len(lastLeaf.keys)); an empty tree's begin and
// end cursors both carry a nil leaf.
type Cursor[K any, V any] struct {
	leaf  *page[K, V]
	index int
}

// IsEnd reports whether c is the one-past-the-last position.
func (c Cursor[K, V]) IsEnd() bool {
	return c.leaf == nil || c.index >= len(c.leaf.keys)
}

// Key returns the entry's key. Panics if c.IsEnd().
func (c Cursor[K, V]) Key() K { return c.leaf.keys[c.index] }

// Value returns the entry's value. Panics if c.IsEnd().
func (c Cursor[K, V]) Value() V { return c.leaf.values[c.index] }

func (c Cursor[K, V]) next() Cursor[K, V] {
	if c.leaf == nil {
		return c
	}
	idx := c.index + 1
	if idx >= len(c.leaf.keys) && c.leaf.next != nil {
		return Cursor[K, V]{leaf: c.leaf.next, index: 0}
	}
	return Cursor[K, V]{leaf: c.leaf, index: idx}
}

// prev steps backward. ok is false at or before the first entry: the spec
// leaves decrementing past begin undefined, and returning ok=false instead
// of silently wrapping or panicking is the Go-idiomatic resolution.
func (c Cursor[K, V]) prev() (Cursor[K, V], bool) {
	if c.leaf == nil {
		return c, false
	}
	if c.index > 0 {
		return Cursor[K, V]{leaf: c.leaf, index: c.index - 1}, true
	}
	if c.leaf.prev != nil {
		p := c.leaf.prev
		return Cursor[K, V]{leaf: p, index: len(p.keys) - 1}, true
	}
	return c, false
}

// descend walks from the root to the leaf that would contain k, recording
// the (page, child index) taken at each internal level.
func (t *Tree[K, V]) descend(k K) (*page[K, V], []pathEntry[K, V]) {
	n := t.root
	var path []pathEntry[K, V]
	for n != nil && n.kind == internalKind {
		i := sort.Search(len(n.seps), func(i int) bool { return t.cmp(k, n.seps[i]) })
		path = append(path, pathEntry[K, V]{node: n, idx: i})
		n = n.children[i]
	}
	return n, path
}

// lowerBoundInLeaf returns the index of the first entry in leaf whose key is
// not less than k.
func lowerBoundInLeaf[K any, V any](cmp func(a, b K) bool, leaf *page[K, V], k K) int {
	return sort.Search(len(leaf.keys), func(i int) bool { return !cmp(leaf.keys[i], k) })
}

// Get returns the value stored for k, if present.
func (t *Tree[K, V]) Get(k K) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}
	leaf, _ := t.descend(k)
	j := lowerBoundInLeaf(t.cmp, leaf, k)
	if j < len(leaf.keys) && t.equalK(leaf.keys[j], k) {
		return leaf.values[j], true
	}
	return zero, false
}

// Contains reports whether k is present in the tree.
func (t *Tree[K, V]) Contains(k K) bool {
	_, ok := t.Get(k)
	return ok
}

func (t *Tree[K, V]) locateExact(k K) (*page[K, V], int) {
	leaf, _ := t.descend(k)
	j := lowerBoundInLeaf(t.cmp, leaf, k)
	return leaf, j
}

// begin returns a cursor to the first entry, or the empty cursor if the tree
// is empty.
func (t *Tree[K, V]) begin() Cursor[K, V] {
	if t.firstLeaf == nil {
		return Cursor[K, V]{}
	}
	return Cursor[K, V]{leaf: t.firstLeaf, index: 0}
}

// end returns the one-past-the-last cursor.
func (t *Tree[K, V]) end() Cursor[K, V] {
	if t.lastLeaf == nil {
		return Cursor[K, V]{}
	}
	return Cursor[K, V]{leaf: t.lastLeaf, index: len(t.lastLeaf.keys)}
}

// LowerBound returns a cursor to the first entry whose key is not less than
// k, or the end cursor if no such entry exists.
func (t *Tree[K, V]) LowerBound(k K) Cursor[K, V] {
	if t.root == nil {
		return Cursor[K, V]{}
	}
	leaf, _ := t.descend(k)
	j := lowerBoundInLeaf(t.cmp, leaf, k)
	if j >= len(leaf.keys) {
		if leaf.next != nil {
			return Cursor[K, V]{leaf: leaf.next, index: 0}
		}
		return Cursor[K, V]{leaf: leaf, index: j}
	}
	return Cursor[K, V]{leaf: leaf, index: j}
}

// UpperBound returns a cursor to the first entry whose key is strictly
// greater than k.
func (t *Tree[K, V]) UpperBound(k K) Cursor[K, V] {
	c := t.LowerBound(k)
	for !c.IsEnd() && t.equalK(c.Key(), k) {
		c = c.next()
	}
	return c
}

// EqualRange returns [lower, upper) bracketing every entry equal to k. With
// unique keys the range holds at most one entry.
func (t *Tree[K, V]) EqualRange(k K) (Cursor[K, V], Cursor[K, V]) {
	lo := t.LowerBound(k)
	hi := lo
	for !hi.IsEnd() && t.equalK(hi.Key(), k) {
		hi = hi.next()
	}
	return lo, hi
}
