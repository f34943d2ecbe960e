package bptree

// Iterator walks entries in ascending key order starting from where it was
// obtained. It is invalidated by any structural mutation of its tree.
type Iterator[K any, V any] struct {
	tree *Tree[K, V]
	cur  Cursor[K, V]
	gen  uint64
}

// Iter returns an iterator positioned at the first entry.
func (t *Tree[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{tree: t, cur: t.begin(), gen: t.generation}
}

// IterFrom returns an iterator positioned at c, a cursor previously obtained
// from the same tree.
func (t *Tree[K, V]) IterFrom(c Cursor[K, V]) *Iterator[K, V] {
	return &Iterator[K, V]{tree: t, cur: c, gen: t.generation}
}

// Next returns the next (key, value) pair in ascending order. ok is false
// once iteration is exhausted. err is ErrIteratorInvalidated if the tree was
// mutated since the iterator was obtained.
func (it *Iterator[K, V]) Next() (Pair[K, V], bool, error) {
	if it.gen != it.tree.generation {
		return Pair[K, V]{}, false, ErrIteratorInvalidated
	}
	if it.cur.IsEnd() {
		return Pair[K, V]{}, false, nil
	}
	p := Pair[K, V]{Key: it.cur.Key(), Value: it.cur.Value()}
	it.cur = it.cur.next()
	return p, true, nil
}

// ReverseIterator walks entries in descending key order.
type ReverseIterator[K any, V any] struct {
	tree *Tree[K, V]
	cur  Cursor[K, V]
	done bool
	gen  uint64
}

// IterRev returns a reverse iterator positioned at the last entry.
func (t *Tree[K, V]) IterRev() *ReverseIterator[K, V] {
	c, ok := t.end().prev()
	return &ReverseIterator[K, V]{tree: t, cur: c, done: !ok, gen: t.generation}
}

// Next returns the next (key, value) pair in descending order.
func (it *ReverseIterator[K, V]) Next() (Pair[K, V], bool, error) {
	if it.gen != it.tree.generation {
		return Pair[K, V]{}, false, ErrIteratorInvalidated
	}
	if it.done {
		return Pair[K, V]{}, false, nil
	}
	p := Pair[K, V]{Key: it.cur.Key(), Value: it.cur.Value()}
	var ok bool
	it.cur, ok = it.cur.prev()
	it.done = !ok
	return p, true, nil
}
