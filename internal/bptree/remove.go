package bptree

import "fmt"

// Remove deletes k's entry if present, returning its value and true. Remove
// never allocates and so, unlike Insert, never fails.
func (t *Tree[K, V]) Remove(k K) (V, bool) {
	var zero V
	if t.root == nil {
		return zero, false
	}

	leaf, path := t.descend(k)
	j := lowerBoundInLeaf(t.cmp, leaf, k)
	if j >= len(leaf.keys) || !t.equalK(leaf.keys[j], k) {
		return zero, false
	}

	_, removed := removeLeafEntry(leaf, j)
	t.count--
	t.generation++

	if j == 0 && len(leaf.keys) > 0 {
		t.propagateMinKeyChange(path, leaf.keys[0])
	}

	if len(leaf.keys) < t.leafMin {
		t.rebalanceLeaf(leaf, path)
	}

	t.collapseRoot()

	t.log.V(1).Info("remove", "key", fmt.Sprint(k))
	return removed, true
}

// siblingChoice picks which neighbor page to merge or redistribute with,
// preferring the right sibling unless only the left is available, or both
// are available and the left sibling has strictly more entries.
func siblingChoice[K any, V any](parent *page[K, V], at int) (left, right *page[K, V], sepIdx int) {
	hasLeft := at > 0
	hasRight := at < len(parent.children)-1

	switch {
	case hasLeft && hasRight:
		leftSib := parent.children[at-1]
		rightSib := parent.children[at+1]
		me := parent.children[at]
		if leftSib.keyCount() > rightSib.keyCount() {
			return leftSib, me, at - 1
		}
		return me, rightSib, at
	case hasRight:
		return parent.children[at], parent.children[at+1], at
	case hasLeft:
		return parent.children[at-1], parent.children[at], at - 1
	default:
		return nil, nil, -1
	}
}

// rebalanceLeaf restores leaf's minimum occupancy by merging it with a
// sibling or redistributing entries across the sibling boundary.
func (t *Tree[K, V]) rebalanceLeaf(leaf *page[K, V], path []pathEntry[K, V]) {
	if len(path) == 0 {
		return // root leaf: allowed to dip below LEAF_MIN
	}

	parent := path[len(path)-1].node
	at := path[len(path)-1].idx

	left, right, sepIdx := siblingChoice(parent, at)
	if left == nil {
		return
	}

	if len(left.keys)+len(right.keys) < t.leafMax {
		t.mergeLeaves(left, right, parent, sepIdx, path[:len(path)-1])
	} else {
		t.redistributeLeaves(left, right, parent, sepIdx)
	}
}

func (t *Tree[K, V]) mergeLeaves(left, right *page[K, V], parent *page[K, V], sepIdx int, parentPath []pathEntry[K, V]) {
	left.keys = append(left.keys, right.keys...)
	left.values = append(left.values, right.values...)

	left.next = right.next
	if right.next != nil {
		right.next.prev = left
	}
	if right == t.lastLeaf {
		t.lastLeaf = left
	}

	parent.seps, _ = removeAt(parent.seps, sepIdx)
	parent.children, _ = removeAt(parent.children, sepIdx+1)

	right.keys, right.values, right.prev, right.next = nil, nil, nil, nil
	t.alloc.Free(right)

	t.log.V(1).Info("merge-leaf")

	if len(parent.children) < t.nodeMin {
		t.rebalanceInternal(parent, parentPath)
	}
}

func (t *Tree[K, V]) redistributeLeaves(left, right *page[K, V], parent *page[K, V], sepIdx int) {
	total := len(left.keys) + len(right.keys)
	targetLeft := total / 2

	for len(left.keys) < targetLeft {
		k, v := removeLeafEntry(right, 0)
		left.keys = append(left.keys, k)
		left.values = append(left.values, v)
	}
	for len(left.keys) > targetLeft {
		n := len(left.keys) - 1
		k, v := left.keys[n], left.values[n]
		left.keys = left.keys[:n]
		left.values = left.values[:n]
		right.keys = insertAt(right.keys, 0, k)
		right.values = insertAt(right.values, 0, v)
	}

	parent.seps[sepIdx] = right.keys[0]
	t.log.V(1).Info("redistribute-leaf")
}

// rebalanceInternal restores node's minimum occupancy, symmetric to
// rebalanceLeaf but merging/rotating through a pulled-down parent separator
// since an internal page's own key count excludes the boundary key.
func (t *Tree[K, V]) rebalanceInternal(node *page[K, V], path []pathEntry[K, V]) {
	if len(path) == 0 {
		return // root handled by collapseRoot
	}

	parent := path[len(path)-1].node
	at := path[len(path)-1].idx

	left, right, sepIdx := siblingChoice(parent, at)
	if left == nil {
		return
	}

	if len(left.children)+len(right.children) <= t.nodeMax {
		t.mergeInternal(left, right, parent, sepIdx, path[:len(path)-1])
	} else {
		t.redistributeInternal(left, right, parent, sepIdx)
	}
}

func (t *Tree[K, V]) mergeInternal(left, right *page[K, V], parent *page[K, V], sepIdx int, parentPath []pathEntry[K, V]) {
	pulled := parent.seps[sepIdx]

	left.seps = append(left.seps, pulled)
	left.seps = append(left.seps, right.seps...)
	left.children = append(left.children, right.children...)

	parent.seps, _ = removeAt(parent.seps, sepIdx)
	parent.children, _ = removeAt(parent.children, sepIdx+1)

	right.seps, right.children = nil, nil
	t.alloc.Free(right)

	t.log.V(1).Info("merge-internal")

	if len(parent.children) < t.nodeMin {
		t.rebalanceInternal(parent, parentPath)
	}
}

func (t *Tree[K, V]) redistributeInternal(left, right *page[K, V], parent *page[K, V], sepIdx int) {
	if len(left.seps) > len(right.seps) {
		n := len(left.seps) - 1
		movedSep := left.seps[n]
		movedChild := left.children[n+1]

		left.seps = left.seps[:n:n]
		left.children = left.children[:n+1 : n+1]

		right.seps = insertAt(right.seps, 0, parent.seps[sepIdx])
		right.children = insertAt(right.children, 0, movedChild)

		parent.seps[sepIdx] = movedSep
	} else {
		movedSep := right.seps[0]
		movedChild := right.children[0]

		right.seps, _ = removeAt(right.seps, 0)
		right.children, _ = removeAt(right.children, 0)

		left.seps = append(left.seps, parent.seps[sepIdx])
		left.children = append(left.children, movedChild)

		parent.seps[sepIdx] = movedSep
	}
	t.log.V(1).Info("redistribute-internal")
}

// collapseRoot drops internal root levels that have decayed to a single
// child, and clears the root entirely once the last leaf empties out.
func (t *Tree[K, V]) collapseRoot() {
	for t.root != nil && t.root.kind == internalKind && len(t.root.children) == 1 {
		old := t.root
		t.root = old.children[0]
		old.children, old.seps = nil, nil
		t.alloc.Free(old)
	}

	if t.root != nil && t.root.kind == leafKind && len(t.root.keys) == 0 {
		t.alloc.Free(t.root)
		t.root = nil
		t.firstLeaf, t.lastLeaf = nil, nil
	}
}
