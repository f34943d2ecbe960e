package bptree

import "fmt"

// Insert places (k, v) into the tree. If k is already present, the existing
// entry is left untouched and inserted is false. On ErrOutOfMemory the tree
// is restored to exactly its pre-call state.
func (t *Tree[K, V]) Insert(k K, v V) (Cursor[K, V], bool, error) {
	if t.root == nil {
		leaf, err := t.alloc.AllocLeaf()
		if err != nil {
			return Cursor[K, V]{}, false, fmt.Errorf("bptree: insert: %w", err)
		}
		t.root = leaf
		t.firstLeaf, t.lastLeaf = leaf, leaf
	}

	leaf, path := t.descend(k)
	j := lowerBoundInLeaf(t.cmp, leaf, k)
	if j < len(leaf.keys) && t.equalK(leaf.keys[j], k) {
		return Cursor[K, V]{leaf: leaf, index: j}, false, nil
	}

	var oldMin K
	hadOldMin := j == 0 && len(leaf.keys) > 0
	if hadOldMin {
		oldMin = leaf.keys[0]
	}

	insertLeafEntry(leaf, j, k, v)
	t.count++
	t.generation++

	if j == 0 {
		t.propagateMinKeyChange(path, k)
	}

	if len(leaf.keys) >= t.leafMax {
		if splitErr := t.splitLeaf(leaf, path); splitErr != nil {
			removeLeafEntry(leaf, j)
			t.count--
			if j == 0 && hadOldMin {
				t.propagateMinKeyChange(path, oldMin)
			}
			return Cursor[K, V]{}, false, fmt.Errorf("bptree: insert: %w", splitErr)
		}
	}

	resLeaf, resIdx := t.locateExact(k)
	t.log.V(1).Info("insert", "key", fmt.Sprint(k))
	return Cursor[K, V]{leaf: resLeaf, index: resIdx}, true, nil
}

func insertLeafEntry[K any, V any](leaf *page[K, V], i int, k K, v V) {
	leaf.keys = insertAt(leaf.keys, i, k)
	leaf.values = insertAt(leaf.values, i, v)
}

func removeLeafEntry[K any, V any](leaf *page[K, V], i int) (K, V) {
	var k K
	var v V
	leaf.keys, k = removeAt(leaf.keys, i)
	leaf.values, v = removeAt(leaf.values, i)
	return k, v
}

// propagateMinKeyChange fixes up the single ancestor separator, if any, that
// records the minimum key of the subtree containing the page the leaf
// insert/remove just happened in. Invariant (3) guarantees at most one
// ancestor holds that separator: walking up from the leaf's parent, the
// first level at which the descent took a non-leftmost child is it.
func (t *Tree[K, V]) propagateMinKeyChange(path []pathEntry[K, V], newMin K) {
	for i := len(path) - 1; i >= 0; i-- {
		idx := path[i].idx
		if idx == 0 {
			continue
		}
		path[i].node.seps[idx-1] = newMin
		return
	}
}

// splitLeaf splits an overfull leaf in two and links the new page into the
// leaf ring and its parent.
func (t *Tree[K, V]) splitLeaf(leaf *page[K, V], path []pathEntry[K, V]) error {
	m := t.leafMax / 2
	right, err := t.alloc.AllocLeaf()
	if err != nil {
		return err
	}

	right.keys = append(right.keys, leaf.keys[m:]...)
	right.values = append(right.values, leaf.values[m:]...)
	leaf.keys = leaf.keys[:m:m]
	leaf.values = leaf.values[:m:m]

	right.prev = leaf
	right.next = leaf.next
	if leaf.next != nil {
		leaf.next.prev = right
	}
	leaf.next = right
	if leaf == t.lastLeaf {
		t.lastLeaf = right
	}

	sep := right.keys[0]
	t.log.V(1).Info("split-leaf", "sep", fmt.Sprint(sep))

	if err := t.insertChildIntoParent(path, sep, leaf, right); err != nil {
		leaf.keys = append(leaf.keys, right.keys...)
		leaf.values = append(leaf.values, right.values...)
		leaf.next = right.next
		if right.next != nil {
			right.next.prev = leaf
		}
		if right == t.lastLeaf {
			t.lastLeaf = leaf
		}
		right.keys, right.values, right.prev, right.next = nil, nil, nil, nil
		t.alloc.Free(right)
		return err
	}
	return nil
}

// insertChildIntoParent links right into the parent identified by path
// (immediately after left), growing a new root if left was the root. It
// recurses into splitInternal if the parent overflows.
func (t *Tree[K, V]) insertChildIntoParent(path []pathEntry[K, V], sep K, left, right *page[K, V]) error {
	if len(path) == 0 {
		newRoot, err := t.alloc.AllocInternal(left.level + 1)
		if err != nil {
			return err
		}
		newRoot.seps = []K{sep}
		newRoot.children = []*page[K, V]{left, right}
		t.root = newRoot
		return nil
	}

	parent := path[len(path)-1].node
	at := path[len(path)-1].idx

	parent.seps = insertAt(parent.seps, at, sep)
	parent.children = insertAt(parent.children, at+1, right)

	if len(parent.seps) >= t.nodeMax {
		if err := t.splitInternal(parent, path[:len(path)-1]); err != nil {
			parent.children, _ = removeAt(parent.children, at+1)
			parent.seps, _ = removeAt(parent.seps, at)
			return err
		}
	}
	return nil
}

// splitInternal splits an overfull internal page, promoting separator
// s[m-1] (m = NODE_MAX/2) into the parent: node keeps s[:m-1]/c[:m], right
// takes s[m:]/c[m:].
func (t *Tree[K, V]) splitInternal(node *page[K, V], path []pathEntry[K, V]) error {
	m := t.nodeMax / 2
	splitIdx := m - 1
	right, err := t.alloc.AllocInternal(node.level)
	if err != nil {
		return err
	}

	promoted := node.seps[splitIdx]
	right.seps = append(right.seps, node.seps[splitIdx+1:]...)
	right.children = append(right.children, node.children[splitIdx+1:]...)

	node.seps = node.seps[:splitIdx:splitIdx]
	node.children = node.children[:splitIdx+1 : splitIdx+1]

	t.log.V(1).Info("split-internal", "promoted", fmt.Sprint(promoted))

	if err := t.insertChildIntoParent(path, promoted, node, right); err != nil {
		node.seps = append(node.seps, promoted)
		node.seps = append(node.seps, right.seps...)
		node.children = append(node.children, right.children...)
		right.seps, right.children = nil, nil
		t.alloc.Free(right)
		return err
	}
	return nil
}
