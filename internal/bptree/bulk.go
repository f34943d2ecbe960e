package bptree

import "fmt"

// FromOrdered bulk-constructs a tree from a strictly ascending slice of
// pairs, packing leaves to roughly 75% of LEAF_MAX and internal pages to
// NODE_MAX fanout instead of growing the tree one Insert at a time.
func FromOrdered[K any, V any](cmp func(a, b K) bool, items []Pair[K, V], opts Options) (*Tree[K, V], error) {
	t := NewTree[K, V](cmp, opts)

	for i := 1; i < len(items); i++ {
		if !cmp(items[i-1].Key, items[i].Key) {
			return nil, ErrOutOfOrderInput
		}
	}
	if len(items) == 0 {
		return t, nil
	}

	leafFill := (t.leafMax * 3) / 4
	if leafFill < 1 {
		leafFill = 1
	}

	var leaves []*page[K, V]
	for i, end := 0, 0; i < len(items); i = end {
		end = i + leafFill
		if rest := len(items) - end; rest > 0 && rest < t.leafMin {
			// A short tail joins this leaf, or the two share what is left.
			if len(items)-i < t.leafMax {
				end = len(items)
			} else {
				end = i + (len(items)-i)/2
			}
		}
		if end > len(items) {
			end = len(items)
		}
		leaf, err := t.alloc.AllocLeaf()
		if err != nil {
			return nil, fmt.Errorf("bptree: from_ordered: %w", err)
		}
		for _, it := range items[i:end] {
			leaf.keys = append(leaf.keys, it.Key)
			leaf.values = append(leaf.values, it.Value)
		}
		leaves = append(leaves, leaf)
	}

	for i := 1; i < len(leaves); i++ {
		leaves[i-1].next = leaves[i]
		leaves[i].prev = leaves[i-1]
	}
	t.firstLeaf, t.lastLeaf = leaves[0], leaves[len(leaves)-1]
	t.count = len(items)

	mins := make([]K, len(leaves))
	nodes := make([]*page[K, V], len(leaves))
	for i, lf := range leaves {
		mins[i] = lf.keys[0]
		nodes[i] = lf
	}

	root, err := buildLevels(t, nodes, mins)
	if err != nil {
		return nil, fmt.Errorf("bptree: from_ordered: %w", err)
	}
	t.root = root
	return t, nil
}

// buildLevels packs nodes (all at the same level, with parallel minimum keys
// in mins) into parent pages of NODE_MAX fanout, repeating bottom-up until a
// single root page remains.
func buildLevels[K any, V any](t *Tree[K, V], nodes []*page[K, V], mins []K) (*page[K, V], error) {
	if len(nodes) == 1 {
		return nodes[0], nil
	}

	level := nodes[0].level + 1
	fanout := t.nodeMax
	var nextNodes []*page[K, V]
	var nextMins []K

	for i, end := 0, 0; i < len(nodes); i = end {
		end = i + fanout
		if rest := len(nodes) - end; rest > 0 && rest < t.nodeMin {
			// A short tail joins this parent, or the two share what is left.
			if len(nodes)-i <= t.nodeMax {
				end = len(nodes)
			} else {
				end = i + (len(nodes)-i)/2
			}
		}
		if end > len(nodes) {
			end = len(nodes)
		}
		parent, err := t.alloc.AllocInternal(level)
		if err != nil {
			return nil, err
		}
		parent.children = append(parent.children, nodes[i:end]...)
		parent.seps = append(parent.seps, mins[i+1:end]...)

		nextNodes = append(nextNodes, parent)
		nextMins = append(nextMins, mins[i])
	}

	return buildLevels(t, nextNodes, nextMins)
}
