package bptree

// Equal reports whether t and other hold the same (key, value) pairs in the
// same order. V has no intrinsic equality in Go generics, so the caller
// supplies one.
func (t *Tree[K, V]) Equal(other *Tree[K, V], valueEqual func(a, b V) bool) bool {
	if t.count != other.count {
		return false
	}
	ai, bi := t.Iter(), other.Iter()
	for {
		ap, aok, _ := ai.Next()
		bp, bok, _ := bi.Next()
		if aok != bok {
			return false
		}
		if !aok {
			return true
		}
		if !t.equalK(ap.Key, bp.Key) || !valueEqual(ap.Value, bp.Value) {
			return false
		}
	}
}

// Less reports whether t sorts strictly before other under a lexicographic
// comparison of (key, value) pairs in ascending order.
func (t *Tree[K, V]) Less(other *Tree[K, V], valueLess func(a, b V) bool) bool {
	ai, bi := t.Iter(), other.Iter()
	for {
		ap, aok, _ := ai.Next()
		bp, bok, _ := bi.Next()
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return true
		case !bok:
			return false
		}
		if t.cmp(ap.Key, bp.Key) {
			return true
		}
		if t.cmp(bp.Key, ap.Key) {
			return false
		}
		if valueLess(ap.Value, bp.Value) {
			return true
		}
		if valueLess(bp.Value, ap.Value) {
			return false
		}
	}
}
