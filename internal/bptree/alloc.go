package bptree

// PageAllocator is the external collaborator the tree asks for pages. A
// caller can substitute a bounded or instrumented allocator (see
// boundedAllocator) to exercise ErrOutOfMemory handling without needing an
// actually-exhausted process.
type PageAllocator[K any, V any] interface {
	AllocLeaf() (*page[K, V], error)
	AllocInternal(level int) (*page[K, V], error)
	Free(p *page[K, V])
}

// arenaAllocator allocates a fresh page when none is free and recycles freed
// pages through a pair of free lists, the same free-id-recycling shape as
// the teacher's Freelist, adapted here from an mmap page-slot allocator into
// an in-memory *page[K, V] object pool.
type arenaAllocator[K any, V any] struct {
	nextID       uint64
	freeLeaf     []*page[K, V]
	freeInternal []*page[K, V]
}

func newArenaAllocator[K any, V any]() *arenaAllocator[K, V] {
	return &arenaAllocator[K, V]{}
}

func (a *arenaAllocator[K, V]) AllocLeaf() (*page[K, V], error) {
	if n := len(a.freeLeaf); n > 0 {
		p := a.freeLeaf[n-1]
		a.freeLeaf = a.freeLeaf[:n-1]
		return p, nil
	}
	a.nextID++
	return &page[K, V]{kind: leafKind, id: a.nextID}, nil
}

func (a *arenaAllocator[K, V]) AllocInternal(level int) (*page[K, V], error) {
	if n := len(a.freeInternal); n > 0 {
		p := a.freeInternal[n-1]
		a.freeInternal = a.freeInternal[:n-1]
		p.level = level
		return p, nil
	}
	a.nextID++
	return &page[K, V]{kind: internalKind, level: level, id: a.nextID}, nil
}

func (a *arenaAllocator[K, V]) Free(p *page[K, V]) {
	switch p.kind {
	case leafKind:
		if len(p.keys) != 0 {
			panic("bptree: freeing non-empty leaf page")
		}
		p.prev, p.next = nil, nil
		a.freeLeaf = append(a.freeLeaf, p)
	case internalKind:
		if len(p.seps) != 0 {
			panic("bptree: freeing non-empty internal page")
		}
		p.children = nil
		a.freeInternal = append(a.freeInternal, p)
	}
}

// boundedAllocator wraps another allocator and fails once a fixed number of
// pages are simultaneously live, so that ErrOutOfMemory unwinding can be
// exercised deterministically in tests instead of by exhausting the host.
type boundedAllocator[K any, V any] struct {
	inner    PageAllocator[K, V]
	maxPages int
	live     int
}

// newBoundedAllocator wraps inner with a cap of maxPages simultaneously live
// pages. maxPages <= 0 means unbounded (equivalent to inner alone).
func newBoundedAllocator[K any, V any](inner PageAllocator[K, V], maxPages int) *boundedAllocator[K, V] {
	return &boundedAllocator[K, V]{inner: inner, maxPages: maxPages}
}

func (b *boundedAllocator[K, V]) AllocLeaf() (*page[K, V], error) {
	if b.maxPages > 0 && b.live >= b.maxPages {
		return nil, ErrOutOfMemory
	}
	p, err := b.inner.AllocLeaf()
	if err != nil {
		return nil, err
	}
	b.live++
	return p, nil
}

func (b *boundedAllocator[K, V]) AllocInternal(level int) (*page[K, V], error) {
	if b.maxPages > 0 && b.live >= b.maxPages {
		return nil, ErrOutOfMemory
	}
	p, err := b.inner.AllocInternal(level)
	if err != nil {
		return nil, err
	}
	b.live++
	return p, nil
}

func (b *boundedAllocator[K, V]) Free(p *page[K, V]) {
	b.inner.Free(p)
	b.live--
}
