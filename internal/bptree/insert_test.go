package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertDuplicateKeyReturnsExistingCursor(t *testing.T) {
	tr := NewTree[int, string](intLess, Options{})
	_, inserted, err := tr.Insert(1, "first")
	require.NoError(t, err)
	require.True(t, inserted)

	c, inserted, err := tr.Insert(1, "second")
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, "first", c.Value())
}

func TestInsertSplitsLeafAtCapacity(t *testing.T) {
	tr := newTreeWithFanout[int, int](intLess, 4, 4)
	for i := 1; i <= 3; i++ {
		_, _, err := tr.Insert(i, i)
		require.NoError(t, err)
	}
	require.Equal(t, leafKind, tr.root.kind)
	require.Equal(t, 3, len(tr.root.keys))

	_, _, err := tr.Insert(4, 4)
	require.NoError(t, err)

	require.Equal(t, internalKind, tr.root.kind)
	require.Equal(t, 1, tr.root.level)
	require.Len(t, tr.root.children, 2)
	require.NoError(t, tr.CheckInvariants())
}

// TestInsertOutOfMemoryLeavesTreeUnchanged forces an allocation failure on
// the page a leaf split would need and checks the tree is restored to
// exactly its pre-call state: same count, same keys, same structure.
func TestInsertOutOfMemoryLeavesTreeUnchanged(t *testing.T) {
	alloc := newBoundedAllocator[int, int](newArenaAllocator[int, int](), 1)
	tr := newTreeWithFanoutAndAllocator[int, int](intLess, 4, 4, alloc)

	for i := 1; i <= 3; i++ {
		_, inserted, err := tr.Insert(i, i)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	preCount := tr.Len()
	preKeys := collect(t, tr)

	_, inserted, err := tr.Insert(4, 4)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.False(t, inserted)

	require.Equal(t, preCount, tr.Len())
	require.Equal(t, preKeys, collect(t, tr))
	require.NoError(t, tr.CheckInvariants())

	_, ok := tr.Get(4)
	require.False(t, ok)
}
