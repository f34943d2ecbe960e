package bptree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

func collect[V any](t *testing.T, tr *Tree[int, V]) []int {
	t.Helper()
	var got []int
	it := tr.Iter()
	for {
		p, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, p.Key)
	}
	return got
}

// Scenario 1: ascending inserts 1..=10 produce a level-2 root with at least
// three leaves and ascending iteration.
func TestScenarioAscendingInsertsSplitToLevelTwo(t *testing.T) {
	tr := newTreeWithFanout[int, string](intLess, 4, 4)
	for i := 1; i <= 10; i++ {
		_, inserted, err := tr.Insert(i, "v")
		require.NoError(t, err)
		require.True(t, inserted)
	}

	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, collect(t, tr))
	require.Equal(t, 2, tr.root.level)

	leaves := 0
	for l := tr.firstLeaf; l != nil; l = l.next {
		leaves++
	}
	require.GreaterOrEqual(t, leaves, 3)
	require.NoError(t, tr.CheckInvariants())
}

// Scenario 2: removing 5 from scenario 1 leaves a valid, gap-free ordering.
func TestScenarioRemoveMiddleKey(t *testing.T) {
	tr := newTreeWithFanout[int, string](intLess, 4, 4)
	for i := 1; i <= 10; i++ {
		_, _, err := tr.Insert(i, "v")
		require.NoError(t, err)
	}

	v, ok := tr.Remove(5)
	require.True(t, ok)
	require.Equal(t, "v", v)

	require.Equal(t, []int{1, 2, 3, 4, 6, 7, 8, 9, 10}, collect(t, tr))
	require.Equal(t, 9, tr.Len())
	require.NoError(t, tr.CheckInvariants())
}

// Scenario 3: an out-of-order insert sequence still yields ascending
// iteration and correct bound queries.
func TestScenarioOutOfOrderInsertSequence(t *testing.T) {
	tr := newTreeWithFanout[int, string](intLess, 4, 4)
	for _, k := range []int{5, 1, 9, 3, 7, 2, 8, 4, 6} {
		_, _, err := tr.Insert(k, "v")
		require.NoError(t, err)
	}

	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, collect(t, tr))
	require.Equal(t, 4, tr.LowerBound(4).Key())
	require.Equal(t, 5, tr.UpperBound(4).Key())
	require.NoError(t, tr.CheckInvariants())
}

// Scenario 4: duplicate insert is first-write-wins.
func TestScenarioDuplicateInsertFirstWriteWins(t *testing.T) {
	tr := newTreeWithFanout[int, int](intLess, 4, 4)
	for _, k := range []int{1, 2, 3, 4} {
		_, inserted, err := tr.Insert(k, k*10)
		require.NoError(t, err)
		require.True(t, inserted)
	}

	_, inserted, err := tr.Insert(2, 99)
	require.NoError(t, err)
	require.False(t, inserted)

	v, ok := tr.Get(2)
	require.True(t, ok)
	require.Equal(t, 20, v)
}

// Scenario 5: deleting all but one entry collapses back to a single-leaf
// root.
func TestScenarioCollapseToSingleLeaf(t *testing.T) {
	tr := newTreeWithFanout[int, string](intLess, 4, 4)
	for i := 1; i <= 16; i++ {
		_, _, err := tr.Insert(i, "v")
		require.NoError(t, err)
	}
	for i := 1; i <= 15; i++ {
		_, ok := tr.Remove(i)
		require.True(t, ok)
	}

	require.NotNil(t, tr.root)
	require.Equal(t, leafKind, tr.root.kind)
	require.Equal(t, []int{16}, collect(t, tr))
	require.Same(t, tr.firstLeaf, tr.lastLeaf)
	require.NoError(t, tr.CheckInvariants())
}

// Scenario 6: from_ordered rejects out-of-order input and leaves no tree
// behind.
func TestScenarioFromOrderedRejectsUnsorted(t *testing.T) {
	items := []Pair[int, string]{
		{Key: 1, Value: "a"},
		{Key: 3, Value: "b"},
		{Key: 2, Value: "c"},
	}
	tr, err := FromOrdered(intLess, items, Options{})
	require.ErrorIs(t, err, ErrOutOfOrderInput)
	require.Nil(t, tr)
}
