package bptree

import (
	"sort"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/daicang/bptree/pkg/randkv"
)

// TestRoundTripFromOrderedMatchesInput builds a tree from an ascending
// vector via FromOrdered and checks that iterating it reproduces the input.
func TestRoundTripFromOrderedMatchesInput(t *testing.T) {
	kvs := randkv.IntStrings(200, 0)
	keys := make([]int, 0, len(kvs))
	for k := range kvs {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	items := make([]Pair[int, string], len(keys))
	for i, k := range keys {
		items[i] = Pair[int, string]{Key: k, Value: kvs[k]}
	}

	tr, err := FromOrdered(intLess, items, Options{})
	require.NoError(t, err)
	require.Equal(t, keys, collect(t, tr))
	require.NoError(t, tr.CheckInvariants())
}

// TestRoundTripPermutedInsertsSortThemselves inserts a random permutation of
// the same keys and checks iteration still yields the sorted order.
func TestRoundTripPermutedInsertsSortThemselves(t *testing.T) {
	const n = 300
	perm := randkv.Permutation(n)

	tr := NewTree[int, int](intLess, Options{PageBytes: 256})
	for _, k := range perm {
		_, inserted, err := tr.Insert(k, k)
		require.NoError(t, err)
		require.True(t, inserted)
	}

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

	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	require.Equal(t, want, got)
	require.NoError(t, tr.CheckInvariants())
}

// TestRoundTripRemoveAllInAnyOrderEmptiesTree removes every key in a random
// order and checks the tree ends up empty with all invariants intact along
// the way.
func TestRoundTripRemoveAllInAnyOrderEmptiesTree(t *testing.T) {
	const n = 250
	tr := NewTree[int, int](intLess, Options{PageBytes: 192})
	for i := 0; i < n; i++ {
		_, _, err := tr.Insert(i, i*i)
		require.NoError(t, err)
	}

	order := randkv.Permutation(n)
	for _, k := range order {
		v, ok := tr.Remove(k)
		require.True(t, ok)
		require.Equal(t, k*k, v)
		require.NoError(t, tr.CheckInvariants())
	}

	require.True(t, tr.IsEmpty())
	require.Equal(t, 0, tr.Len())
}

// TestIteratorInvalidatedByMutation exercises the explicit generation-stamp
// invalidation: a live iterator must surface ErrIteratorInvalidated rather
// than silently walking stale pages once the tree is mutated.
func TestIteratorInvalidatedByMutation(t *testing.T) {
	tr := NewTree[int, string](intLess, Options{})
	for i := 0; i < 10; i++ {
		_, _, err := tr.Insert(i, "v")
		require.NoError(t, err)
	}

	it := tr.Iter()
	_, _, err := it.Next()
	require.NoError(t, err)

	_, _, err = tr.Insert(100, "w")
	require.NoError(t, err)

	_, ok, err := it.Next()
	require.False(t, ok)
	require.ErrorIs(t, err, ErrIteratorInvalidated)
}

// TestRandomOpsMatchMapOracle runs a random sequence of insert/remove/get
// against the tree and a plain map[int]int oracle, checking each operation's
// result and the length after every operation, then the invariants and the
// full iteration order and values once the sequence ends. The oracle is a
// bare map rather than a second tree so it cannot share a bug with the
// implementation under test.
func TestRandomOpsMatchMapOracle(t *testing.T) {
	f := fuzz.New().NilChance(0)
	tr := NewTree[int, int](intLess, Options{PageBytes: 256})
	oracle := map[int]int{}

	const ops = 2000
	for i := 0; i < ops; i++ {
		var pick uint8
		f.Fuzz(&pick)
		var key uint16
		f.Fuzz(&key)
		k := int(key % 400)

		switch pick % 3 {
		case 0: // insert
			var v int
			f.Fuzz(&v)
			_, inserted, err := tr.Insert(k, v)
			require.NoError(t, err)
			_, existed := oracle[k]
			require.Equal(t, !existed, inserted)
			if !existed {
				oracle[k] = v
			}
		case 1: // remove
			want, wantOk := oracle[k]
			got, gotOk := tr.Remove(k)
			require.Equal(t, wantOk, gotOk)
			if wantOk {
				require.Equal(t, want, got)
				delete(oracle, k)
			}
		case 2: // get
			want, wantOk := oracle[k]
			got, gotOk := tr.Get(k)
			require.Equal(t, wantOk, gotOk)
			if wantOk {
				require.Equal(t, want, got)
			}
		}

		require.Equal(t, len(oracle), tr.Len())
	}

	require.NoError(t, tr.CheckInvariants())

	wantKeys := make([]int, 0, len(oracle))
	for k := range oracle {
		wantKeys = append(wantKeys, k)
	}
	sort.Ints(wantKeys)

	var gotKeys []int
	var gotVals []int
	it := tr.Iter()
	for {
		p, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		gotKeys = append(gotKeys, p.Key)
		gotVals = append(gotVals, p.Value)
	}
	require.Equal(t, wantKeys, gotKeys)
	for i, k := range gotKeys {
		require.Equal(t, oracle[k], gotVals[i])
	}
}
