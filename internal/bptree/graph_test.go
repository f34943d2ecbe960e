package bptree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToGraphIsDeterministic(t *testing.T) {
	tr := newTreeWithFanout[int, string](intLess, 4, 4)
	for i := 1; i <= 12; i++ {
		_, _, err := tr.Insert(i, "v")
		require.NoError(t, err)
	}

	var a, b bytes.Buffer
	require.NoError(t, tr.ToGraph(&a))
	require.NoError(t, tr.ToGraph(&b))
	require.Equal(t, a.String(), b.String())

	out := a.String()
	require.True(t, strings.HasPrefix(out, "digraph T"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
	require.Contains(t, out, "color=red")
	require.Contains(t, out, "color=black")
}

func TestToGraphEmptyTree(t *testing.T) {
	tr := NewTree[int, string](intLess, Options{})
	var buf bytes.Buffer
	require.NoError(t, tr.ToGraph(&buf))
	require.Equal(t, "digraph T { rankdir=LR; node[shape=record]; }\n}\n", buf.String())
}
