package bptree

import (
	"bufio"
	"fmt"
	"io"
)

// ToGraph renders the tree as a Graphviz dot digraph: one record node per
// page (black for leaves, red for internal pages) and one edge per
// child/separator slot. An internal page's fields are its separators
// key0..keyN-1; the edge to its leftmost child comes off the page's own
// head port, and the edge to child i (i >= 1) comes off the keyI-1 port.
// The traversal order is deterministic, so two calls against an unmutated
// tree produce byte-identical output.
func (t *Tree[K, V]) ToGraph(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph T { rankdir=LR; node[shape=record]; }")

	if t.root != nil {
		if err := writeGraphNode(bw, t.root); err != nil {
			return err
		}
	}

	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func writeGraphNode[K any, V any](bw *bufio.Writer, p *page[K, V]) error {
	name := fmt.Sprintf("page%d", p.id)

	if p.kind == leafKind {
		label := "<head>"
		for i := range p.keys {
			label += fmt.Sprintf("|{%v|%v}", p.keys[i], p.values[i])
		}
		if _, err := fmt.Fprintf(bw, "%s [label=\"%s\" color=black];\n", name, label); err != nil {
			return err
		}
		return nil
	}

	label := "<head>"
	for i, s := range p.seps {
		label += fmt.Sprintf("|<key%d> %v", i, s)
	}
	if _, err := fmt.Fprintf(bw, "%s [label=\"%s\" color=red];\n", name, label); err != nil {
		return err
	}

	childName := func(c *page[K, V]) string { return fmt.Sprintf("page%d", c.id) }
	if _, err := fmt.Fprintf(bw, "%s:head -> %s:head;\n", name, childName(p.children[0])); err != nil {
		return err
	}
	for i := 1; i < len(p.children); i++ {
		if _, err := fmt.Fprintf(bw, "%s:key%d -> %s:head;\n", name, i-1, childName(p.children[i])); err != nil {
			return err
		}
	}

	for _, c := range p.children {
		if err := writeGraphNode(bw, c); err != nil {
			return err
		}
	}
	return nil
}
