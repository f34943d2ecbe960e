// Package bptree implements an in-memory, generic B+-tree ordered
// associative container: fixed-fanout pages, a doubly-linked leaf ring for
// ordered iteration, and split/merge/redistribute mutation under a
// caller-supplied total order.
package bptree
