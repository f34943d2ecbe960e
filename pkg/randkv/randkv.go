// Package randkv generates random key/value corpora for property-based
// B+-tree tests via gofuzz: int keys with string values over a bounded key
// domain, and random permutations of 0..n-1. Other key and value types are
// not generated.
package randkv

import (
	fuzz "github.com/google/gofuzz"
)

// IntStrings returns n distinct random ints in [0, bound) paired with
// random string values. Unlike the teacher's RandomKV, the key domain is
// bounded so callers can control the collision rate between successive
// batches of generated keys.
func IntStrings(n, bound int) map[int]string {
	f := fuzz.New().NilChance(0).NumElements(1, 1)
	out := map[int]string{}

	for len(out) < n {
		var k int
		f.Fuzz(&k)
		if k < 0 {
			k = -k
		}
		if bound > 0 {
			k %= bound
		}
		if _, exists := out[k]; exists {
			continue
		}

		var v string
		f.Fuzz(&v)
		out[k] = v
	}
	return out
}

// Permutation returns a random permutation of 0..n-1, for exercising
// out-of-order insert sequences against a fixed expected sorted result.
func Permutation(n int) []int {
	f := fuzz.New()
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		var r uint64
		f.Fuzz(&r)
		j := int(r % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}
