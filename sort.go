// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

// sortSpecs performs the stable partition described in spec.md §4.5:
// specs with metacharacters stay first, exact (literal) specs move after
// them, each group preserving its original relative order. Consequence:
// during the lookup engine's reverse scan, exact specs are examined
// first, so literal matches win over regex matches loaded earlier
// (spec.md §3 invariant 3, property 2 "exact-beats-regex").
func sortSpecs(store *specStore) {
	specs := store.specs
	out := make([]*spec, 0, len(specs))

	for _, sp := range specs {
		if sp.hasMetaChars {
			out = append(out, sp)
		}
	}

	for _, sp := range specs {
		if !sp.hasMetaChars {
			out = append(out, sp)
		}
	}

	store.specs = out
}
