// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"fmt"
	"log/slog"
)

type sortKey struct {
	stem  string
	regex string
	mode  FileMode
}

func (a sortKey) compareLess(b sortKey) bool {
	if a.stem != b.stem {
		return a.stem < b.stem
	}
	if a.regex != b.regex {
		return a.regex < b.regex
	}
	return a.mode < b.mode
}

// Compare structurally compares h1 and h2's loaded rule sets, implementing
// the selabel_cmp contract (spec.md §4.7): specs are compared by (stem,
// pattern, mode) ignoring load order, and two specs "agree" only when
// their patterns, modes, and raw contexts are identical once sorted into
// matching position. The first handle missing an entry the other has
// determines Subset/Superset; any shared entry with mismatched fields
// makes the whole comparison Incomparable.
func Compare(h1, h2 *Handle) (CompareResult, error) {
	result, _, err := CompareDetail(h1, h2)
	return result, err
}

// CompareDetail is Compare plus a human-readable description of every
// mismatched shared entry found along the way, for the "compare" CLI
// subcommand's diagnostic output.
func CompareDetail(h1, h2 *Handle) (CompareResult, []string, error) {
	if h1 == nil || h2 == nil {
		return CompareIncomparable, nil, ErrNilHandle
	}

	logger := h1.logger
	if logger == nil {
		logger = slog.Default()
	}

	s1 := sortedKeyed(h1)
	s2 := sortedKeyed(h2)

	i, j := 0, 0
	onlyIn1, onlyIn2 := 0, 0
	incomparable := false
	var mismatches []string

	for i < len(s1) && j < len(s2) {
		k1, k2 := s1[i].key, s2[j].key

		switch {
		case k1.compareLess(k2):
			onlyIn1++
			i++
		case k2.compareLess(k1):
			onlyIn2++
			j++
		default:
			var msg string

			// When both sides already hold a compiled regex, the
			// comparator's field-equality check is the compiled form
			// (spec.md §4.7), not the source bytes the join key used;
			// a lazy, not-yet-compiled slot falls back to regex_str,
			// which the join already established as equal.
			if r1, r2 := s1[i].sp.regex.peek(), s2[j].sp.regex.peek(); r1 != nil && r2 != nil && !compareEqual(r1, r2) {
				msg = fmt.Sprintf("pattern %q: compiled regexes differ despite identical source", k1.regex)
			} else if s1[i].sp.label.Raw != s2[j].sp.label.Raw {
				msg = describeMismatch(k1, s1[i].sp.label.Raw, s2[j].sp.label.Raw)
			}

			if msg != "" {
				logger.Warn("fcontext: compare mismatch", "detail", msg)
				mismatches = append(mismatches, msg)
				incomparable = true
			}
			i++
			j++
		}
	}

	onlyIn1 += len(s1) - i
	onlyIn2 += len(s2) - j

	if incomparable {
		return CompareIncomparable, mismatches, nil
	}

	switch {
	case onlyIn1 == 0 && onlyIn2 == 0:
		return CompareEqual, nil, nil
	case onlyIn1 == 0:
		return CompareSubset, nil, nil
	case onlyIn2 == 0:
		return CompareSuperset, nil, nil
	default:
		return CompareIncomparable, nil, nil
	}
}

type keyedSpec struct {
	key sortKey
	sp  *spec
}

// sortedKeyed builds h's specs keyed by (stem, pattern, mode) and sorted
// ascending by that key, via a simple insertion sort: handle spec counts
// are small enough (the original rule sets this models top out in the
// low thousands) that clarity wins over an O(n log n) sort here.
func sortedKeyed(h *Handle) []keyedSpec {
	out := make([]keyedSpec, len(h.store.specs))
	for idx, sp := range h.store.specs {
		out[idx] = keyedSpec{
			key: sortKey{
				stem:  string(h.stems.at(sp.stemID)),
				regex: string(sp.regexStr.bytes()),
				mode:  sp.mode,
			},
			sp: sp,
		}
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].key.compareLess(out[j-1].key); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	return out
}

// describeMismatch is a diagnostic helper for CLI "compare" output.
func describeMismatch(k sortKey, ctx1, ctx2 string) string {
	return fmt.Sprintf("pattern %q: %q vs %q", k.regex, ctx1, ctx2)
}
