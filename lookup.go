// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import "fmt"

// lookupCommon implements the shared reverse-scan algorithm behind
// Lookup, PartialMatch, and BestMatch (spec.md §4.6).
func lookupCommon(h *Handle, key string, mode FileMode, partial bool) (*spec, error) {
	if h.store.len() == 0 {
		return nil, ErrNotFound
	}

	key = collapseSlashes(key)
	stemID, buf := h.stems.fileStem(key)
	mode = mode.masked()

	specs := h.store.specs
	for i := len(specs) - 1; i >= 0; i-- {
		sp := specs[i]

		if sp.stemID != -1 && sp.stemID != stemID {
			continue
		}

		if mode != 0 && sp.mode != 0 && mode != sp.mode {
			continue
		}

		re, err := sp.regex.get()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		target := key
		if sp.stemID != -1 {
			target = buf
		}

		kind, err := re.match(target, partial)
		if err != nil {
			return nil, err
		}

		switch kind {
		case matchFull:
			sp.matches.Add(1)
			return sp, nil
		case matchPartial:
			return sp, nil
		}
	}

	return nil, ErrNotFound
}

// resolveLabel turns a matched spec into its public Label, degrading the
// "<<none>>" sentinel to ErrNotFound (spec.md §4.6 step 5).
func resolveLabel(sp *spec) (Label, error) {
	if sp.label.Raw == noneContext {
		return Label{}, ErrNotFound
	}

	return sp.label, nil
}

// Lookup returns the best matching label for key under mode, or
// ErrNotFound.
func (h *Handle) Lookup(key string, mode FileMode) (Label, error) {
	if h == nil {
		return Label{}, ErrNilHandle
	}

	sp, err := lookupCommon(h, h.subs.apply(key), mode, false)
	if err != nil {
		return Label{}, err
	}

	return resolveLabel(sp)
}

// PartialMatch reports whether key is a viable prefix of some pattern
// this handle could match.
func (h *Handle) PartialMatch(key string) bool {
	if h == nil {
		return false
	}

	_, err := lookupCommon(h, h.subs.apply(key), 0, true)
	return err == nil
}

// BestMatch resolves key and its aliases and returns the label of the
// single best hit, implementing spec.md §4.6's best-match semantics:
// an exact (no-metachars) hit on the key or any alias wins immediately,
// probed in argument order so the key's own exact match takes priority;
// otherwise the hit with the strictly greatest prefixLen wins, ties
// resolving to the key, then to the first alias in argument order.
func (h *Handle) BestMatch(key string, aliases []string, mode FileMode) (Label, error) {
	if h == nil {
		return Label{}, ErrNilHandle
	}

	if len(aliases) == 0 {
		return h.Lookup(key, mode)
	}

	keys := make([]string, 0, len(aliases)+1)
	keys = append(keys, key)
	keys = append(keys, aliases...)

	var best *spec
	var bestPrefix uint32
	haveBest := false

	for _, k := range keys {
		sp, err := lookupCommon(h, h.subs.apply(k), mode, false)
		if err != nil {
			continue
		}

		if sp.exact() {
			return resolveLabel(sp)
		}

		if !haveBest || sp.prefixLen > bestPrefix {
			best = sp
			bestPrefix = sp.prefixLen
			haveBest = true
		}
	}

	if !haveBest {
		return Label{}, ErrNotFound
	}

	return resolveLabel(best)
}
