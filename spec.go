// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"sync"
	"sync/atomic"
)

// sourceBytes is a tagged union of owned vs mmap-borrowed byte strings,
// per the "Borrowed vs owned strings" design note: the region's lifetime
// is the handle's, and borrowed bytes must not outlive it.
type sourceBytes struct {
	owned    []byte
	borrowed []byte
	region   *mmapRegion
}

// ownedBytes wraps a heap-owned byte slice.
func ownedBytes(b []byte) sourceBytes {
	return sourceBytes{owned: b}
}

// borrowedBytes wraps a byte slice backed by a still-mapped region.
func borrowedBytes(b []byte, region *mmapRegion) sourceBytes {
	return sourceBytes{borrowed: b, region: region}
}

// bytes returns the backing bytes regardless of ownership.
func (s sourceBytes) bytes() []byte {
	if s.owned != nil {
		return s.owned
	}

	return s.borrowed
}

// fromMMAP reports whether the bytes are borrowed from a mapped region.
func (s sourceBytes) fromMMAP() bool {
	return s.owned == nil && s.borrowed != nil
}

// compileState is the lazy regex-compile slot's current state.
type compileState int32

const (
	compileUncompiled compileState = iota
	compileCompiled
	compileFailed
)

// regexSlot is the interior-mutable lazy-compile slot described by the
// "Lazy regex compilation" design note: a successful compile is
// write-once, and concurrent readers observe either Uncompiled or
// Compiled, never a half-built value.
type regexSlot struct {
	state   atomic.Int32
	compile func() (*compiledRegex, error)
	mu      sync.Mutex
	value   *compiledRegex
	err     error
}

// newRegexSlot builds a slot that lazily compiles via fn on first access.
func newRegexSlot(fn func() (*compiledRegex, error)) *regexSlot {
	return &regexSlot{compile: fn}
}

// preset builds a slot already holding a compiled value (the binary loader's
// "adopted" path, spec.md §4.1).
func preset(v *compiledRegex) *regexSlot {
	s := &regexSlot{}
	s.state.Store(int32(compileCompiled))
	s.value = v
	return s
}

// get returns the compiled regex, compiling it on first call. Idempotent:
// repeated calls after a successful compile return the same value without
// recompiling.
func (s *regexSlot) get() (*compiledRegex, error) {
	if compileState(s.state.Load()) != compileUncompiled {
		return s.value, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if compileState(s.state.Load()) != compileUncompiled {
		return s.value, s.err
	}

	v, err := s.compile()
	s.value, s.err = v, err
	if err != nil {
		s.state.Store(int32(compileFailed))
	} else {
		s.state.Store(int32(compileCompiled))
	}

	return s.value, s.err
}

// compiled reports whether the slot currently holds a successful compile,
// without triggering a compile.
func (s *regexSlot) compiled() bool {
	return compileState(s.state.Load()) == compileCompiled
}

// peek returns the slot's compiled regex if one is already present,
// without triggering a compile. Used by the comparator, which must not
// force-compile a lazy slot just to run a comparison (spec.md §4.7).
func (s *regexSlot) peek() *compiledRegex {
	if compileState(s.state.Load()) != compileCompiled {
		return nil
	}

	return s.value
}

// spec is one pathname-pattern-to-security-label rule.
type spec struct {
	// regexStr is the source pattern; bytes may be borrowed from a
	// mapped region.
	regexStr sourceBytes
	// regex is the lazy-or-eager compiled regex slot.
	regex *regexSlot
	// stemID indexes the handle's stem table, or -1 for "no literal prefix".
	stemID int
	// mode is the file-type filter, or 0 meaning "any".
	mode FileMode
	// label is the spec's raw/translated context pair.
	label Label
	// typeStr is the optional type-field token a context line carried
	// (e.g. "-d", "--"), kept for diagnostics.
	typeStr string
	// hasMetaChars reports whether the pattern contains regex metachars.
	// A spec without metachars is "exact".
	hasMetaChars bool
	// prefixLen is the pattern's fixed literal prefix length, used by
	// best-match ranking.
	prefixLen uint32
	// matches is a monotonic diagnostic counter for Stats' "unused rule"
	// reporting. Atomic so concurrent readers don't need external locking;
	// correctness of returned labels never depends on its exact value.
	matches atomic.Uint64
}

// exact reports whether this spec's pattern is a literal pathname.
func (sp *spec) exact() bool {
	return !sp.hasMetaChars
}

// specStore is the append-only, geometrically-growing ordered array of
// specs for one handle (spec.md §3 invariant 4).
type specStore struct {
	specs []*spec
}

// grow appends sp to the store.
func (st *specStore) grow(sp *spec) {
	st.specs = append(st.specs, sp)
}

// len returns the number of specs currently stored.
func (st *specStore) len() int {
	return len(st.specs)
}
