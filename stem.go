// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

// stem is a leading path segment (e.g. "/usr", "/var") used to prune
// lookup candidates before regex matching.
type stem struct {
	// buf holds the stem bytes, owned or borrowed from a mapped region.
	buf sourceBytes
	// fromMMAP reports whether buf is borrowed (no free on close).
	fromMMAP bool
}

// bytes returns the stem's backing bytes regardless of ownership.
func (s *stem) bytes() []byte {
	return s.buf.bytes()
}

// stemTable is the deduplicated store of stems for one handle. Within one
// table, stems are unique by (length, bytes) — spec.md §3 invariant.
type stemTable struct {
	stems []stem
}

// find returns the index of an existing stem with identical bytes, or -1.
func (t *stemTable) find(b []byte) int {
	for i := range t.stems {
		sb := t.stems[i].bytes()
		if len(sb) == len(b) && string(sb) == string(b) {
			return i
		}
	}

	return -1
}

// store appends a new owned stem and returns its index.
func (t *stemTable) store(b []byte) int {
	t.stems = append(t.stems, stem{buf: ownedBytes(append([]byte(nil), b...))})
	return len(t.stems) - 1
}

// storeBorrowed appends a new stem borrowed from a mapped region and
// returns its index.
func (t *stemTable) storeBorrowed(b []byte, region *mmapRegion) int {
	t.stems = append(t.stems, stem{buf: borrowedBytes(b, region), fromMMAP: true})
	return len(t.stems) - 1
}

// findOrStore reuses an existing stem with identical bytes, or allocates a
// new owned stem. Used by the text loader.
func (t *stemTable) findOrStore(b []byte) int {
	if id := t.find(b); id >= 0 {
		return id
	}

	return t.store(b)
}

// findOrStoreBorrowed reuses an existing stem with identical bytes, or
// allocates a new borrowed stem. Used by the binary loader (spec.md §4.1):
// "an existing stem with equal bytes is reused; otherwise a new Stem is
// allocated and marked from_mmap."
func (t *stemTable) findOrStoreBorrowed(b []byte, region *mmapRegion) int {
	if id := t.find(b); id >= 0 {
		return id
	}

	return t.storeBorrowed(b, region)
}

// at returns the stem bytes for id, or nil if id is out of range.
func (t *stemTable) at(id int) []byte {
	if id < 0 || id >= len(t.stems) {
		return nil
	}

	return t.stems[id].bytes()
}

// fileStem computes the key's leading path-segment stem index, per
// spec.md step 2: take the substring from byte 1 up to the next '/'.
// Returns (-1, buf) unchanged when there is no such segment or it does
// not match any known stem.
func (t *stemTable) fileStem(key string) (int, string) {
	stemLen := stemLenFromFileName(key)
	if stemLen == 0 {
		return -1, key
	}

	candidate := key[:stemLen]
	for i := range t.stems {
		sb := t.stems[i].bytes()
		if len(sb) == stemLen && string(sb) == candidate {
			return i, key[stemLen:]
		}
	}

	return -1, key
}

// stemLenFromFileName returns the length of the text that is the stem of
// a file name: the position of the next '/' found starting one byte past
// the front of buf, or 0 if there is none (file in the root directory, or
// buf too short to have a stem).
func stemLenFromFileName(buf string) int {
	if len(buf) < 2 {
		return 0
	}

	idx := indexByteFrom(buf, '/', 1)
	if idx < 0 {
		return 0
	}

	return idx
}

// indexByteFrom returns the index of the first occurrence of c in s at or
// after from, or -1.
func indexByteFrom(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}

	return -1
}
