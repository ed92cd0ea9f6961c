// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapError is a typed mmap-pool error, carrying the failing operation
// alongside the underlying syscall error.
type mmapError struct {
	Op  string
	Err error
}

func (e *mmapError) Error() string {
	if e.Err != nil {
		return "mmap: " + e.Op + ": " + e.Err.Error()
	}

	return "mmap: " + e.Op
}

func (e *mmapError) Unwrap() error {
	return e.Err
}

// mmapRegion is one memory-mapped rule-file region plus a read cursor,
// corresponding to the original backend's "struct mmap_area": a region
// tracks how much of itself has been consumed by sequential next_entry
// reads during loading.
type mmapRegion struct {
	data   []byte // the full mapped region
	cursor int     // bytes consumed so far
}

// nextEntry advances the cursor by n bytes and returns that slice,
// mirroring next_entry(buf, mmap_area, len): a nil-destination call (n
// bytes, no copy needed by caller) still advances the cursor, used by the
// binary loader to skip a mismatched-arch regex blob without aborting.
func (r *mmapRegion) nextEntry(n int) ([]byte, error) {
	if n < 0 || r.cursor+n > len(r.data) {
		return nil, fmt.Errorf("%w: region overrun reading %d bytes at offset %d of %d", ErrFormat, n, r.cursor, len(r.data))
	}

	b := r.data[r.cursor : r.cursor+n]
	r.cursor += n
	return b, nil
}

// remaining returns the number of unconsumed bytes in the region.
func (r *mmapRegion) remaining() int {
	return len(r.data) - r.cursor
}

// mmapPool tracks every region mapped for one handle, so Close can unmap
// them all exactly once, strictly after every borrowed string has been
// dropped (spec.md §3 invariant 2 and §4.8).
type mmapPool struct {
	regions []*mmapRegion
}

// mapFile mmaps the file's full current contents read-only and tracks the
// new region in the pool. mapFile does not close f: the file descriptor is
// not needed after mmap returns, and the caller (loadOneSpecfile) closes it
// once the load finishes, so Init never holds file descriptors open past
// its own completion (spec.md §5).
func (p *mmapPool) mapFile(f *os.File, size int64) (*mmapRegion, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: empty specfile", ErrFormat)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, &mmapError{Op: "mmap", Err: err}
	}

	region := &mmapRegion{data: data}
	p.regions = append(p.regions, region)
	return region, nil
}

// truncate unmaps and discards every region at index n or beyond. Used to
// roll back a partially loaded specfile before processFile's retry pass,
// so a failed newest-candidate attempt never leaves its mapped region (or
// the stems/specs it was backing) behind for the oldest-candidate retry.
func (p *mmapPool) truncate(n int) error {
	var firstErr error
	for _, region := range p.regions[n:] {
		if region.data == nil {
			continue
		}

		if err := unix.Munmap(region.data); err != nil && firstErr == nil {
			firstErr = &mmapError{Op: "munmap", Err: err}
		}

		region.data = nil
	}

	p.regions = p.regions[:n]
	return firstErr
}

// close unmaps every region owned by the pool. Safe to call more than
// once; subsequent calls are no-ops.
func (p *mmapPool) close() error {
	var firstErr error
	for _, region := range p.regions {
		if region.data == nil {
			continue
		}

		if err := unix.Munmap(region.data); err != nil && firstErr == nil {
			firstErr = &mmapError{Op: "munmap", Err: err}
		}

		region.data = nil
	}

	p.regions = nil
	return firstErr
}
