// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// digest accumulates a content hash over every specfile loaded into one
// handle, implementing the digest_add_specfile/digest_gen_hash contracts
// (spec.md §6.2). The original backend uses this to fingerprint a loaded
// policy for cache invalidation elsewhere in the labeling stack; here it
// is surfaced on Handle.Digest() for the same purpose.
type digest struct {
	h    *blake3.Hasher
	sum  string
	done bool
}

// newDigest starts a fresh accumulator.
func newDigest() *digest {
	return &digest{h: blake3.New()}
}

// addSpecfile folds one specfile's contents and path into the running
// hash. Mirrors digest_add_specfile(digest, fp, NULL, size, path).
func (d *digest) addSpecfile(path string, r io.Reader) error {
	if d == nil {
		return nil
	}

	if _, err := io.WriteString(d.h, path); err != nil {
		return fmt.Errorf("digest %s: %w", path, err)
	}

	if _, err := io.Copy(d.h, r); err != nil {
		return fmt.Errorf("digest %s: %w", path, err)
	}

	return nil
}

// addSpecfilePath opens path and folds its contents via addSpecfile.
func (d *digest) addSpecfilePath(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	return d.addSpecfile(path, f)
}

// generate finalizes the hash. Mirrors digest_gen_hash(digest); idempotent.
func (d *digest) generate() string {
	if d == nil {
		return ""
	}

	if !d.done {
		d.sum = hex.EncodeToString(d.h.Sum(nil))
		d.done = true
	}

	return d.sum
}
