// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"bytes"
	"fmt"
	"os"
)

// maxSpecfilePathLen mirrors the platform PATH_MAX bound named by
// ErrNameTooLong (spec.md §7).
const maxSpecfilePathLen = 4096

// specfileCandidate is one {path, mtime} entry considered by
// openFile, mirroring the original's "struct file_details".
type specfileCandidate struct {
	path  string
	mtime int64
}

// openFile picks among {path.suffix, path.suffix.bin} the candidate with
// the latest mtime, ties favoring later entries in the candidate list
// (spec.md §4.3): "on timestamp tie, later entries in the candidate list
// win (so .bin beats plain)". When oldest is true, the selection is
// inverted to favor the earliest candidate, used by the fallback pass in
// processFile.
func openFile(path string, suffix string, oldest bool) (string, error) {
	base := path
	if suffix != "" {
		base = path + "." + suffix
	}

	if len(base)+len(".bin") > maxSpecfilePathLen {
		return "", ErrNameTooLong
	}

	candidates := []string{base, base + ".bin"}

	var found []specfileCandidate
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return "", fmt.Errorf("%w: stat %s: %v", ErrIO, c, err)
		}

		found = append(found, specfileCandidate{path: c, mtime: info.ModTime().UnixNano()})
	}

	if len(found) == 0 {
		return "", os.ErrNotExist
	}

	best := found[0]
	for _, c := range found[1:] {
		newer := c.mtime >= best.mtime
		if oldest {
			newer = !newer
		}

		if newer {
			best = c
		}
	}

	return best.path, nil
}

// isBinarySpecfile peeks the first 4 bytes of path to classify it as
// binary vs textual (spec.md §4.3).
func isBinarySpecfile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	var head [4]byte
	n, err := f.Read(head[:])
	if err != nil && n == 0 {
		return false, nil
	}

	if n < 4 {
		return false, nil
	}

	return bytes.Equal(head[:], magicBytes()), nil
}

// magicBytes returns compiledFcontextMagic in little-endian byte order.
func magicBytes() []byte {
	magic := compiledFcontextMagic
	return []byte{
		byte(magic),
		byte(magic >> 8),
		byte(magic >> 16),
		byte(magic >> 24),
	}
}

// processFile loads one specfile, trying the newest {path, path.bin}
// candidate first and falling back to the oldest on failure, per
// spec.md §4.3's two-pass policy. Both passes failing is fatal. A failed
// pass rolls back whatever it appended to store, stems, and pool, so a
// partial newest-candidate parse never leaves duplicate specs behind for
// the oldest-candidate retry.
func processFile(path string, suffix string, store *specStore, stems *stemTable, pool *mmapPool, d *digest, prefix string) error {
	var lastErr error

	for pass := 0; pass < 2; pass++ {
		oldest := pass > 0
		found, err := openFile(path, suffix, oldest)
		if err != nil {
			lastErr = err
			if pass == 0 {
				continue
			}

			break
		}

		specMark, stemMark, regionMark := store.len(), len(stems.stems), len(pool.regions)

		if err := loadOneSpecfile(found, store, stems, pool, prefix); err != nil {
			lastErr = err
			rollbackLoad(store, stems, pool, specMark, stemMark, regionMark)
			continue
		}

		if d != nil {
			if err := d.addSpecfilePath(found); err != nil {
				lastErr = err
				rollbackLoad(store, stems, pool, specMark, stemMark, regionMark)
				continue
			}
		}

		return nil
	}

	return lastErr
}

// rollbackLoad discards every spec, stem, and mapped region appended since
// the given marks.
func rollbackLoad(store *specStore, stems *stemTable, pool *mmapPool, specMark, stemMark, regionMark int) {
	store.specs = store.specs[:specMark]
	stems.stems = stems.stems[:stemMark]
	_ = pool.truncate(regionMark)
}

// loadOneSpecfile loads exactly one on-disk specfile, dispatching on its
// binary/text classification.
func loadOneSpecfile(path string, store *specStore, stems *stemTable, pool *mmapPool, prefix string) error {
	binaryForm, err := isBinarySpecfile(path)
	if err != nil {
		return err
	}

	if binaryForm {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}

		region, err := pool.mapFile(f, info.Size())
		if err != nil {
			return err
		}

		return loadBinaryFile(region, store, stems)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() { _ = f.Close() }()

	return loadTextFile(store, stems, path, prefix, f)
}
