// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// compiledFcontextMagic is the magic constant identifying a compiled
// rule file (spec.md §6.1).
const compiledFcontextMagic uint32 = 0xf97cff8f

// Version gates, matching the original backend's SELINUX_COMPILED_FCONTEXT_*
// constants.
const (
	versionPCRE      uint32 = 1 // reg_ver field present from here
	versionRegexArch uint32 = 2
	versionMode      uint32 = 3
	versionPrefixLen uint32 = 4
	maxKnownVersion  uint32 = versionPrefixLen
)

// loadBinaryFile parses a compiled rule file out of region into store and
// stems, per spec.md §6.1 and §4.1.
func loadBinaryFile(region *mmapRegion, store *specStore, stems *stemTable) error {
	magic, err := readU32(region)
	if err != nil {
		return err
	}

	if magic != compiledFcontextMagic {
		return fmt.Errorf("%w: bad magic %#x", ErrFormat, magic)
	}

	version, err := readU32(region)
	if err != nil {
		return err
	}

	if version > maxKnownVersion {
		return fmt.Errorf("%w: version %d exceeds maximum known version %d", ErrFormat, version, maxKnownVersion)
	}

	archMatches := false

	if version >= versionPCRE {
		hostVersion := engineVersion
		entryLen, err := readU32(region)
		if err != nil {
			return err
		}

		regVerBytes, err := region.nextEntry(int(entryLen))
		if err != nil {
			return err
		}

		if int(entryLen) != len(hostVersion) || string(regVerBytes) != hostVersion {
			return fmt.Errorf("%w: compiled against regex engine %q, host is %q", ErrVersionMismatch, regVerBytes, hostVersion)
		}

		if version >= versionRegexArch {
			hostArch := engineArch()
			archLen, err := readU32(region)
			if err != nil {
				return err
			}

			if int(archLen) != len(hostArch) {
				// Length mismatch is non-fatal: skip the recorded bytes
				// and continue with archMatches left false (spec.md §4.1).
				if _, err := region.nextEntry(int(archLen)); err != nil {
					return err
				}
			} else {
				archBytes, err := region.nextEntry(int(archLen))
				if err != nil {
					return err
				}

				archMatches = string(archBytes) == hostArch
			}
		}
	}

	stemCount, err := readU32(region)
	if err != nil {
		return err
	}

	if stemCount == 0 {
		return fmt.Errorf("%w: stem_count is zero", ErrFormat)
	}

	stemMap := make([]int, stemCount)
	for i := uint32(0); i < stemCount; i++ {
		stemLen, err := readU32(region)
		if err != nil {
			return err
		}

		if stemLen == 0 || stemLen == ^uint32(0) {
			return fmt.Errorf("%w: invalid stem length %d", ErrFormat, stemLen)
		}

		buf, err := region.nextEntry(int(stemLen) + 1)
		if err != nil {
			return err
		}

		if buf[stemLen] != 0 {
			return fmt.Errorf("%w: stem %d missing NUL terminator", ErrFormat, i)
		}

		stemMap[i] = stems.findOrStoreBorrowed(buf[:stemLen], region)
	}

	specCount, err := readU32(region)
	if err != nil {
		return err
	}

	if specCount == 0 {
		return fmt.Errorf("%w: spec_count is zero", ErrFormat)
	}

	for i := uint32(0); i < specCount; i++ {
		if err := loadBinarySpec(region, store, stems, stemMap, version, archMatches); err != nil {
			return fmt.Errorf("spec %d: %w", i, err)
		}
	}

	return nil
}

// loadBinarySpec parses one spec entry, per spec.md §6.1's per-spec record.
func loadBinarySpec(region *mmapRegion, store *specStore, stems *stemTable, stemMap []int, version uint32, archMatches bool) error {
	ctxLen, err := readU32(region)
	if err != nil {
		return err
	}

	if ctxLen == 0 {
		return fmt.Errorf("%w: zero-length context", ErrFormat)
	}

	ctxBytes, err := region.nextEntry(int(ctxLen))
	if err != nil {
		return err
	}

	if ctxBytes[ctxLen-1] != 0 {
		return fmt.Errorf("%w: context missing NUL terminator", ErrFormat)
	}

	// Context strings are copied: they may be rewritten by validation
	// (spec.md §4.1).
	rawContext := string(ctxBytes[:ctxLen-1])

	regexLen, err := readU32(region)
	if err != nil {
		return err
	}

	if regexLen == 0 {
		return fmt.Errorf("%w: zero-length regex", ErrFormat)
	}

	regexBytes, err := region.nextEntry(int(regexLen))
	if err != nil {
		return err
	}

	if regexBytes[regexLen-1] != 0 {
		return fmt.Errorf("%w: regex missing NUL terminator", ErrFormat)
	}

	// Regex source bytes are borrowed from the mapped region.
	regexStr := regexBytes[:regexLen-1]

	mode, err := readU32(region)
	if err != nil {
		return err
	}

	stemIDRaw, err := readI32(region)
	if err != nil {
		return err
	}

	stemID := -1
	if stemIDRaw >= 0 && int(stemIDRaw) < len(stemMap) {
		stemID = stemMap[stemIDRaw]
	}

	hasMeta, err := readU32(region)
	if err != nil {
		return err
	}

	var prefixLen uint32
	if version >= versionPrefixLen {
		prefixLen, err = readU32(region)
		if err != nil {
			return err
		}
	} else {
		// Pre-v4 files never recorded prefix_len, so it must be derived
		// from the pattern. The text loader derives it from the full
		// pattern including the stem (text.go), so reattach the stem
		// bytes here too; otherwise a stemmed entry's literal prefix is
		// undercounted relative to the same rule loaded from text.
		full := string(regexStr)
		if stemID >= 0 {
			full = string(stems.at(stemID)) + full
		}
		prefixLen = literalPrefixLen(full)
	}

	blobLen, err := readU32(region)
	if err != nil {
		return err
	}

	blobBytes, err := region.nextEntry(int(blobLen))
	if err != nil {
		return err
	}

	sp := &spec{
		regexStr:     borrowedBytes(regexStr, region),
		stemID:       stemID,
		mode:         FileMode(mode),
		label:        Label{Raw: rawContext},
		hasMetaChars: hasMeta != 0,
		prefixLen:    prefixLen,
	}

	if archMatches && blobLen > 0 {
		blob, err := unmarshalRegexBlob(blobBytes)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}

		compiled, err := loadRegexFromBlob(blob)
		if err != nil {
			return err
		}

		sp.regex = preset(compiled)
	} else {
		pattern := string(regexStr)
		sp.regex = newRegexSlot(func() (*compiledRegex, error) {
			return compileRegexSource(pattern)
		})
	}

	store.grow(sp)
	return nil
}

// readU32 reads one little-endian uint32 from region, advancing its cursor.
func readU32(region *mmapRegion) (uint32, error) {
	b, err := region.nextEntry(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// readI32 reads one little-endian int32 from region, advancing its cursor.
func readI32(region *mmapRegion) (int32, error) {
	v, err := readU32(region)
	if err != nil {
		return 0, err
	}

	return int32(v), nil
}

// EncodeBinaryFile serializes h's loaded rule set into the on-disk
// compiled rule-file container loadBinaryFile reads, implementing the
// write side of spec.md §6.1. The "compile" CLI subcommand uses this to
// turn a text-loaded handle into a ".bin" file that round-trips through
// loadBinaryFile byte-for-byte, including per-spec serialized regex blobs.
// loadBinaryFile rejects a zero stem_count or spec_count, so a handle with
// no stems or no specs encodes a file that does not load back.
func EncodeBinaryFile(h *Handle) ([]byte, error) {
	return encodeBinaryFile(h.store, h.stems)
}

func encodeBinaryFile(store *specStore, stems *stemTable) ([]byte, error) {
	var buf bytes.Buffer

	writeU32(&buf, compiledFcontextMagic)
	writeU32(&buf, maxKnownVersion)

	writeEntry(&buf, []byte(engineVersion))
	writeEntry(&buf, []byte(engineArch()))

	writeU32(&buf, uint32(len(stems.stems)))
	for i := range stems.stems {
		writeStemEntry(&buf, stems.stems[i].bytes())
	}

	writeU32(&buf, uint32(len(store.specs)))
	for _, sp := range store.specs {
		if err := encodeBinarySpecEntry(&buf, sp); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// encodeBinarySpecEntry writes one spec's §6.1 record, including a blob
// field produced by compiling and marshaling its pattern so the emitted
// file round-trips through the arch-matching fast path on the next load.
func encodeBinarySpecEntry(buf *bytes.Buffer, sp *spec) error {
	writeEntry(buf, append([]byte(sp.label.Raw), 0))
	pattern := sp.regexStr.bytes()
	writeEntry(buf, append(append([]byte{}, pattern...), 0))

	writeU32(buf, uint32(sp.mode))
	writeI32(buf, int32(sp.stemID))

	var hasMeta uint32
	if sp.hasMetaChars {
		hasMeta = 1
	}
	writeU32(buf, hasMeta)
	writeU32(buf, sp.prefixLen)

	blob, err := marshalRegexBlob(string(pattern), 0)
	if err != nil {
		return fmt.Errorf("encode spec %q: %w", pattern, err)
	}

	writeEntry(buf, blob)
	return nil
}

// writeU32 appends v as a little-endian uint32.
func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// writeI32 appends v as a little-endian int32.
func writeI32(buf *bytes.Buffer, v int32) {
	writeU32(buf, uint32(v))
}

// writeEntry appends b as a u32-length-prefixed byte run, the §6.1 framing
// used for the regex-engine version/arch strings and for context, regex,
// and blob fields (where the length prefix counts any NUL the caller
// already appended).
func writeEntry(buf *bytes.Buffer, b []byte) {
	writeU32(buf, uint32(len(b)))
	buf.Write(b)
}

// writeStemEntry appends one stem table entry: a u32 length that excludes
// the NUL terminator, followed by the stem bytes and the terminator
// itself, matching loadBinaryFile's "stemLen, then stemLen+1 bytes" framing.
func writeStemEntry(buf *bytes.Buffer, b []byte) {
	writeU32(buf, uint32(len(b)))
	buf.Write(b)
	buf.WriteByte(0)
}
