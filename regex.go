// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"fmt"
	"runtime"

	"github.com/dlclark/regexp2"
	"github.com/fxamacker/cbor/v2"
)

// matchKind is the result of one regex match attempt, corresponding to
// the collaborator contract "regex_match(handle, text, partial) ->
// {FULL, PARTIAL, NONE, ERROR}" in spec.md §6.2.
type matchKind int

const (
	matchNone matchKind = iota
	matchFull
	matchPartial
)

// engineVersion identifies the vendored regex engine release. Compiled
// rule files record this string (spec.md §6.1 reg_ver) and the loader
// rejects a file whose recorded version differs.
const engineVersion = "regexp2-1.11.0"

// engineArch identifies the host ABI a serialized compiled-regex blob was
// produced for. It combines the architecture with the engine version so a
// blob built on a different engine release is also treated as mismatched.
func engineArch() string {
	return runtime.GOARCH + "/" + engineVersion
}

// regexBlob is the CBOR envelope for a "serialized compiled regex",
// consumed by loadRegexFromBlob the way regex_load_mmap deserializes a
// compiled handle directly when the arch string matches (spec.md §4.1).
type regexBlob struct {
	Pattern string             `cbor:"pattern"`
	Options regexp2.RegexOptions `cbor:"options"`
}

// marshalRegexBlob encodes a regex blob using CBOR's Core Deterministic
// encoding, so two processes compiling the same pattern produce
// byte-identical blobs.
func marshalRegexBlob(pattern string, opts regexp2.RegexOptions) ([]byte, error) {
	encOptions := cbor.CoreDetEncOptions()
	encMode, err := encOptions.EncMode()
	if err != nil {
		return nil, fmt.Errorf("build cbor encoder: %w", err)
	}

	return encMode.Marshal(regexBlob{Pattern: pattern, Options: opts})
}

// unmarshalRegexBlob decodes a regex blob previously produced by
// marshalRegexBlob.
func unmarshalRegexBlob(data []byte) (regexBlob, error) {
	var blob regexBlob
	if err := cbor.Unmarshal(data, &blob); err != nil {
		return regexBlob{}, fmt.Errorf("decode regex blob: %w", err)
	}

	return blob, nil
}

// compiledRegex wraps the regexp2 form built from one pattern, fully
// anchored at both ends.
type compiledRegex struct {
	source string
	full   *regexp2.Regexp
}

// compileRegexSource compiles one file_contexts pattern.
func compileRegexSource(pattern string) (*compiledRegex, error) {
	full, err := regexp2.Compile("^(?:"+pattern+")$", regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %q: %v", ErrInvalidPattern, pattern, err)
	}

	return &compiledRegex{source: pattern, full: full}, nil
}

// partialProbes are representative continuations tried by match's partial
// branch: short strings from the separator and character classes
// file_contexts patterns commonly require right after a truncated path.
var partialProbes = []string{"a", "0", "/", "/a", "/0", ".", "-", "_"}

// loadRegexFromBlob rebuilds a compiledRegex from a decoded blob.
func loadRegexFromBlob(blob regexBlob) (*compiledRegex, error) {
	return compileRegexSource(blob.Pattern)
}

// match runs one match attempt against text, implementing the
// regex_match contract. When partial is requested and the full form does
// not match, match tries a small set of representative continuations
// (partialProbes): if appending any of them to text would make the full
// anchored pattern match, text is treated as a viable, not-yet-complete
// prefix. This approximates PCRE2's PCRE2_PARTIAL_HARD semantics, which
// regexp2 has no primitive for: a true partial matcher reports "not
// enough input yet" directly from its internal state, where this can only
// probe specific completions and may miss continuations outside the
// probe set.
func (c *compiledRegex) match(text string, partial bool) (matchKind, error) {
	full, err := c.full.MatchString(text)
	if err != nil {
		return matchNone, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if full {
		return matchFull, nil
	}

	if !partial {
		return matchNone, nil
	}

	for _, probe := range partialProbes {
		ok, err := c.full.MatchString(text + probe)
		if err != nil {
			return matchNone, fmt.Errorf("%w: %v", ErrInternal, err)
		}

		if ok {
			return matchPartial, nil
		}
	}

	return matchNone, nil
}

// isRegexMeta reports whether b is a regex metacharacter in the ERE/PCRE
// subset file_contexts patterns use.
func isRegexMeta(b byte) bool {
	switch b {
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '|', '^', '$', '\\':
		return true
	default:
		return false
	}
}

// hasRegexMetaChars reports whether pattern contains any regex
// metacharacter. A pattern without metachars is "exact" (spec.md §3).
func hasRegexMetaChars(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if isRegexMeta(pattern[i]) {
			return true
		}
	}

	return false
}

// literalPrefixLen returns the length of pattern's fixed literal prefix:
// the run of bytes before the first metacharacter. Used by best-match
// ranking (spec.md §4.6).
func literalPrefixLen(pattern string) uint32 {
	for i := 0; i < len(pattern); i++ {
		if isRegexMeta(pattern[i]) {
			return uint32(i)
		}
	}

	return uint32(len(pattern))
}

// compareEqual reports whether two compiled regexes are structurally
// equal for the comparator (spec.md §4.7): since regexp2 exposes no
// byte-level bytecode comparison, source equality is the faithful
// available substitute, matching upstream's own fallback to regex_str
// comparison when compiled forms aren't both present.
func compareEqual(a, b *compiledRegex) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.source == b.source
}
