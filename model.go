// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import "log/slog"

// Label is a security context produced by a successful lookup.
//
// Only Raw is ever populated by a loader; Translated exists so a future
// translating collaborator (selabel_translate in the original backend) has
// somewhere to write without changing this type's shape.
type Label struct {
	// Raw is the untranslated context string, e.g. "system_u:object_r:etc_t:s0".
	Raw string
	// Translated is the user-friendly translated context, when available.
	Translated string
}

// noneContext is the sentinel raw context meaning "no label assigned".
// A spec whose raw context equals this value degrades to ErrNotFound at
// the public API boundary and is never logged as an error.
const noneContext = "<<none>>"

// CompareResult is the outcome of structurally comparing two handles.
type CompareResult int

const (
	// CompareEqual means both handles have the same specs, irrespective of
	// load order.
	CompareEqual CompareResult = iota
	// CompareSubset means h1's specs are a strict subset of h2's.
	CompareSubset
	// CompareSuperset means h1's specs are a strict superset of h2's.
	CompareSuperset
	// CompareIncomparable means the handles disagree on some shared entry,
	// or each has an entry the other lacks.
	CompareIncomparable
)

// String implements fmt.Stringer for diagnostic output.
func (r CompareResult) String() string {
	switch r {
	case CompareEqual:
		return "equal"
	case CompareSubset:
		return "subset"
	case CompareSuperset:
		return "superset"
	case CompareIncomparable:
		return "incomparable"
	default:
		return "unknown"
	}
}

// UnusedSpec describes one spec that recorded zero matches since load,
// returned by (*Handle).Stats.
type UnusedSpec struct {
	// RegexStr is the spec's source pattern.
	RegexStr string
	// TypeStr is the spec's file-type label, if the loader recorded one.
	TypeStr string
	// ContextRaw is the spec's raw context.
	ContextRaw string
}

// FileMode is a file-type mask in S_IFMT terms (regular, directory,
// symlink, ...). Zero means "any type".
type FileMode uint32

// sIFMT is the POSIX file-type mask applied to a lookup's requested mode
// before it is compared with a spec's declared mode (spec.md step 3).
const sIFMT FileMode = 0o170000

// masked returns m restricted to the file-type bits.
func (m FileMode) masked() FileMode {
	return m & sIFMT
}

// File-type constants, in S_IFMT terms, usable both as a spec's declared
// mode filter and as the mode mask passed to Lookup/BestMatch.
const (
	ModeFIFO        FileMode = 0o010000
	ModeCharDevice  FileMode = 0o020000
	ModeDir         FileMode = 0o040000
	ModeBlockDevice FileMode = 0o060000
	ModeRegular     FileMode = 0o100000
	ModeSymlink     FileMode = 0o120000
	ModeSocket      FileMode = 0o140000
)

// typeFlags maps a file_contexts type-field token to its S_IFMT mode.
var typeFlags = map[string]FileMode{
	"-b": ModeBlockDevice,
	"-c": ModeCharDevice,
	"-d": ModeDir,
	"-p": ModeFIFO,
	"-l": ModeSymlink,
	"-s": ModeSocket,
	"-f": ModeRegular,
	"--": ModeRegular,
}

// TypeFlagMode looks up the S_IFMT mode for a file_contexts type-field
// token (e.g. "-d", "--"), for callers building Options outside this
// package.
func TypeFlagMode(flag string) (FileMode, bool) {
	m, ok := typeFlags[flag]
	return m, ok
}

// Options configures Init.
type Options struct {
	// Paths is zero or more explicit specfile paths. Empty means: use
	// Environment's default specfile path and load its distribution and
	// local substitution overlays.
	Paths []string
	// Subset restricts text-loader processing to lines whose pattern
	// begins with this prefix. Empty means no restriction.
	Subset string
	// BaseOnly skips the ".homedirs"/".local" overlays on the first path.
	BaseOnly bool
	// Validating runs context validation and duplicate-spec detection
	// while loading.
	Validating bool
	// Environment supplies default paths when Paths is empty. The zero
	// value resolves to DefaultEnvironment().
	Environment Environment
	// Validator is consulted for every non-"<<none>>" raw context loaded
	// when Validating is true. A nil Validator defaults to NoopValidator.
	Validator Validator
	// Logger receives structured diagnostics (duplicate-spec warnings,
	// compare mismatches, unused-rule warnings from Stats). A nil Logger
	// defaults to slog.Default().
	Logger *slog.Logger
}
