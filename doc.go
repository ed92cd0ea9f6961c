// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

/*
Package fcontext implements the file-context labeling backend used by a
mandatory-access-control policy to resolve a concrete filesystem path to a
security label. It loads a corpus of pathname-pattern-to-label rules from
text and compiled-binary specfiles, merges substitution overlays and
per-host extensions, and answers lookup queries with file_contexts
semantics: stem-narrowed reverse scan, exact-beats-regex precedence, and
longest-fixed-prefix best-match across a path and its aliases.

Basic flow:
  - build an Environment (or use DefaultEnvironment)
  - call Init with Options naming explicit specfile paths, or none to use
    the environment's default path
  - query the returned *Handle with Lookup, PartialMatch, or BestMatch
  - call Compare to structurally compare two loaded handles
  - call Close when the handle is no longer needed

The package is synchronous and single-threaded from the caller's
perspective: Init performs only blocking file I/O, and a *Handle is
immutable after Init returns except for per-spec match counters and
lazy regex compilation, both safe under concurrent readers.
*/
package fcontext
