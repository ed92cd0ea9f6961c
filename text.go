// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// loadTextFile reads a line-oriented file_contexts-format file via
// processLine, appending each valid line to store. No regex compilation
// happens here; specs remain uncompiled until first lookup (spec.md §4.2).
func loadTextFile(store *specStore, stems *stemTable, path string, prefix string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		if err := processLine(store, stems, path, prefix, scanner.Text(), lineno); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrIO, err)
	}

	return nil
}

// processLine parses one file_contexts line and appends a spec to store
// on success. Implements the process_line collaborator (spec.md §6.2).
//
// Line grammar: "<pattern> [<type-flag>] <context>". Blank lines and
// lines beginning with "#" are ignored. When prefix is non-empty, lines
// whose pattern does not begin with prefix are skipped (the "Subset"
// option, spec.md §4.4 step 1).
func processLine(store *specStore, stems *stemTable, path string, prefix string, line string, lineno int) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 2 || len(fields) > 3 {
		return fmt.Errorf("%s:%d: %w: expected \"<pattern> [<type>] <context>\", got %q", path, lineno, ErrFormat, line)
	}

	pattern := fields[0]
	var typeStr string
	var mode FileMode
	var rawContext string

	if len(fields) == 3 {
		typeStr = fields[1]
		m, ok := typeFlags[typeStr]
		if !ok {
			return fmt.Errorf("%s:%d: %w: unknown type flag %q", path, lineno, ErrFormat, typeStr)
		}

		mode = m
		rawContext = fields[2]
	} else {
		rawContext = fields[1]
	}

	if prefix != "" && !strings.HasPrefix(pattern, prefix) {
		return nil
	}

	sp := &spec{
		stemID:       -1,
		mode:         mode,
		label:        Label{Raw: rawContext},
		typeStr:      typeStr,
		hasMetaChars: hasRegexMetaChars(pattern),
		prefixLen:    literalPrefixLen(pattern),
	}

	body := pattern
	if stemLen := stemLenFromFileName(pattern); stemLen > 0 {
		candidate := pattern[:stemLen]
		if !hasRegexMetaChars(candidate) {
			sp.stemID = stems.findOrStore([]byte(candidate))
			body = pattern[stemLen:]
		}
	}

	// regexStr holds the stem-stripped body, matching the binary loader
	// (binary.go's regexBytes): the comparator and the compiled-regex slot
	// both key on this form, so a text-loaded and binary-loaded handle for
	// the same rule set agree byte-for-byte.
	sp.regexStr = ownedBytes([]byte(body))
	pat := body
	sp.regex = newRegexSlot(func() (*compiledRegex, error) {
		return compileRegexSource(pat)
	})

	store.grow(sp)
	return nil
}
