// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
)

// substitutions is a loaded path-prefix substitution overlay, the
// selabel_subs_init collaborator (spec.md §6.2): entries map an old path
// prefix to a new one, applied to lookup keys before stem/spec matching.
// Longer prefixes are tried first so the most specific rule wins.
type substitutions struct {
	entries []subEntry
}

type subEntry struct {
	from string
	to   string
}

// loadSubstitutions reads a substitution file: one "<old> <new>" pair per
// line, blank lines and "#"-prefixed lines ignored. A missing file returns
// the os.Open error unchanged; the caller treats it as "no overlay"
// (spec.md §4.4) by checking os.IsNotExist on the returned error.
func loadSubstitutions(path string) (*substitutions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	subs := &substitutions{}
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: %w: expected \"<old> <new>\", got %q", path, lineno, ErrFormat, line)
		}

		subs.entries = append(subs.entries, subEntry{from: fields[0], to: fields[1]})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	sort.SliceStable(subs.entries, func(i, j int) bool {
		return len(subs.entries[i].from) > len(subs.entries[j].from)
	})

	return subs, nil
}

// apply rewrites key by the longest matching prefix entry, or returns key
// unchanged if no entry's prefix matches.
func (s *substitutions) apply(key string) string {
	if s == nil {
		return key
	}

	for _, e := range s.entries {
		if key == e.from {
			return e.to
		}

		if strings.HasPrefix(key, e.from+"/") {
			return e.to + key[len(e.from):]
		}
	}

	return key
}

// merge appends other's entries, preserving this overlay's precedence for
// ties (distribution overlays load before local overlays, so local wins
// on exact duplicate prefixes by being tried first after the merge —
// mirrors rec->subs taking precedence over rec->dist_subs upstream).
func (s *substitutions) merge(other *substitutions) *substitutions {
	if s == nil {
		return other
	}

	if other == nil {
		return s
	}

	merged := &substitutions{entries: append(append([]subEntry(nil), s.entries...), other.entries...)}
	sort.SliceStable(merged.entries, func(i, j int) bool {
		return len(merged.entries[i].from) > len(merged.entries[j].from)
	})

	return merged
}
