// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSubstitutions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file_contexts.subs")
	content := "# comment\n\n/opt/app /srv/app\n/opt /usr/local\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	subs, err := loadSubstitutions(path)
	if err != nil {
		t.Fatalf("loadSubstitutions: %v", err)
	}

	if len(subs.entries) != 2 {
		t.Fatalf("len(entries)=%d, want 2", len(subs.entries))
	}

	// Longer prefix sorted first so the more specific rule wins.
	if subs.entries[0].from != "/opt/app" {
		t.Fatalf("entries[0].from=%q, want /opt/app", subs.entries[0].from)
	}
}

func TestLoadSubstitutionsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadSubstitutions(filepath.Join(t.TempDir(), "missing"))
	if !os.IsNotExist(err) {
		t.Fatalf("loadSubstitutions missing file: err=%v, want os.IsNotExist", err)
	}
}

func TestSubstitutionsApply(t *testing.T) {
	t.Parallel()

	subs := &substitutions{entries: []subEntry{
		{from: "/opt/app", to: "/srv/app"},
		{from: "/opt", to: "/usr/local"},
	}}

	cases := []struct {
		in, want string
	}{
		{"/opt/app/bin/run", "/srv/app/bin/run"},
		{"/opt/app", "/srv/app"},
		{"/opt/other", "/usr/local/other"},
		{"/etc/passwd", "/etc/passwd"},
	}

	for _, c := range cases {
		if got := subs.apply(c.in); got != c.want {
			t.Fatalf("apply(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestSubstitutionsMergeNilSafe(t *testing.T) {
	t.Parallel()

	var nilSubs *substitutions

	if got := nilSubs.merge(nil); got != nil {
		t.Fatalf("nil.merge(nil)=%v, want nil", got)
	}

	other := &substitutions{entries: []subEntry{{from: "/a", to: "/b"}}}
	if got := nilSubs.merge(other); got != other {
		t.Fatalf("nil.merge(other) did not return other")
	}

	if got := other.merge(nil); got != other {
		t.Fatalf("other.merge(nil) did not return other")
	}
}
