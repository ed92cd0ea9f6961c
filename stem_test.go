// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import "testing"

func TestStemLenFromFileName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"/usr/lib", 4},
		{"/usr", 0},
		{"/", 0},
		{"", 0},
		{"/a/b/c", 2},
	}

	for _, c := range cases {
		if got := stemLenFromFileName(c.in); got != c.want {
			t.Fatalf("stemLenFromFileName(%q)=%d, want %d", c.in, got, c.want)
		}
	}
}

func TestStemTableFindOrStore(t *testing.T) {
	t.Parallel()

	var tbl stemTable

	id1 := tbl.findOrStore([]byte("/usr"))
	id2 := tbl.findOrStore([]byte("/var"))
	id3 := tbl.findOrStore([]byte("/usr"))

	if id1 != id3 {
		t.Fatalf("findOrStore did not dedup: id1=%d id3=%d", id1, id3)
	}

	if id1 == id2 {
		t.Fatalf("distinct stems got the same id %d", id1)
	}

	if string(tbl.at(id1)) != "/usr" {
		t.Fatalf("at(%d)=%q, want /usr", id1, tbl.at(id1))
	}
}

func TestStemTableFileStem(t *testing.T) {
	t.Parallel()

	var tbl stemTable
	tbl.findOrStore([]byte("/usr"))

	id, rest := tbl.fileStem("/usr/lib/foo")
	if id != 0 {
		t.Fatalf("fileStem id=%d, want 0", id)
	}

	if rest != "/lib/foo" {
		t.Fatalf("fileStem rest=%q, want /lib/foo", rest)
	}

	id, rest = tbl.fileStem("/etc/passwd")
	if id != -1 {
		t.Fatalf("fileStem id=%d, want -1 for unknown stem", id)
	}

	if rest != "/etc/passwd" {
		t.Fatalf("fileStem rest=%q, want unchanged key", rest)
	}
}
