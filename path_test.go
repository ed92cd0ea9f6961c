// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import "testing"

func TestCollapseSlashes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"/usr/lib", "/usr/lib"},
		{"/usr//lib", "/usr/lib"},
		{"/usr///lib//bin", "/usr/lib/bin"},
		{"", ""},
		{"/", "/"},
		{"//", "/"},
	}

	for _, c := range cases {
		if got := collapseSlashes(c.in); got != c.want {
			t.Fatalf("collapseSlashes(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}
