// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import "strings"

// collapseSlashes collapses every run of consecutive '/' in key to a
// single '/', the full extent of canonicalization spec.md step 1
// performs: the input is not otherwise modified (no cleaning of "." or
// "..", no trimming).
func collapseSlashes(key string) string {
	if !strings.Contains(key, "//") {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))

	prevSlash := false
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '/' {
			if prevSlash {
				continue
			}

			prevSlash = true
		} else {
			prevSlash = false
		}

		b.WriteByte(c)
	}

	return b.String()
}
