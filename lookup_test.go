// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"strings"
	"testing"
)

// buildTestHandle loads content through the same text-loading path Init
// uses, then sorts it, producing a ready-to-query Handle without any
// file I/O.
func buildTestHandle(t *testing.T, content string) *Handle {
	t.Helper()

	store := &specStore{}
	stems := &stemTable{}

	if err := loadTextFile(store, stems, "test", "", strings.NewReader(content)); err != nil {
		t.Fatalf("loadTextFile: %v", err)
	}

	sortSpecs(store)

	return &Handle{stems: stems, store: store, pool: &mmapPool{}, digest: newDigest()}
}

func TestLookupExactBeatsRegex(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, strings.Join([]string{
		`/etc(/.*)? system_u:object_r:etc_t:s0`,
		`/etc/passwd system_u:object_r:passwd_file_t:s0`,
	}, "\n"))

	label, err := h.Lookup("/etc/passwd", 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if label.Raw != "system_u:object_r:passwd_file_t:s0" {
		t.Fatalf("label.Raw=%q, want the exact rule's context", label.Raw)
	}

	label, err = h.Lookup("/etc/hosts", 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if label.Raw != "system_u:object_r:etc_t:s0" {
		t.Fatalf("label.Raw=%q, want the regex rule's context", label.Raw)
	}
}

func TestLookupNoMatch(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, `/etc(/.*)? system_u:object_r:etc_t:s0`)

	_, err := h.Lookup("/var/log/messages", 0)
	if err != ErrNotFound {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestLookupNoneContextDegradesToNotFound(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, `/dev/null <<none>>`)

	_, err := h.Lookup("/dev/null", 0)
	if err != ErrNotFound {
		t.Fatalf("err=%v, want ErrNotFound for <<none>> context", err)
	}
}

func TestLookupModeFilter(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, strings.Join([]string{
		`/dev/foo -c system_u:object_r:device_t:s0`,
		`/dev/foo -d system_u:object_r:device_dir_t:s0`,
	}, "\n"))

	label, err := h.Lookup("/dev/foo", ModeCharDevice)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if label.Raw != "system_u:object_r:device_t:s0" {
		t.Fatalf("label.Raw=%q, want the char-device rule's context", label.Raw)
	}

	label, err = h.Lookup("/dev/foo", ModeDir)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if label.Raw != "system_u:object_r:device_dir_t:s0" {
		t.Fatalf("label.Raw=%q, want the dir rule's context", label.Raw)
	}
}

func TestLookupNilHandle(t *testing.T) {
	t.Parallel()

	var h *Handle
	if _, err := h.Lookup("/etc/passwd", 0); err != ErrNilHandle {
		t.Fatalf("err=%v, want ErrNilHandle", err)
	}

	if h.PartialMatch("/etc") {
		t.Fatalf("PartialMatch on nil handle returned true")
	}
}

func TestPartialMatch(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, `/usr/lib/[0-9]+ system_u:object_r:lib_t:s0`)

	if !h.PartialMatch("/usr/lib/") {
		t.Fatalf("PartialMatch(/usr/lib/)=false, want true")
	}

	if h.PartialMatch("/usr/lib/xyz") {
		t.Fatalf("PartialMatch(/usr/lib/xyz)=true, want false")
	}
}

func TestBestMatchExactWinsOverAlias(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, strings.Join([]string{
		`/srv/data(/.*)? system_u:object_r:data_t:s0`,
		`/srv/real system_u:object_r:real_t:s0`,
	}, "\n"))

	label, err := h.BestMatch("/srv/data/x", []string{"/srv/real"}, 0)
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}

	// The alias resolves to an exact spec, which outranks the key's
	// regex match regardless of probe order.
	if label.Raw != "system_u:object_r:real_t:s0" {
		t.Fatalf("label.Raw=%q, want the alias's exact context", label.Raw)
	}
}

func TestBestMatchPicksLongestPrefix(t *testing.T) {
	t.Parallel()

	h := buildTestHandle(t, strings.Join([]string{
		`/srv(/.*)? system_u:object_r:srv_t:s0`,
		`/srv/data(/.*)? system_u:object_r:data_t:s0`,
	}, "\n"))

	label, err := h.BestMatch("/srv/other", []string{"/srv/data/x"}, 0)
	if err != nil {
		t.Fatalf("BestMatch: %v", err)
	}

	if label.Raw != "system_u:object_r:data_t:s0" {
		t.Fatalf("label.Raw=%q, want the longer-prefix alias's context", label.Raw)
	}
}
