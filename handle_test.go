// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestInitBaseOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n")
	writeFile(t, base+".homedirs", "/home(/.*)? system_u:object_r:home_t:s0\n")

	h, err := Init(Options{Paths: []string{base}, BaseOnly: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = h.Close() }()

	if h.store.len() != 1 {
		t.Fatalf("store.len()=%d, want 1 (homedirs overlay skipped)", h.store.len())
	}
}

func TestInitLoadsOverlays(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n")
	writeFile(t, base+".homedirs", "/home(/.*)? system_u:object_r:home_t:s0\n")
	writeFile(t, base+".local", "/local(/.*)? system_u:object_r:local_t:s0\n")

	h, err := Init(Options{Paths: []string{base}})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = h.Close() }()

	if h.store.len() != 3 {
		t.Fatalf("store.len()=%d, want 3", h.store.len())
	}

	label, err := h.Lookup("/home/alice", 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if label.Raw != "system_u:object_r:home_t:s0" {
		t.Fatalf("label.Raw=%q", label.Raw)
	}
}

func TestInitDuplicateSpecSameContextWarnsOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n/etc(/.*)? system_u:object_r:etc_t:s0\n")

	h, err := Init(Options{Paths: []string{base}, BaseOnly: true, Validating: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = h.Close() }()
}

func TestInitDuplicateSpecDifferentContextFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n/etc(/.*)? system_u:object_r:other_t:s0\n")

	_, err := Init(Options{Paths: []string{base}, BaseOnly: true, Validating: true})
	if !errors.Is(err, ErrDuplicateSpec) {
		t.Fatalf("err=%v, want ErrDuplicateSpec", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n")

	h, err := Init(Options{Paths: []string{base}, BaseOnly: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestStatsReportsUnusedSpecs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n/srv(/.*)? system_u:object_r:srv_t:s0\n")

	h, err := Init(Options{Paths: []string{base}, BaseOnly: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = h.Close() }()

	if _, err := h.Lookup("/etc/passwd", 0); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	unused := h.Stats()
	if len(unused) != 1 {
		t.Fatalf("len(unused)=%d, want 1", len(unused))
	}

	if unused[0].ContextRaw != "system_u:object_r:srv_t:s0" {
		t.Fatalf("unused[0].ContextRaw=%q", unused[0].ContextRaw)
	}
}

func TestDigestReflectsLoadedContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "file_contexts")
	writeFile(t, base, "/etc(/.*)? system_u:object_r:etc_t:s0\n")

	h, err := Init(Options{Paths: []string{base}, BaseOnly: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = h.Close() }()

	if h.Digest() == "" {
		t.Fatalf("Digest() returned empty string")
	}
}
