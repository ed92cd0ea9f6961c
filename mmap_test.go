// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMmapPoolMapFileAndClose(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "region")
	if err := os.WriteFile(path, []byte("hello world"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	var pool mmapPool
	region, err := pool.mapFile(f, info.Size())
	if err != nil {
		t.Fatalf("mapFile: %v", err)
	}

	if string(region.data) != "hello world" {
		t.Fatalf("region.data=%q, want %q", region.data, "hello world")
	}

	if err := pool.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := pool.close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestMmapRegionNextEntry(t *testing.T) {
	t.Parallel()

	region := &mmapRegion{data: []byte("abcdefgh")}

	got, err := region.nextEntry(3)
	if err != nil {
		t.Fatalf("nextEntry: %v", err)
	}

	if string(got) != "abc" {
		t.Fatalf("nextEntry=%q, want abc", got)
	}

	if region.remaining() != 5 {
		t.Fatalf("remaining=%d, want 5", region.remaining())
	}

	if _, err := region.nextEntry(100); err == nil {
		t.Fatalf("expected overrun error, got nil")
	}
}
