// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import "errors"

// Sentinel errors for fcontext operations. Wrap with fmt.Errorf("%w: ...")
// so callers can still errors.Is against these.
var (
	// ErrNotFound means no spec matched a lookup, or the matched spec's
	// context is the "<<none>>" sentinel. This is a normal outcome, not
	// a fault, and is never logged as an error.
	ErrNotFound = errors.New("fcontext: no matching specification")
	// ErrFormat indicates a malformed compiled (binary) rule file: bad
	// magic, unsupported version, missing NUL terminators, or a declared
	// byte count that would overrun the mapped region.
	ErrFormat = errors.New("fcontext: malformed compiled specfile")
	// ErrVersionMismatch indicates a compiled specfile was built against
	// a different regex engine version than the one linked into this
	// process. The file is rejected outright (not adopted, not skipped).
	ErrVersionMismatch = errors.New("fcontext: regex engine version mismatch")
	// ErrValidate indicates a context string failed syntactic validation
	// while the handle was constructed with validation enabled.
	ErrValidate = errors.New("fcontext: context failed validation")
	// ErrDuplicateSpec indicates two rules share an identical pattern and
	// compatible (equal or unset) modes, detected while validating.
	ErrDuplicateSpec = errors.New("fcontext: duplicate specification")
	// ErrIO wraps a stat/open/read/mmap failure encountered while loading
	// a specfile. The underlying error's text is part of the message; the
	// underlying error itself is not wrapped, so errors.As does not reach it.
	ErrIO = errors.New("fcontext: I/O error loading specfile")
	// ErrNameTooLong indicates a specfile path exceeded the platform
	// path length limit.
	ErrNameTooLong = errors.New("fcontext: specfile path too long")
	// ErrInternal indicates the regex engine returned an error the
	// lookup algorithm does not know how to recover from.
	ErrInternal = errors.New("fcontext: internal regex engine error")
	// ErrNilHandle indicates a method was called on a nil *Handle.
	ErrNilHandle = errors.New("fcontext: handle is nil")
	// ErrInvalidPattern indicates the regex engine could not compile a
	// pattern.
	ErrInvalidPattern = errors.New("fcontext: invalid pattern")
)
