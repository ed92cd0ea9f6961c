// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

// Validator checks the syntax of a raw security context string, the
// selabel_validate collaborator named in spec.md §6.2. The core treats
// context syntax as an external concern; callers supply a Validator that
// understands their policy's context grammar.
type Validator interface {
	// Validate returns a non-nil error if raw is not a well-formed
	// context string for this policy.
	Validate(raw string) error
}

// NoopValidator accepts every context unconditionally. It is the default
// when Options.Validator is nil, so Validating can be enabled purely for
// duplicate-spec detection without requiring a real context grammar.
type NoopValidator struct{}

// Validate always succeeds.
func (NoopValidator) Validate(string) error { return nil }

// validatorOrDefault returns v, or NoopValidator{} if v is nil.
func validatorOrDefault(v Validator) Validator {
	if v == nil {
		return NoopValidator{}
	}

	return v
}
