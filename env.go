// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Environment supplies the process-wide defaults the original backend read
// from global configuration (the default specfile path, substitution-file
// paths). Init always takes an Environment explicitly instead of reading
// process globals, per the "global configuration paths" design note: the
// core stays free of ambient state.
type Environment struct {
	// DefaultSpecfilePath is used when Options.Paths is empty.
	DefaultSpecfilePath string `yaml:"default_specfile_path"`
	// SubsDistPath is the distribution substitution overlay loaded
	// alongside DefaultSpecfilePath when Options.Paths is empty.
	SubsDistPath string `yaml:"subs_dist_path"`
	// SubsPath is the local substitution overlay loaded alongside
	// DefaultSpecfilePath when Options.Paths is empty.
	SubsPath string `yaml:"subs_path"`
}

// DefaultEnvironment returns the conventional on-disk layout used by
// mandatory-access-control userspace tooling.
func DefaultEnvironment() Environment {
	return Environment{
		DefaultSpecfilePath: "/etc/selinux/contexts/files/file_contexts",
		SubsDistPath:        "/etc/selinux/contexts/files/file_contexts.subs_dist",
		SubsPath:            "/etc/selinux/contexts/files/file_contexts.subs",
	}
}

// applyDefaults fills any empty field from DefaultEnvironment.
func (e *Environment) applyDefaults() {
	def := DefaultEnvironment()
	if e.DefaultSpecfilePath == "" {
		e.DefaultSpecfilePath = def.DefaultSpecfilePath
	}
	if e.SubsDistPath == "" {
		e.SubsDistPath = def.SubsDistPath
	}
	if e.SubsPath == "" {
		e.SubsPath = def.SubsPath
	}
}

// LoadEnvironment reads an Environment from a YAML document, applying
// DefaultEnvironment to any field the document leaves empty.
func LoadEnvironment(r io.Reader) (Environment, error) {
	var env Environment
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&env); err != nil && err != io.EOF {
		return Environment{}, fmt.Errorf("decode environment: %w", err)
	}

	env.applyDefaults()
	return env, nil
}
