// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

package fcontext

import (
	"fmt"
	"log/slog"
	"os"
)

// Handle is a loaded, immutable rule set ready for lookup. Safe for
// concurrent use by multiple goroutines: the only mutation after Init
// returns is per-spec match counters and one-time lazy regex compilation,
// both designed for concurrent readers (spec.md §5).
type Handle struct {
	stems  *stemTable
	store  *specStore
	pool   *mmapPool
	subs   *substitutions
	digest *digest
	logger *slog.Logger

	closed bool
}

// Init loads a handle from opts, implementing spec.md §4.4's sequence:
// resolve paths, load substitution overlays, load each specfile (falling
// back newest-then-oldest per candidate), optionally load homedir/local
// overlays, fold every specfile into the content digest, validate for
// duplicates if requested, then sort specs for lookup.
func Init(opts Options) (*Handle, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	env := opts.Environment
	if env.DefaultSpecfilePath == "" {
		env.applyDefaults()
	}

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{env.DefaultSpecfilePath}
	}

	h := &Handle{
		stems:  &stemTable{},
		store:  &specStore{},
		pool:   &mmapPool{},
		digest: newDigest(),
		logger: logger,
	}

	explicitPaths := len(opts.Paths) > 0

	for i, p := range paths {
		groupOpts := opts
		if i > 0 {
			// The .homedirs/.local overlays apply to the first path only.
			groupOpts.BaseOnly = true
		}

		if err := h.loadSpecfileGroup(p, groupOpts, env, explicitPaths); err != nil {
			_ = h.pool.close()
			return nil, err
		}
	}

	if opts.Validating {
		if err := h.nodupsSpecs(validatorOrDefault(opts.Validator)); err != nil {
			_ = h.pool.close()
			return nil, err
		}
	}

	sortSpecs(h.store)

	return h, nil
}

// loadSpecfileGroup loads one primary specfile (with its distribution and
// local substitution overlays, and its .homedirs/.local companions unless
// BaseOnly is set) per spec.md §4.4 step 2. When explicitPaths is true
// (Options.Paths was non-empty), the substitution overlays are resolved
// as "<path>.subs_dist" and "<path>.subs" rather than the Environment's
// process-wide defaults.
func (h *Handle) loadSpecfileGroup(path string, opts Options, env Environment, explicitPaths bool) error {
	distPath, localPath := env.SubsDistPath, env.SubsPath
	if explicitPaths {
		distPath = path + ".subs_dist"
		localPath = path + ".subs"
	}

	dist, err := loadSubstitutions(distPath)
	if err != nil && !isNotExist(err) {
		return err
	}

	local, err := loadSubstitutions(localPath)
	if err != nil && !isNotExist(err) {
		return err
	}

	h.subs = local.merge(dist).merge(h.subs)

	if err := processFile(path, "", h.store, h.stems, h.pool, h.digest, opts.Subset); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	if opts.BaseOnly {
		return nil
	}

	for _, suffix := range []string{"homedirs", "local"} {
		if err := processFile(path, suffix, h.store, h.stems, h.pool, h.digest, opts.Subset); err != nil {
			if isNotExist(err) {
				continue
			}

			return fmt.Errorf("load %s.%s: %w", path, suffix, err)
		}
	}

	return nil
}

// nodupsSpecs scans the loaded store for two specs sharing an identical
// pattern and compatible (equal or unset) mode, implementing
// nodups_specs (spec.md §4.4): a duplicate with the same context is
// logged as a warning; a duplicate with a different context aborts load
// with ErrDuplicateSpec. Every non-"<<none>>" raw context is also run
// through validator.
func (h *Handle) nodupsSpecs(validator Validator) error {
	seen := make(map[string][]*spec)

	for _, sp := range h.store.specs {
		if sp.label.Raw != noneContext {
			if err := validator.Validate(sp.label.Raw); err != nil {
				return fmt.Errorf("%w: %v", ErrValidate, err)
			}
		}

		key := string(h.stems.at(sp.stemID)) + "\x00" + string(sp.regexStr.bytes())
		for _, prev := range seen[key] {
			if prev.mode != 0 && sp.mode != 0 && prev.mode != sp.mode {
				continue
			}

			if prev.label.Raw == sp.label.Raw {
				h.logger.Warn("fcontext: duplicate specification",
					"pattern", string(sp.regexStr.bytes()),
					"context", sp.label.Raw,
				)
				continue
			}

			return fmt.Errorf("%w: pattern %q: %q vs %q", ErrDuplicateSpec,
				sp.regexStr.bytes(), prev.label.Raw, sp.label.Raw)
		}

		seen[key] = append(seen[key], sp)
	}

	return nil
}

// Close releases every mapped region held by the handle. Idempotent.
func (h *Handle) Close() error {
	if h == nil || h.closed {
		return nil
	}

	h.closed = true
	// Drop every spec and stem before unmapping, so no borrowed bytes
	// outlive their region; a closed handle finds nothing.
	h.store = &specStore{}
	h.stems = &stemTable{}
	return h.pool.close()
}

// Digest returns the content hash accumulated over every specfile this
// handle loaded.
func (h *Handle) Digest() string {
	if h == nil {
		return ""
	}

	return h.digest.generate()
}

// Stats logs a warning for, and returns, every spec that has recorded zero
// matches since load, the selabel_stats collaborator (spec.md §6.2),
// useful for finding dead rules in a policy.
func (h *Handle) Stats() []UnusedSpec {
	if h == nil {
		return nil
	}

	logger := h.logger
	if logger == nil {
		logger = slog.Default()
	}

	var out []UnusedSpec
	for _, sp := range h.store.specs {
		if sp.matches.Load() != 0 {
			continue
		}

		logger.Warn("fcontext: no matches for specification",
			"pattern", string(sp.regexStr.bytes()),
			"type", sp.typeStr,
			"context", sp.label.Raw,
		)

		out = append(out, UnusedSpec{
			RegexStr:   string(sp.regexStr.bytes()),
			TypeStr:    sp.typeStr,
			ContextRaw: sp.label.Raw,
		})
	}

	return out
}

// isNotExist reports whether err means "file does not exist", the
// condition spec.md treats as "overlay absent, not an error".
func isNotExist(err error) bool {
	return err != nil && os.IsNotExist(err)
}
