// SPDX-License-Identifier: MIT
// Copyright (c) 2026 lehmancurtis147
// Source: github.com/lehmancurtis147/external-selinux

// Command fcontextutil loads a file-context rule set and exposes its
// lookup, comparison, and diagnostic operations from the shell.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/lehmancurtis147/external-selinux"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "lookup":
		err = runLookup(args)
	case "compile":
		err = runCompile(args)
	case "compare":
		err = runCompare(args)
	case "dump":
		err = runDump(args)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "fcontextutil:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fcontextutil <lookup|compile|compare|dump> [flags]")
}

func runLookup(args []string) error {
	fs := pflag.NewFlagSet("lookup", pflag.ExitOnError)
	specfile := fs.StringP("specfile", "f", "", "specfile path (default: environment default)")
	modeFlag := fs.StringP("type", "t", "", "file type flag, e.g. -d, -l, --")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("lookup: missing path argument")
	}

	opts := fcontext.Options{Logger: slog.Default()}
	if *specfile != "" {
		opts.Paths = []string{*specfile}
	}

	h, err := fcontext.Init(opts)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	var mode fcontext.FileMode
	if *modeFlag != "" {
		m, ok := modeFromFlag(*modeFlag)
		if !ok {
			return fmt.Errorf("lookup: unknown type flag %q", *modeFlag)
		}
		mode = m
	}

	label, err := h.Lookup(fs.Arg(0), mode)
	if err != nil {
		return err
	}

	fmt.Println(label.Raw)
	return nil
}

func runCompile(args []string) error {
	fs := pflag.NewFlagSet("compile", pflag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("compile: missing text specfile argument")
	}

	h, err := fcontext.Init(fcontext.Options{Paths: []string{fs.Arg(0)}, BaseOnly: true})
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	blob, err := fcontext.EncodeBinaryFile(h)
	if err != nil {
		return err
	}

	if fs.NArg() >= 2 {
		return os.WriteFile(fs.Arg(1), blob, 0o644)
	}

	_, err = os.Stdout.Write(blob)
	return err
}

func runCompare(args []string) error {
	fs := pflag.NewFlagSet("compare", pflag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return fmt.Errorf("compare: need two specfile paths")
	}

	h1, err := fcontext.Init(fcontext.Options{Paths: []string{fs.Arg(0)}})
	if err != nil {
		return err
	}
	defer func() { _ = h1.Close() }()

	h2, err := fcontext.Init(fcontext.Options{Paths: []string{fs.Arg(1)}})
	if err != nil {
		return err
	}
	defer func() { _ = h2.Close() }()

	result, mismatches, err := fcontext.CompareDetail(h1, h2)
	if err != nil {
		return err
	}

	fmt.Println(result)
	for _, m := range mismatches {
		fmt.Println(" ", m)
	}

	return nil
}

func runDump(args []string) error {
	fs := pflag.NewFlagSet("dump", pflag.ExitOnError)
	unusedOnly := fs.Bool("unused", false, "list specs with zero recorded matches instead of printing the digest")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("dump: missing specfile argument")
	}

	h, err := fcontext.Init(fcontext.Options{Paths: []string{fs.Arg(0)}})
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	if *unusedOnly {
		for _, u := range h.Stats() {
			fmt.Printf("%s\t%s\n", u.RegexStr, u.ContextRaw)
		}
		return nil
	}

	fmt.Println("digest:", h.Digest())
	return nil
}

func modeFromFlag(flag string) (fcontext.FileMode, bool) {
	m, ok := fcontext.TypeFlagMode(flag)
	return m, ok
}
