// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// linedesk-trace inspects intake traces recorded by linedesk --trace.
//
//	linedesk-trace dump FILE     print each record in CBOR diagnostic notation
//	linedesk-trace replay FILE   apply the trace to a fresh engine and print its state
//
// Files ending in .zst or .lz4 are decompressed transparently.
// Replay drives the same engine the console uses, with sinks that log
// what the console would have rendered and alerted. It never restores
// a console: traces are for reproducing behavior, not persistence.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/linedesk/linedesk/engine/trace"
	"github.com/linedesk/linedesk/lib/config"
	"github.com/linedesk/linedesk/lib/logging"
	"github.com/linedesk/linedesk/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var logLevel string

	flagSet := pflag.NewFlagSet("linedesk-trace", pflag.ContinueOnError)
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level for replay sink output (debug shows every render)")
	flagSet.BoolP("help", "h", false, "show help")

	if len(args) > 0 && args[0] == "--version" {
		version.Fprint(stdout, "linedesk-trace")
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	level, err := config.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := logging.NewCommandLogger(level)

	positional := flagSet.Args()
	if len(positional) != 2 {
		printHelp(flagSet)
		return fmt.Errorf("expected a command and a trace file")
	}
	command, path := positional[0], positional[1]
	if command != "dump" && command != "replay" {
		return fmt.Errorf("unknown command %q (want dump or replay)", command)
	}

	file, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch command {
	case "dump":
		data, err := io.ReadAll(file)
		if err != nil {
			// A crash mid-write truncates the stream; dump what survived.
			logger.Warn("trace ended early", "error", err)
		}
		return dump(data, stdout)
	default:
		return replay(file, stdout, logger)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `linedesk-trace: inspect linedesk intake traces.

Usage:
  linedesk-trace dump FILE
  linedesk-trace replay [--log-level LEVEL] FILE

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
