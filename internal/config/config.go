// Package config holds the CLI's flag-parsed Options: a single-binary
// compiler CLI has no need for a config-file format, so plain stdlib
// flag parsing is enough.
package config

import (
	"flag"
	"fmt"
)

// Options is the CLI's build configuration.
type Options struct {
	Input      string // path to the input AST artifact
	Output     string // -o: output path for the emitted .ll file
	EmitLLVM   bool   // -emit-llvm: print IR to stdout instead of writing a file
	OptLevel   int    // -opt: optimization level (0-3); unused by codegen today, threaded through for future passes
	History    bool   // -history: print the accumulated diagnostics/telemetry history and exit
	ModuleName string // not set by Parse; left empty
	IsEntry    bool   // whether the module being built is a program entry point
}

// Parse parses CLI flags from args (os.Args[1:] style, already past
// the subcommand word) into an Options.
func Parse(args []string) (*Options, error) {
	fs := flag.NewFlagSet("pyaotc", flag.ContinueOnError)
	o := &Options{}
	fs.StringVar(&o.Output, "o", "", "output path for the emitted LLVM IR")
	fs.BoolVar(&o.EmitLLVM, "emit-llvm", false, "print LLVM IR to stdout instead of writing a file")
	fs.IntVar(&o.OptLevel, "opt", 0, "optimization level (0-3)")
	fs.BoolVar(&o.History, "history", false, "print accumulated build telemetry and exit")
	fs.BoolVar(&o.IsEntry, "entry", true, "treat the module as a program entry point")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		o.Input = fs.Arg(0)
	}
	if o.OptLevel < 0 || o.OptLevel > 3 {
		return nil, fmt.Errorf("invalid -opt level %d: must be 0-3", o.OptLevel)
	}
	return o, nil
}
