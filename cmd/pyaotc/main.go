// cmd/pyaotc/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"pyaotc/internal/astjson"
	"pyaotc/internal/codegen"
	"pyaotc/internal/config"
	"pyaotc/internal/diagnostics"
	"pyaotc/internal/object"
)

const VERSION = "0.1.0"

// commandAliases gives short letters to the commands used most often.
var commandAliases = map[string]string{
	"b": "build",
	"e": "emit-ir",
	"c": "check",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		showVersion()
	case "build":
		runBuild(args[1:], false)
	case "emit-ir":
		runBuild(args[1:], true)
	case "check":
		runCheck(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func runBuild(args []string, forceEmitLLVM bool) {
	opts, err := config.Parse(args)
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}
	if forceEmitLLVM {
		opts.EmitLLVM = true
	}
	if opts.History {
		showHistory()
		return
	}
	if opts.Input == "" {
		log.Fatal("pyaotc: no input file given")
	}

	start := time.Now()

	data, err := os.ReadFile(opts.Input)
	if err != nil {
		log.Fatalf("pyaotc: could not read %s: %v", opts.Input, err)
	}
	mod, err := astjson.DecodeModule(data)
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}
	if mod.Name == "" {
		mod.Name = filepath.Base(opts.Input)
	}
	if opts.IsEntry {
		mod.IsEntry = true
	}

	lowerer := codegen.NewLowerer(mod.Name)
	irMod, err := lowerer.LowerModule(mod)
	if err != nil {
		log.Fatalf("pyaotc: build failed: %v", err)
	}

	rendered := irMod.String()
	duration := time.Since(start)

	if opts.EmitLLVM {
		fmt.Print(rendered)
	} else {
		out := opts.Output
		if out == "" {
			out = trimExt(opts.Input) + ".ll"
		}
		if err := os.WriteFile(out, []byte(rendered), 0o644); err != nil {
			log.Fatalf("pyaotc: could not write %s: %v", out, err)
		}
		fmt.Printf("wrote %s (%s) in %s\n", out, humanize.Bytes(uint64(len(rendered))), duration.Round(time.Millisecond))
	}

	recordTelemetry(mod.Name, duration, 0)
}

func runCheck(args []string) {
	opts, err := config.Parse(args)
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}
	if opts.Input == "" {
		log.Fatal("pyaotc: no input file given")
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		log.Fatalf("pyaotc: could not read %s: %v", opts.Input, err)
	}
	mod, err := astjson.DecodeModule(data)
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}

	lowerer := codegen.NewLowerer(mod.Name)
	if _, err := lowerer.LowerModule(mod); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: OK\n", opts.Input)
}

func recordTelemetry(moduleName string, d time.Duration, errCount int) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	store, err := diagnostics.Open(filepath.Join(home, ".pyaotc_history.db"))
	if err != nil {
		return
	}
	defer store.Close()
	store.Record(diagnostics.Record{
		ModuleName:   moduleName,
		ErrorCount:   errCount,
		DurationMS:   d.Milliseconds(),
		BuildID:      object.BuildID,
	})
}

func showHistory() {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}
	store, err := diagnostics.Open(filepath.Join(home, ".pyaotc_history.db"))
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}
	defer store.Close()
	records, err := store.History(20)
	if err != nil {
		log.Fatalf("pyaotc: %v", err)
	}
	for _, r := range records {
		fmt.Printf("%s  %-20s  %d errors  %s\n", r.CreatedAt.Format(time.RFC3339), r.ModuleName, r.ErrorCount, humanize.Time(r.CreatedAt))
	}
}

func trimExt(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}

func showVersion() {
	fmt.Printf("pyaotc %s\n", VERSION)
	fmt.Println("AOT compiler for a statically-typeable Python subset")
	fmt.Println("Target: LLVM IR via github.com/llir/llvm")
}

func showUsage() {
	fmt.Println("pyaotc - AOT compiler for a statically-typeable Python subset")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pyaotc build <ast.json>      Compile an AST artifact to LLVM IR  (alias: b)")
	fmt.Println("  pyaotc emit-ir <ast.json>    Compile and print IR to stdout      (alias: e)")
	fmt.Println("  pyaotc check <ast.json>      Lower and verify without writing    (alias: c)")
	fmt.Println("  pyaotc version               Show version                       (alias: v)")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -o <path>       output path for the emitted LLVM IR")
	fmt.Println("  -emit-llvm      print LLVM IR to stdout instead of writing a file")
	fmt.Println("  -opt <0-3>      optimization level")
	fmt.Println("  -history        print accumulated build telemetry and exit")
	fmt.Println("  -entry          treat the module as a program entry point (default true)")
	fmt.Println()
	fmt.Println("Input is a JSON-encoded AST (see internal/astjson) — the bridge point")
	fmt.Println("where a lexer/parser front end for the source language would plug in.")
}
