// Command bricdb is the BRIC debugger driver: it loads an assembled program
// or a prior debugging session, then runs the REPL described in spec §4.7
// against stdin/stdout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/bric-vm/bric/internal/asm"
	"github.com/bric-vm/bric/internal/cpu"
	"github.com/bric-vm/bric/internal/debugger"
	"github.com/bric-vm/bric/internal/log"
	"github.com/bric-vm/bric/internal/snapshot"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bricdb", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		path       = fs.String("p", "", "path to a .basm or .bexe program (required)")
		debugState = fs.String("c", "", "path to a .bdb debugger session to resume")
		uart       = fs.Bool("u", false, "enable interactive UART mode")
		maxIter    = fs.Int("m", debugger.DefaultMaxIter, "iteration cap for the \"c\" command")
		showVer    = fs.Bool("V", false, "print version and exit")
		logLevel   = fs.String("loglevel", "warn", "minimum log level: debug, info, warn, or error")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: bricdb -p PATH [-c PATH] [-u] [-m N] [-loglevel LEVEL]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	if *showVer {
		fmt.Fprintf(stdout, "bricdb %s\n", version)
		return 0
	}

	if *path == "" {
		fmt.Fprintln(stderr, "bricdb: -p PATH is required")
		fs.Usage()

		return 2
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "bricdb: %s\n", err)
		return 2
	}

	log.LogLevel.Set(level)

	logger := log.DefaultLogger()
	vm := cpu.New(logger)

	if err := loadProgram(vm, *path); err != nil {
		fmt.Fprintf(stderr, "bricdb: %s\n", err)
		return 1
	}

	d := debugger.New(vm, logger)
	d.MaxIter = *maxIter

	if *debugState != "" {
		if err := loadDebugState(d, *debugState); err != nil {
			fmt.Fprintf(stderr, "bricdb: %s\n", err)
			return 1
		}
	}

	if *uart && term.IsTerminal(int(stdin.Fd())) {
		d.Raw = stdin
	}

	if err := d.Run(stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "bricdb: %s\n", err)
		return 1
	}

	return 0
}

func loadProgram(vm *cpu.CPU, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var (
		rom      []cpu.Word
		mappings []cpu.Mapping
	)

	if strings.HasSuffix(path, ".bexe") {
		exe, err := snapshot.LoadExe(f)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		rom, mappings = exe.ROM, exe.Mappings
	} else {
		obj, err := asm.Assemble(f)
		if err != nil {
			return fmt.Errorf("assemble %s: %w", path, err)
		}

		rom, mappings = obj.ROM, obj.Mappings
	}

	return vm.Reset(rom, mappings)
}

func loadDebugState(d *debugger.Debugger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	state, err := snapshot.LoadDebug(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	snapshot.Restore(d.VM, state.VM)

	for _, bp := range state.Breakpoints {
		d.AddBreakpoint(bp)
	}

	return nil
}
