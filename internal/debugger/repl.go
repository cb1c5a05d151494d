package debugger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bric-vm/bric/internal/cpu"
)

// Run drives the REPL grammar of spec §4.7 against in/out until "q" or EOF.
func (d *Debugger) Run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		quit, err := d.Dispatch(line, scanner, out)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			continue
		}

		if quit {
			return nil
		}
	}

	return scanner.Err()
}

// Dispatch executes a single REPL command line. scanner is threaded through
// only for the "u" command, which reads further lines itself, off the same
// buffered source as the rest of the REPL.
func (d *Debugger) Dispatch(line string, scanner *bufio.Scanner, out io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "q":
		return true, nil

	case "c":
		reason, err := d.Continue()
		if err != nil {
			return false, err
		}

		fmt.Fprintf(out, "stopped: %s (pc=%s)\n", reason, d.VM.PC)

		return false, nil

	case "s":
		if err := d.Step(); err != nil {
			return false, err
		}

		fmt.Fprintf(out, "pc=%s\n", d.VM.PC)

		return false, nil

	case "dis":
		text, err := d.Disassemble()
		if err != nil {
			return false, err
		}

		fmt.Fprint(out, text)

		return false, nil

	case "i":
		return false, d.dispatchInspect(args, out)

	case "b":
		addr, err := parseAddr(args)
		if err != nil {
			return false, err
		}

		d.AddBreakpoint(addr)

		return false, nil

	case "rb":
		addr, err := parseAddr(args)
		if err != nil {
			return false, err
		}

		d.RemoveBreakpoint(addr)

		return false, nil

	case "u":
		return false, RunUARTMode(d, scanner, out)

	default:
		return false, fmt.Errorf("%w: %q", ErrBadCommand, cmd)
	}
}

func (d *Debugger) dispatchInspect(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: \"i\" needs a sub-command", ErrBadCommand)
	}

	switch args[0] {
	case "reg":
		if len(args) != 2 {
			return fmt.Errorf("%w: \"i reg\" takes one register", ErrBadCommand)
		}

		v, err := d.InspectRegister(args[1])
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "%s = %s\n", strings.ToUpper(args[1]), v)

		return nil

	case "mem":
		base, length, err := parseRange(args[1:])
		if err != nil {
			return err
		}

		words := d.InspectMemory(base, length)
		printWords(out, base, words)

		return nil

	case "rom":
		base, length, err := parseRange(args[1:])
		if err != nil {
			return err
		}

		words, err := d.InspectROM(base, length)
		if err != nil {
			return err
		}

		printWords(out, base, words)

		return nil

	case "ci":
		text, err := d.InspectCurrentInstruction()
		if err != nil {
			return err
		}

		fmt.Fprintln(out, text)

		return nil

	case "pc":
		fmt.Fprintln(out, d.VM.PC)

		return nil

	default:
		return fmt.Errorf("%w: \"i %s\"", ErrBadCommand, args[0])
	}
}

func printWords(out io.Writer, base cpu.Word, words []cpu.Word) {
	for i, w := range words {
		fmt.Fprintf(out, "%s: %s\n", base+cpu.Word(i), w)
	}
}

func parseAddr(args []string) (cpu.Word, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: expected one address", ErrBadCommand)
	}

	return parseNumber(args[0])
}

func parseRange(args []string) (base, length cpu.Word, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%w: expected base and length", ErrBadCommand)
	}

	base, err = parseNumber(args[0])
	if err != nil {
		return 0, 0, err
	}

	length, err = parseNumber(args[1])
	if err != nil {
		return 0, 0, err
	}

	return base, length, nil
}

func parseNumber(tok string) (cpu.Word, error) {
	var (
		n   uint64
		err error
	)

	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		n, err = strconv.ParseUint(tok[2:], 16, 16)
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "0B"):
		n, err = strconv.ParseUint(tok[2:], 2, 16)
	default:
		n, err = strconv.ParseUint(tok, 10, 16)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, tok)
	}

	return cpu.Word(n), nil
}
