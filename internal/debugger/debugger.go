package debugger

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bric-vm/bric/internal/cpu"
	"github.com/bric-vm/bric/internal/log"
)

// DefaultMaxIter is the default iteration cap for the "c" command (spec §5).
const DefaultMaxIter = 65535

// Debugger drives a cpu.CPU: stepping, continuing, breakpoints, and
// inspection, per spec §4.7.
type Debugger struct {
	VM          *cpu.CPU
	Breakpoints breakpointSet
	MaxIter     int

	// Raw, if set, names a real terminal file descriptor the "u" command
	// should put into raw byte-at-a-time mode; nil selects the line-buffered
	// fallback used by tests and non-interactive input.
	Raw *os.File

	steps int // total steps executed across the debugger's lifetime

	log *log.Logger
}

// New creates a debugger over vm with an empty breakpoint set and the
// default iteration cap.
func New(vm *cpu.CPU, logger *log.Logger) *Debugger {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Debugger{
		VM:          vm,
		Breakpoints: newBreakpointSet(),
		MaxIter:     DefaultMaxIter,
		log:         logger,
	}
}

// AddBreakpoint adds addr to the breakpoint set.
func (d *Debugger) AddBreakpoint(addr cpu.Word) {
	d.Breakpoints.add(addr)
}

// RemoveBreakpoint removes addr from the breakpoint set, if present.
func (d *Debugger) RemoveBreakpoint(addr cpu.Word) {
	d.Breakpoints.remove(addr)
}

// Step executes a single instruction.
func (d *Debugger) Step() error {
	if err := d.VM.Step(); err != nil {
		return err
	}

	d.steps++

	return nil
}

// Continue runs up to d.MaxIter steps, per spec §4.7/§5. The breakpoint
// check happens before fetch, and only once at least one step has elapsed
// during this call -- a breakpoint at the VM's current PC when Continue is
// entered must not stop it immediately, or "c" could never make progress
// from a breakpoint it just stopped at.
func (d *Debugger) Continue() (StopReason, error) {
	for i := 0; i < d.MaxIter; i++ {
		if i > 0 && d.Breakpoints.has(cpu.Word(d.VM.PC)) {
			return StopBreakpoint, nil
		}

		if d.VM.Halted() {
			return StopHalted, nil
		}

		if err := d.Step(); err != nil {
			if errors.Is(err, cpu.ErrHalted) {
				return StopHalted, nil
			}

			return StopUnknown, err
		}
	}

	return StopIterationCap, nil
}

// Disassemble renders the whole ROM as text, one instruction per line.
func (d *Debugger) Disassemble() (string, error) {
	var b strings.Builder

	for addr := 0; addr < d.VM.Mem.RomLen(); addr++ {
		word, err := d.VM.Mem.ReadROM(cpu.Word(addr))
		if err != nil {
			return "", err
		}

		instr, err := cpu.Decode(word)
		if err != nil {
			fmt.Fprintf(&b, "%04x: <%s>\n", addr, err)
			continue
		}

		fmt.Fprintf(&b, "%04x: %s\n", addr, cpu.Disassemble(instr))
	}

	return b.String(), nil
}

// InspectRegister returns the named register's value: A, D, E, F, G, H, or
// *A (read indirectly through the current A).
func (d *Debugger) InspectRegister(name string) (cpu.Word, error) {
	name = strings.ToUpper(name)

	if name == "*A" {
		return d.VM.Mem.MMIORead(d.VM.REG.Get(cpu.RegA)), nil
	}

	reg, ok := regByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}

	return d.VM.REG.Get(reg), nil
}

func regByName(name string) (cpu.RegID, bool) {
	switch name {
	case "A":
		return cpu.RegA, true
	case "D":
		return cpu.RegD, true
	case "E":
		return cpu.RegE, true
	case "F":
		return cpu.RegF, true
	case "G":
		return cpu.RegG, true
	case "H":
		return cpu.RegH, true
	default:
		return cpu.RegNone, false
	}
}

// InspectMemory dumps RAM[base, base+length).
func (d *Debugger) InspectMemory(base, length cpu.Word) []cpu.Word {
	out := make([]cpu.Word, length)
	for i := cpu.Word(0); i < length; i++ {
		out[i] = d.VM.Mem.ReadRAM(base + i)
	}

	return out
}

// InspectROM dumps ROM[base, base+length), bounds-checked.
func (d *Debugger) InspectROM(base, length cpu.Word) ([]cpu.Word, error) {
	out := make([]cpu.Word, 0, length)

	for i := cpu.Word(0); i < length; i++ {
		w, err := d.VM.Mem.ReadROM(base + i)
		if err != nil {
			return nil, err
		}

		out = append(out, w)
	}

	return out, nil
}

// InspectCurrentInstruction disassembles the instruction at PC.
func (d *Debugger) InspectCurrentInstruction() (string, error) {
	if d.VM.Halted() {
		return "", fmt.Errorf("debugger: %w: halted", ErrBadCommand)
	}

	word, err := d.VM.Mem.ReadROM(cpu.Word(d.VM.PC))
	if err != nil {
		return "", err
	}

	instr, err := cpu.Decode(word)
	if err != nil {
		return "", err
	}

	return cpu.Disassemble(instr), nil
}
