// Package debugger implements the REPL loop described in spec §4.7: stepping
// and continuing the VM, disassembly, register/memory/ROM inspection,
// breakpoints, and a UART bridge for interactive programs.
package debugger

import "errors"

// Debugger error kinds, per spec §7.
var (
	ErrBadCommand      = errors.New("debugger: bad command")
	ErrUnknownRegister = errors.New("debugger: unknown register")
	ErrInvalidNumber   = errors.New("debugger: invalid number")
)

// StopReason explains why a Continue call returned.
type StopReason int

const (
	StopUnknown StopReason = iota
	StopHalted
	StopBreakpoint
	StopIterationCap
)

func (s StopReason) String() string {
	switch s {
	case StopHalted:
		return "halted"
	case StopBreakpoint:
		return "breakpoint"
	case StopIterationCap:
		return "iteration cap"
	default:
		return "unknown"
	}
}
