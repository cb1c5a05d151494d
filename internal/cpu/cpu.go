package cpu

// cpu.go assembles the VM core from the smaller parts: the register file,
// the program counter, memory, and the UART device (spec §4.3, C5).

import (
	"fmt"

	"github.com/bric-vm/bric/internal/log"
)

// ProgramCounter is a 16-bit address into ROM. It is its own type, rather
// than a bare Word, so PC-specific formatting doesn't leak into general
// register code.
type ProgramCounter Word

func (p ProgramCounter) String() string {
	return Word(p).String()
}

// CPU is the BRIC virtual machine: registers, program counter, memory and
// the UART device wired together.
type CPU struct {
	PC   ProgramCounter
	REG  RegisterFile
	Mem  *Memory
	UART *UART

	log *log.Logger
}

// New creates a virtual machine with its UART mapped into MMIO. The machine
// is not runnable until Reset installs a ROM image.
func New(logger *log.Logger) *CPU {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	vm := &CPU{
		Mem:  NewMemory(logger),
		UART: NewUART(logger),
		log:  logger,
	}

	vm.Mem.RegisterMMIO(UARTBase, RegCtl, vm.UART)

	return vm
}

// Reset zeroes the register file and program counter, then installs rom and
// applies mappings via the memory subsystem.
func (c *CPU) Reset(rom []Word, mappings []Mapping) error {
	c.PC = 0
	c.REG = RegisterFile{}

	if err := c.Mem.Reset(rom, mappings); err != nil {
		return fmt.Errorf("cpu: reset: %w", err)
	}

	c.log.Debug("reset", "rom words", len(rom), "mappings", len(mappings))

	return nil
}

// Halted reports whether PC has reached the end of ROM, per spec's "PC ==
// rom_len is the sole halt sentinel" design note. There is no separate
// halted flag to keep the VM's serialized state minimal.
func (c *CPU) Halted() bool {
	return int(c.PC) >= c.Mem.RomLen()
}

func (c *CPU) String() string {
	return fmt.Sprintf("PC: %s REG: %s", c.PC, c.REG)
}
