package cpu

// exec.go implements the fetch-decode-execute cycle (spec §4.3):
//
//  1. halt check
//  2. fetch and decode
//  3. immediate load short-circuit
//  4. resolve the source operand (possibly through MMIO via *A)
//  5. apply zx/sw flag composition
//  6. compute the ALU result
//  7. write back to the target (possibly through MMIO via *A)
//  8. resolve the jump
//
// Ordering within a step is fixed: the ALU's read of the source operand
// precedes the compute, which precedes the target write, which precedes the
// PC update (spec §5). No step suspends partway, so Step is atomic with
// respect to any observer.

import (
	"errors"
	"fmt"
)

// ErrHalted is returned by Step when the machine has already halted, i.e.
// PC has reached the end of ROM.
var ErrHalted = errors.New("cpu: halted")

// Step executes a single instruction to completion.
func (c *CPU) Step() error {
	if c.Halted() {
		return ErrHalted
	}

	word, err := c.Mem.ReadROM(Word(c.PC))
	if err != nil {
		return fmt.Errorf("cpu: fetch: %w", err)
	}

	instr, err := Decode(word)
	if err != nil {
		return fmt.Errorf("cpu: decode: %w", err)
	}

	c.log.Debug("fetched", "pc", c.PC, "word", word, "instr", instr)

	if instr.CI {
		c.REG.set(RegA, instr.Imm)
		c.PC++

		return nil
	}

	aOrig := c.REG.get(RegA)

	x, err := c.resolveSource(instr.Source, aOrig)
	if err != nil {
		return fmt.Errorf("cpu: source: %w", err)
	}

	y := aOrig

	if instr.ZX {
		x = 0
	}

	if instr.SW {
		x, y = y, x
	}

	result, err := compute(instr.Op, x, y)
	if err != nil {
		return fmt.Errorf("cpu: compute: %w", err)
	}

	c.writeTarget(instr.Target, aOrig, result)

	if instr.Jump.Matches(result) {
		c.PC = ProgramCounter(c.REG.get(RegA))
	} else {
		c.PC++
	}

	c.log.Debug("executed", "instr", instr, "result", result, "pc", c.PC)

	return nil
}

// resolveSource reads the effective X operand before zx/sw composition: the
// named register's value, a memory read through *A (possibly MMIO), or 0 for
// RegNone.
func (c *CPU) resolveSource(src RegID, aOrig Word) (Word, error) {
	switch {
	case src == RegNone:
		return 0, nil
	case src == RegIndA:
		return c.Mem.MMIORead(aOrig), nil
	case src.GPR():
		return c.REG.get(src), nil
	default:
		return 0, fmt.Errorf("%w: source=%s", ErrInvalidEncoding, src)
	}
}

// writeTarget writes the ALU result to the target operand, if any. A *A
// target writes through the address held in A *before* this step's compute
// committed (aOrig); if A itself is also the target, the new value of A
// takes effect only after the memory write completes, per spec §4.3 step 7.
func (c *CPU) writeTarget(target RegID, aOrig Word, result Word) {
	switch {
	case target == RegNone:
		return
	case target == RegIndA:
		c.Mem.MMIOWrite(aOrig, result)
	case target.GPR():
		c.REG.set(target, result)
	}
}
