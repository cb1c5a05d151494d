package cpu

// disasm.go renders a decoded instruction back into BRIC assembly syntax,
// used by the debugger's "dis" and "i ci" commands (spec §4.7) so both
// share one formatter instead of duplicating it.

import "fmt"

// Disassemble renders instr as a line of BRIC assembly source.
func Disassemble(instr Instr) string {
	if instr.CI {
		return fmt.Sprintf("A = %d", instr.Imm)
	}

	calc := disassembleCalc(instr)

	line := calc
	if instr.Target != RegNone {
		line = fmt.Sprintf("%s = %s", instr.Target, calc)
	}

	if instr.Jump != JumpNone {
		line = fmt.Sprintf("%s ; %s", line, jumpKeyword(instr.Jump))
	}

	return line
}

// disassembleCalc inverts the assembler's (op, sw, zx) -> operand mapping
// (see internal/asm's calc-to-flags table, which this mirrors exactly).
func disassembleCalc(instr Instr) string {
	if instr.Op.Unary() {
		return fmt.Sprintf("%s, %s", instr.Op, instr.Source)
	}

	var op1, op2 string

	switch {
	case instr.ZX:
		op1, op2 = "0", instr.Source.String()
	case instr.SW:
		op1, op2 = instr.Source.String(), "A"
	default:
		op1, op2 = "A", instr.Source.String()
	}

	return fmt.Sprintf("%s, %s, %s", instr.Op, op1, op2)
}

func jumpKeyword(j Jump) string {
	switch j {
	case JumpLT:
		return "JLT"
	case JumpEQ:
		return "JEQ"
	case JumpGT:
		return "JGT"
	case JumpLT | JumpEQ:
		return "JLE"
	case JumpLT | JumpGT:
		// JGE and JNE both assemble to this mask (spec's jump table gives
		// them the same bits); JNE is the canonical rendering.
		return "JNE"
	case JumpAll:
		return "JMP"
	default:
		return j.String()
	}
}
