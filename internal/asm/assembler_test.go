package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/bric-vm/bric/internal/cpu"
)

func assemble(tt *testing.T, src string) *Object {
	tt.Helper()

	obj, err := Assemble(strings.NewReader(src))
	if err != nil {
		tt.Fatalf("assemble: %s", err)
	}

	return obj
}

// TestImmediateAndAdd is scenario 1 from §8: "A = 5 / D = add, A, D".
func TestImmediateAndAdd(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[text]
A = 5
D = add, A, D
`)

	want := []cpu.Word{
		cpu.Encode(cpu.Instr{CI: true, Imm: 5}),
		cpu.Encode(cpu.Instr{Source: cpu.RegD, Op: cpu.OpAdd, Target: cpu.RegD}),
	}

	if len(obj.ROM) != len(want) {
		tt.Fatalf("rom length: want %d, got %d", len(want), len(obj.ROM))
	}

	for i := range want {
		if obj.ROM[i] != want[i] {
			tt.Errorf("rom[%d]: want %04x, got %04x", i, uint16(want[i]), uint16(obj.ROM[i]))
		}
	}
}

// TestIndirectStoreAssembly is scenario 2: "*A = inc, A", whose unary operand
// A becomes the source register.
func TestIndirectStoreAssembly(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[text]
*A = inc, A
`)

	want := cpu.Encode(cpu.Instr{Source: cpu.RegA, Op: cpu.OpInc, Target: cpu.RegIndA})
	if obj.ROM[0] != want {
		tt.Errorf("want %04x, got %04x", uint16(want), uint16(obj.ROM[0]))
	}
}

// TestSwappedOperandSetsSW verifies the "CALC a, R, A" ordering sets sw, per
// §4.5's calc->flags mapping.
func TestSwappedOperandSetsSW(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[text]
E = sub, D, A
`)

	instr, err := cpu.Decode(obj.ROM[0])
	if err != nil {
		tt.Fatalf("decode: %s", err)
	}

	if !instr.SW {
		tt.Errorf("want sw set, got %+v", instr)
	}

	if instr.Source != cpu.RegD {
		tt.Errorf("want source D, got %s", instr.Source)
	}
}

// TestZeroOperandSetsZX verifies "CALC 0, R" sets zx.
func TestZeroOperandSetsZX(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[text]
F = or, 0, G
`)

	instr, err := cpu.Decode(obj.ROM[0])
	if err != nil {
		tt.Fatalf("decode: %s", err)
	}

	if !instr.ZX {
		tt.Errorf("want zx set, got %+v", instr)
	}
}

// TestLabelAndJump exercises forward label references used both as an
// immediate load target and as a jump condition.
func TestLabelAndJump(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[text]
A = loop
label loop:
D = sub, A, D ; JEQ
`)

	if len(obj.ROM) != 2 {
		tt.Fatalf("want 2 words, got %d", len(obj.ROM))
	}

	loadLoop, err := cpu.Decode(obj.ROM[0])
	if err != nil {
		tt.Fatalf("decode: %s", err)
	}

	if !loadLoop.CI || loadLoop.Imm != 1 {
		tt.Errorf("want immediate load of 1 (loop's address), got %+v", loadLoop)
	}
}

// TestConstsMapping is scenario 5: a [consts ADDR] block with a labeled word
// produces a mapping that places the literal at ADDR on reset.
func TestConstsMapping(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[text]
A = 0

[consts 0x4000]
label X:
M = 0xBEEF
`)

	if len(obj.Mappings) != 1 {
		tt.Fatalf("want 1 mapping, got %d", len(obj.Mappings))
	}

	m := obj.Mappings[0]
	if m.RamAddr != 0x4000 || m.Length != 1 {
		tt.Errorf("want mapping to 0x4000 length 1, got %s", m)
	}

	if obj.ROM[m.RomAddr] != 0xBEEF {
		tt.Errorf("want consts word 0xBEEF, got %04x", uint16(obj.ROM[m.RomAddr]))
	}
}

func TestDefineSubstitution(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[macros]
define UART_BASE 0x6000

[text]
A = UART_BASE
`)

	instr, err := cpu.Decode(obj.ROM[0])
	if err != nil {
		tt.Fatalf("decode: %s", err)
	}

	if instr.Imm != 0x6000 {
		tt.Errorf("want 0x6000, got %04x", uint16(instr.Imm))
	}
}

func TestMacroExpansion(tt *testing.T) {
	tt.Parallel()

	obj := assemble(tt, `
[macros]
begin bump (reg)
reg = inc, reg
end

[text]
bump(D)
`)

	want := cpu.Encode(cpu.Instr{Source: cpu.RegD, Op: cpu.OpInc, Target: cpu.RegD})
	if obj.ROM[0] != want {
		tt.Errorf("want %04x, got %04x", uint16(want), uint16(obj.ROM[0]))
	}
}

func TestImmediateTooLargeError(tt *testing.T) {
	tt.Parallel()

	_, err := Assemble(strings.NewReader(`
[text]
A = 0x8000
`))
	if !errors.Is(err, ErrImmediateTooLarge) {
		tt.Errorf("want ErrImmediateTooLarge, got %v", err)
	}
}

func TestUndefinedLabelError(tt *testing.T) {
	tt.Parallel()

	_, err := Assemble(strings.NewReader(`
[text]
A = nowhere
`))
	if !errors.Is(err, ErrUndefinedLabel) {
		tt.Errorf("want ErrUndefinedLabel, got %v", err)
	}
}

func TestDuplicateLabelError(tt *testing.T) {
	tt.Parallel()

	_, err := Assemble(strings.NewReader(`
[text]
label again:
A = 1
label again:
A = 2
`))
	if !errors.Is(err, ErrDuplicateLabel) {
		tt.Errorf("want ErrDuplicateLabel, got %v", err)
	}
}

func TestMissingTextSectionError(tt *testing.T) {
	tt.Parallel()

	_, err := Assemble(strings.NewReader(`
[consts 0x4000]
M = 1
`))
	if !errors.Is(err, ErrMissingText) {
		tt.Errorf("want ErrMissingText, got %v", err)
	}
}

func TestMacroRecursionError(tt *testing.T) {
	tt.Parallel()

	_, err := Assemble(strings.NewReader(`
[macros]
begin outer (reg)
inner(reg)
end

begin inner (reg)
reg = inc, reg
end

[text]
outer(D)
`))
	if !errors.Is(err, ErrMacroRecursion) {
		tt.Errorf("want ErrMacroRecursion, got %v", err)
	}
}

func TestNameConflictError(tt *testing.T) {
	tt.Parallel()

	_, err := Assemble(strings.NewReader(`
[macros]
define A 1

[text]
D = inc, D
`))
	if !errors.Is(err, ErrNameConflict) {
		tt.Errorf("want ErrNameConflict, got %v", err)
	}
}
