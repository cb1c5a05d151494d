package asm

import (
	"fmt"

	"github.com/bric-vm/bric/internal/cpu"
)

// assignAddresses implements pass 4 of §4.5: number [text] instructions from
// ROM address 0, then lay out each [consts ADDR] block immediately after,
// binding every "label NAME:" to the address current in its section.
func assignAddresses(textOps []*operation, blocks []constsGroup, syms *symbolTable) []error {
	var errs []error

	addr := cpu.Word(0)

	for _, op := range textOps {
		if op.label != "" {
			if err := syms.define(op.label, addr); err != nil {
				errs = append(errs, &SyntaxError{Line: op.line, Text: op.label, Err: err})
			}
		}

		if op.kind != kindLabelOnly {
			addr++
		}
	}

	for bi := range blocks {
		b := &blocks[bi]
		b.romStart = addr

		local := cpu.Word(0)

		for _, cl := range b.lines {
			if cl.label != "" {
				if err := syms.define(cl.label, b.addr+local); err != nil {
					errs = append(errs, &SyntaxError{Line: cl.line, Text: cl.label, Err: err})
				}
			}

			if cl.hasM {
				local++
				addr++
			}
		}

		b.length = local
	}

	return errs
}

type constsGroup struct {
	addr     cpu.Word
	lines    []*constLine
	romStart cpu.Word
	length   cpu.Word
}

// emit implements pass 5 of §4.5: walk the already-addressed operations
// again, resolving every label operand against the now-complete symbol
// table, and produce ROM words plus the constants mapping table.
func emit(textOps []*operation, blocks []constsGroup, syms *symbolTable) ([]cpu.Word, []cpu.Mapping, []error) {
	var (
		rom  []cpu.Word
		errs []error
	)

	for _, op := range textOps {
		if op.kind == kindLabelOnly {
			continue
		}

		word, err := emitOperation(op, syms)
		if err != nil {
			errs = append(errs, annotate(rawLine{num: op.line}, err))
			continue
		}

		rom = append(rom, word)
	}

	var mappings []cpu.Mapping

	for _, b := range blocks {
		for _, cl := range b.lines {
			if !cl.hasM {
				continue
			}

			v, err := syms.resolve(cl.value)
			if err != nil {
				errs = append(errs, annotate(rawLine{num: cl.line}, err))
				continue
			}

			rom = append(rom, v)
		}

		if b.length > 0 {
			mappings = append(mappings, cpu.Mapping{RomAddr: b.romStart, Length: b.length, RamAddr: b.addr})
		}
	}

	return rom, mappings, errs
}

func emitOperation(op *operation, syms *symbolTable) (cpu.Word, error) {
	switch op.kind {
	case kindImmediate:
		v, err := syms.resolve(op.imm)
		if err != nil {
			return 0, err
		}

		if v > 0x7fff {
			return 0, fmt.Errorf("%w: %d", ErrImmediateTooLarge, v)
		}

		return cpu.Encode(cpu.Instr{CI: true, Imm: v}), nil

	case kindCalc:
		target := cpu.RegNone
		if op.hasTarget {
			target = op.target
		}

		instr := cpu.Instr{
			Source: op.source,
			Op:     op.op,
			SW:     op.sw,
			ZX:     op.zx,
			Target: target,
			Jump:   op.jump,
		}

		return cpu.Encode(instr), nil

	default:
		return 0, fmt.Errorf("%w: unresolved label-only line", ErrBadOperand)
	}
}
