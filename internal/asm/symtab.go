package asm

import (
	"fmt"

	"github.com/bric-vm/bric/internal/cpu"
)

// symbolTable resolves label names to addresses. Text-section labels
// resolve to a ROM address (used for control flow: load into A, then
// jump). Labels inside a [consts ADDR] block resolve to the RAM address the
// constant will occupy once the VM applies the block's ROM→RAM mapping at
// reset -- the only address meaningful to runtime code that wants to use the
// label as a data pointer, since ROM itself is not readable as data.
type symbolTable struct {
	addrs map[string]cpu.Word
}

func newSymbolTable() *symbolTable {
	return &symbolTable{addrs: map[string]cpu.Word{}}
}

func (t *symbolTable) define(name string, addr cpu.Word) error {
	if _, exists := t.addrs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, name)
	}

	t.addrs[name] = addr

	return nil
}

func (t *symbolTable) lookup(name string) (cpu.Word, error) {
	addr, ok := t.addrs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUndefinedLabel, name)
	}

	return addr, nil
}

func (t *symbolTable) resolve(o operand) (cpu.Word, error) {
	if !o.isLabel {
		return o.value, nil
	}

	return t.lookup(o.label)
}
