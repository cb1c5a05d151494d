// Package asm translates BRIC assembly source into a ROM image and a
// ROM→RAM mapping table, per §4.5 of the instruction set description: a
// multi-pass pipeline of section splitting, macro expansion, address
// assignment and code generation.
package asm

import (
	"errors"
	"io"

	"github.com/bric-vm/bric/internal/cpu"
)

// Object is the output of assembly: a ROM image ready for cpu.Memory.Reset,
// alongside the mapping table produced by any [consts ADDR] blocks.
type Object struct {
	ROM      []cpu.Word
	Mappings []cpu.Mapping
}

// Assemble reads BRIC assembly source and runs it through every pass
// described in §4.5. Within a pass, every error is collected and returned
// together via errors.Join, each wrapped in a *SyntaxError carrying its
// source line, rather than stopping at the first problem; a pass that
// reports any error ends assembly before the next pass runs.
func Assemble(r io.Reader) (*Object, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	sections, errs := splitSections(string(src))
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	defines, macros, merrs := collectMacros(sections.macroLines)
	if len(merrs) > 0 {
		return nil, errors.Join(merrs...)
	}

	textLines, terrs := expandMacros(sections.textLines, defines, macros)

	var allErrs []error
	allErrs = append(allErrs, terrs...)

	textOps := make([]*operation, 0, len(textLines))

	for _, rl := range textLines {
		op, err := parseTextLine(rl)
		if err != nil {
			allErrs = append(allErrs, annotate(rl, err))
			continue
		}

		textOps = append(textOps, op)
	}

	blocks := make([]constsGroup, 0, len(sections.constsBlocks))

	for _, cb := range sections.constsBlocks {
		expanded, cerrs := expandMacros(cb.lines, defines, macros)
		allErrs = append(allErrs, cerrs...)

		group := constsGroup{addr: cb.addr}

		for _, rl := range expanded {
			cl, err := parseConstLine(rl)
			if err != nil {
				allErrs = append(allErrs, annotate(rl, err))
				continue
			}

			group.lines = append(group.lines, cl)
		}

		blocks = append(blocks, group)
	}

	if len(allErrs) > 0 {
		return nil, errors.Join(allErrs...)
	}

	syms := newSymbolTable()

	if errs := assignAddresses(textOps, blocks, syms); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	rom, mappings, errs := emit(textOps, blocks, syms)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Object{ROM: rom, Mappings: mappings}, nil
}

func annotate(rl rawLine, err error) error {
	var se *SyntaxError
	if errors.As(err, &se) {
		if se.Line == 0 {
			se.Line = rl.num
		}

		if se.Text == "" {
			se.Text = rl.text
		}

		return se
	}

	return &SyntaxError{Line: rl.num, Text: rl.text, Err: err}
}
