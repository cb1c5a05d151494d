package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bric-vm/bric/internal/cpu"
)

// regByName maps the assembler's register spellings to their cpu.RegID.
// The indirect pseudo-register is spelled "*A", matching the notation used
// throughout the instruction-set description.
var regByName = map[string]cpu.RegID{
	"A":  cpu.RegA,
	"*A": cpu.RegIndA,
	"D":  cpu.RegD,
	"E":  cpu.RegE,
	"F":  cpu.RegF,
	"G":  cpu.RegG,
	"H":  cpu.RegH,
}

// calcOps maps a CALC mnemonic to its cpu.Op.
var calcOps = map[string]cpu.Op{
	"and": cpu.OpAnd,
	"or":  cpu.OpOr,
	"xor": cpu.OpXor,
	"not": cpu.OpNot,
	"lsl": cpu.OpLsl,
	"lsr": cpu.OpLsr,
	"rol": cpu.OpRol,
	"ror": cpu.OpRor,
	"add": cpu.OpAdd,
	"sub": cpu.OpSub,
	"inc": cpu.OpInc,
	"dec": cpu.OpDec,
	"asr": cpu.OpAsr,
}

// jumpKeywords maps a jump mnemonic to its cpu.Jump mask. JGE and JNE are
// deliberately duplicate entries: per spec §4.5, "not less" and "not equal"
// coincide on the three-way sign result and both spellings must be accepted.
var jumpKeywords = map[string]cpu.Jump{
	"JLT": cpu.JumpLT,
	"JEQ": cpu.JumpEQ,
	"JGT": cpu.JumpGT,
	"JLE": cpu.JumpLT | cpu.JumpEQ,
	"JGE": cpu.JumpLT | cpu.JumpGT,
	"JNE": cpu.JumpLT | cpu.JumpGT,
	"JMP": cpu.JumpAll,
}

// reservedWords holds the section and statement keywords plus every register,
// calc and jump mnemonic. collectMacros rejects any of them as a define,
// macro or macro-parameter name with NameConflict; label names are not
// checked against this set.
var reservedWords = buildReservedWords()

func buildReservedWords() map[string]bool {
	r := map[string]bool{
		"macros": true, "text": true, "consts": true,
		"label": true, "define": true, "begin": true, "end": true,
	}

	for name := range regByName {
		r[strings.ToUpper(name)] = true
	}

	for name := range calcOps {
		r[name] = true
	}

	for name := range jumpKeywords {
		r[name] = true
	}

	return r
}

// parseNumber accepts 0x.., 0b.. and decimal literals, per spec §4.5's
// lexical rules.
func parseNumber(tok string) (uint32, error) {
	tok = strings.TrimSpace(tok)

	var (
		n   uint64
		err error
	)

	switch {
	case strings.HasPrefix(tok, "0x"), strings.HasPrefix(tok, "0X"):
		n, err = strconv.ParseUint(tok[2:], 16, 32)
	case strings.HasPrefix(tok, "0b"), strings.HasPrefix(tok, "0B"):
		n, err = strconv.ParseUint(tok[2:], 2, 32)
	default:
		n, err = strconv.ParseUint(tok, 10, 32)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadOperand, tok)
	}

	return uint32(n), nil
}

var identRe = identRegexp()

func isIdentifier(tok string) bool {
	return identRe.MatchString(tok)
}
