package asm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bric-vm/bric/internal/cpu"
)

// operand is either a resolved literal or a forward label reference,
// resolved against the symbol table during emission (pass 5).
type operand struct {
	isLabel bool
	label   string
	value   cpu.Word
}

func parseOperandToken(tok string) (operand, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return operand{}, fmt.Errorf("%w: empty operand", ErrBadOperand)
	}

	if tok[0] >= '0' && tok[0] <= '9' {
		n, err := parseNumber(tok)
		if err != nil {
			return operand{}, err
		}

		return operand{value: cpu.Word(n)}, nil
	}

	if !isIdentifier(tok) {
		return operand{}, fmt.Errorf("%w: %q", ErrBadOperand, tok)
	}

	return operand{isLabel: true, label: tok}, nil
}

type opKind int

const (
	kindLabelOnly opKind = iota
	kindImmediate
	kindCalc
)

// operation is one parsed [text] statement, still carrying unresolved label
// operands; gen.go's emission pass turns it into a cpu.Instr.
type operation struct {
	line  int
	label string // "" if this line defines no label

	kind opKind

	imm operand // kindImmediate

	hasTarget bool
	target    cpu.RegID
	source    cpu.RegID
	op        cpu.Op
	sw, zx    bool
	jump      cpu.Jump
}

// constLine is one parsed [consts ADDR] statement.
type constLine struct {
	line  int
	label string
	value operand // set only when this line also has "M = ..."
	hasM  bool
}

var labelPrefixRe = regexp.MustCompile(`^label\s+([A-Za-z._]+)\s*:\s*(.*)$`)

// splitLabelPrefix peels an optional "label NAME:" prefix off a line,
// returning the label name (if any) and the remaining statement text.
func splitLabelPrefix(line string) (label, rest string) {
	if m := labelPrefixRe.FindStringSubmatch(line); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}

	return "", line
}

func parseTextLine(rl rawLine) (*operation, error) {
	label, rest := splitLabelPrefix(rl.text)

	op := &operation{line: rl.num, label: label}

	if rest == "" {
		op.kind = kindLabelOnly
		return op, nil
	}

	jumpTok, rest, hasJump := cutSuffix(rest, ";")

	targetTok, calcPart, hasTarget := cutPrefix(rest, "=")

	if hasTarget && strings.TrimSpace(targetTok) == "A" && !hasJump && !looksLikeCalc(calcPart) {
		v, err := parseOperandToken(strings.TrimSpace(calcPart))
		if err != nil {
			return nil, err
		}

		op.kind = kindImmediate
		op.imm = v

		return op, nil
	}

	op.kind = kindCalc

	if hasTarget {
		reg, ok := regByName[strings.TrimSpace(targetTok)]
		if !ok {
			return nil, fmt.Errorf("%w: target %q", ErrBadOperand, targetTok)
		}

		op.hasTarget = true
		op.target = reg
	}

	if err := parseCalc(calcPart, op); err != nil {
		return nil, err
	}

	if hasJump {
		mask, ok := jumpKeywords[strings.ToUpper(strings.TrimSpace(jumpTok))]
		if !ok {
			return nil, fmt.Errorf("%w: jump keyword %q", ErrBadOperand, jumpTok)
		}

		op.jump = mask
	}

	return op, nil
}

// looksLikeCalc reports whether a "TARGET = ..." right-hand side is a CALC
// expression (mnemonic first) rather than a bare literal/label, letting the
// parser disambiguate "A = 5" from "A = add, A, D".
func looksLikeCalc(rhs string) bool {
	toks := fields(rhs)
	if len(toks) == 0 {
		return false
	}

	first := strings.TrimSuffix(toks[0], ",")
	_, ok := calcOps[first]

	return ok
}

func parseCalc(text string, op *operation) error {
	text = strings.TrimSpace(text)

	toks := fields(text)
	if len(toks) == 0 {
		return fmt.Errorf("%w: empty calculation", ErrBadOperand)
	}

	mnemonic := strings.TrimSuffix(toks[0], ",")

	code, ok := calcOps[mnemonic]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, mnemonic)
	}

	op.op = code

	operandText := strings.TrimSpace(strings.TrimPrefix(text, toks[0]))
	operandText = strings.TrimPrefix(operandText, ",")

	var operands []string
	if strings.TrimSpace(operandText) != "" {
		operands = splitComma(operandText)
	}

	if code.Unary() {
		if len(operands) != 1 {
			return fmt.Errorf("%w: %s takes exactly one register", ErrBadOperand, mnemonic)
		}

		reg, ok := regByName[operands[0]]
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadOperand, operands[0])
		}

		// Direct encoding per §3's flag-normalization formula: X = source
		// register value when sw is clear, so a unary op's sole operand is
		// always the source register, with sw/zx left false regardless of
		// whether the operand happens to be A.
		op.source = reg

		return nil
	}

	if len(operands) != 2 {
		return fmt.Errorf("%w: %s takes exactly two operands", ErrBadOperand, mnemonic)
	}

	op1, op2 := operands[0], operands[1]

	switch {
	case op1 == "0":
		op.zx = true

		reg, ok := regByName[op2]
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadOperand, op2)
		}

		op.source = reg

	case op1 == "A":
		reg, ok := regByName[op2]
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadOperand, op2)
		}

		op.source = reg

	case op2 == "A":
		op.sw = true

		reg, ok := regByName[op1]
		if !ok {
			return fmt.Errorf("%w: %q", ErrBadOperand, op1)
		}

		op.source = reg

	default:
		return fmt.Errorf("%w: one operand of %s must be A or 0", ErrBadOperand, mnemonic)
	}

	return nil
}

func parseConstLine(rl rawLine) (*constLine, error) {
	label, rest := splitLabelPrefix(rl.text)

	cl := &constLine{line: rl.num, label: label}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return cl, nil
	}

	mTok, valueTok, ok := cutPrefix(rest, "=")
	if !ok || strings.TrimSpace(mTok) != "M" {
		return nil, fmt.Errorf("%w: expected \"M = NUMBER\", got %q", ErrBadOperand, rest)
	}

	v, err := parseOperandToken(strings.TrimSpace(valueTok))
	if err != nil {
		return nil, err
	}

	cl.hasM = true
	cl.value = v

	return cl, nil
}

// cutPrefix/cutSuffix mirror strings.Cut but anchor on the FIRST and LAST
// occurrence of sep, respectively -- the former for "TARGET = calc", where
// calc may itself legally contain further tokens, the latter for
// "calc ; JUMP" trailers.
func cutPrefix(s, sep string) (before, after string, found bool) {
	i := strings.Index(s, sep)
	if i < 0 {
		return s, s, false
	}

	return s[:i], s[i+len(sep):], true
}

func cutSuffix(s, sep string) (after, before string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return "", s, false
	}

	return strings.TrimSpace(s[i+len(sep):]), strings.TrimSpace(s[:i]), true
}
