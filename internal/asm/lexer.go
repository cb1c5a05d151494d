package asm

import (
	"regexp"
	"strings"

	"github.com/bric-vm/bric/internal/cpu"
)

func identRegexp() *regexp.Regexp {
	return regexp.MustCompile(`^[A-Za-z._]+$`)
}

var headerRe = regexp.MustCompile(`(?i)^\[\s*(macros|text|consts)(?:\s+(\S+))?\s*\]$`)

type rawLine struct {
	num  int
	text string
}

type constsBlock struct {
	addr  cpu.Word
	lines []rawLine
}

type sourceSections struct {
	macroLines   []rawLine
	textLines    []rawLine
	constsBlocks []constsBlock
	sawText      bool
}

// stripComment removes a trailing "# ..." comment. The grammar has no string
// literals, so a bare index of '#' is sufficient.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}

	return line
}

// splitSections implements pass 1 of §4.5: assign each non-blank line to its
// enclosing [macros]/[text]/[consts ADDR] section.
func splitSections(src string) (*sourceSections, []error) {
	var (
		sec     sourceSections
		current = ""
		curIdx  = -1
		errs    []error
	)

	for i, raw := range strings.Split(src, "\n") {
		num := i + 1

		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			kind := strings.ToLower(m[1])

			switch kind {
			case "macros":
				current = "macros"
			case "text":
				current = "text"
				sec.sawText = true
			case "consts":
				addrTok := m[2]
				if addrTok == "" {
					errs = append(errs, &SyntaxError{Line: num, Text: line, Err: ErrBadOperand})
					current = ""
					continue
				}

				addr, err := parseNumber(addrTok)
				if err != nil {
					errs = append(errs, &SyntaxError{Line: num, Text: line, Err: ErrBadOperand})
					current = ""
					continue
				}

				sec.constsBlocks = append(sec.constsBlocks, constsBlock{addr: cpu.Word(addr)})
				curIdx = len(sec.constsBlocks) - 1
				current = "consts"
			}

			continue
		}

		switch current {
		case "macros":
			sec.macroLines = append(sec.macroLines, rawLine{num, line})
		case "text":
			sec.textLines = append(sec.textLines, rawLine{num, line})
		case "consts":
			sec.constsBlocks[curIdx].lines = append(sec.constsBlocks[curIdx].lines, rawLine{num, line})
		default:
			errs = append(errs, &SyntaxError{Line: num, Text: line, Err: ErrUnknownOp})
		}
	}

	if !sec.sawText {
		errs = append(errs, &SyntaxError{Line: 0, Text: "", Err: ErrMissingText})
	}

	return &sec, errs
}

// fields splits a line on runs of whitespace. Commas stay attached to the
// tokens ("add, A, D" gives "add,", "A,", "D"); callers that need operand
// lists comma-split the text themselves with splitComma.
func fields(line string) []string {
	return strings.Fields(line)
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}
