package asm

import (
	"regexp"
	"strconv"
	"strings"
)

type macroDef struct {
	name   string
	params []string
	body   []rawLine
}

var (
	defineRe    = regexp.MustCompile(`^define\s+([A-Za-z._]+)\s+(\S+)$`)
	beginRe     = regexp.MustCompile(`^begin\s+([A-Za-z._]+)\s*\(([^)]*)\)$`)
	invokeNameRe = regexp.MustCompile(`^[A-Za-z._]+`)
)

// collectMacros implements pass 2 of §4.5: numeric defines and begin/end
// macro bodies, collected verbatim. Bodies are not expanded here -- that is
// pass 3, expandMacros.
func collectMacros(lines []rawLine) (map[string]uint16, map[string]*macroDef, []error) {
	defines := map[string]uint16{}
	macros := map[string]*macroDef{}

	var errs []error

	checkConflict := func(name string) bool {
		if reservedWords[name] || reservedWords[strings.ToUpper(name)] {
			return false
		}

		if _, ok := defines[name]; ok {
			return false
		}

		if _, ok := macros[name]; ok {
			return false
		}

		return true
	}

	var (
		inBody  *macroDef
		lineNum int
	)

	for _, rl := range lines {
		lineNum = rl.num

		if inBody != nil {
			if strings.TrimSpace(rl.text) == "end" {
				macros[inBody.name] = inBody
				inBody = nil
				continue
			}

			inBody.body = append(inBody.body, rl)
			continue
		}

		switch {
		case defineRe.MatchString(rl.text):
			m := defineRe.FindStringSubmatch(rl.text)
			name, numTok := m[1], m[2]

			if !checkConflict(name) {
				errs = append(errs, &SyntaxError{Line: rl.num, Text: rl.text, Err: ErrNameConflict})
				continue
			}

			n, err := strconv.ParseUint(numTok, 0, 16)
			if err != nil {
				if v, perr := parseNumber(numTok); perr == nil {
					n = uint64(v)
				} else {
					errs = append(errs, &SyntaxError{Line: rl.num, Text: rl.text, Err: ErrBadOperand})
					continue
				}
			}

			defines[name] = uint16(n)

		case beginRe.MatchString(rl.text):
			m := beginRe.FindStringSubmatch(rl.text)
			name, argList := m[1], m[2]

			if !checkConflict(name) {
				errs = append(errs, &SyntaxError{Line: rl.num, Text: rl.text, Err: ErrNameConflict})
				continue
			}

			var params []string
			if strings.TrimSpace(argList) != "" {
				params = splitComma(argList)
			}

			seen := map[string]bool{}
			for _, p := range params {
				if !checkConflict(p) || seen[p] {
					errs = append(errs, &SyntaxError{Line: rl.num, Text: rl.text, Err: ErrNameConflict})
				}

				seen[p] = true
			}

			inBody = &macroDef{name: name, params: params}

		default:
			errs = append(errs, &SyntaxError{Line: rl.num, Text: rl.text, Err: ErrUnknownOp})
		}
	}

	if inBody != nil {
		errs = append(errs, &SyntaxError{Line: lineNum, Text: "begin " + inBody.name, Err: ErrUnknownOp})
	}

	// A macro body may not invoke another macro: the expander is single-pass
	// and non-recursive by construction (spec §4.5 step 3, §9).
	for _, m := range macros {
		for _, body := range m.body {
			name := invokeNameRe.FindString(strings.TrimSpace(body.text))
			if name == "" {
				continue
			}

			if _, ok := macros[name]; ok {
				errs = append(errs, &SyntaxError{Line: body.num, Text: body.text, Err: ErrMacroRecursion})
			}
		}
	}

	return defines, macros, errs
}

// expandMacros implements pass 3 of §4.5: each line whose first token names
// a macro is replaced by the macro body with parameters substituted; numeric
// defines are substituted as whole-word tokens anywhere on the line.
func expandMacros(lines []rawLine, defines map[string]uint16, macros map[string]*macroDef) ([]rawLine, []error) {
	var (
		out  []rawLine
		errs []error
	)

	for _, rl := range lines {
		name := invokeNameRe.FindString(strings.TrimSpace(rl.text))
		if name != "" {
			if m, ok := macros[name]; ok {
				args := splitInvocationArgs(rl.text)

				if len(args) != len(m.params) {
					errs = append(errs, &SyntaxError{Line: rl.num, Text: rl.text, Err: ErrMacroArity})
					continue
				}

				bind := map[string]string{}
				for i, p := range m.params {
					bind[p] = args[i]
				}

				for _, body := range m.body {
					out = append(out, rawLine{num: rl.num, text: substituteTokens(body.text, bind, defines)})
				}

				continue
			}
		}

		out = append(out, rawLine{num: rl.num, text: substituteTokens(rl.text, nil, defines)})
	}

	return out, errs
}

// splitInvocationArgs pulls "name(a, b)" style arguments off a macro
// invocation line; "name a, b" (no parens) is also accepted.
func splitInvocationArgs(line string) []string {
	if i := strings.IndexByte(line, '('); i >= 0 {
		j := strings.LastIndexByte(line, ')')
		if j > i {
			inner := strings.TrimSpace(line[i+1 : j])
			if inner == "" {
				return nil
			}

			return splitComma(inner)
		}
	}

	toks := fields(line)
	if len(toks) <= 1 {
		return nil
	}

	return splitComma(strings.Join(toks[1:], " "))
}

var wordRe = regexp.MustCompile(`[A-Za-z._][A-Za-z0-9._]*`)

func substituteTokens(line string, bind map[string]string, defines map[string]uint16) string {
	return wordRe.ReplaceAllStringFunc(line, func(tok string) string {
		if bind != nil {
			if v, ok := bind[tok]; ok {
				return v
			}
		}

		if v, ok := defines[tok]; ok {
			return strconv.Itoa(int(v))
		}

		return tok
	})
}
