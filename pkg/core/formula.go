package core

import (
	"math"
	"strconv"
	"strings"
)

// maxRepeatedTokens bounds how many tokens a repeated group is expanded into.
// Larger repetitions fold into the token counts instead.
const maxRepeatedTokens = 1024

// ChargeSign is the ionic charge marker trailing an element or group.
type ChargeSign byte

const (
	ChargeNone     ChargeSign = 0
	ChargePositive ChargeSign = '+'
	ChargeNegative ChargeSign = '-'
)

// String returns "+", "-" or "".
func (c ChargeSign) String() string {
	if c == ChargeNone {
		return ""
	}
	return string(rune(c))
}

// ElectronSymbol returns the electron pseudo-symbol for a charge ("e+" or "e-").
func (c ChargeSign) ElectronSymbol() string {
	return "e" + c.String()
}

// ElementToken is one element (or electron correction) with its multiplicity.
type ElementToken struct {
	Symbol string
	Count  int
	Charge ChargeSign
}

// IsElectron reports whether the token is an electron-mass correction.
func (t ElementToken) IsElectron() bool {
	return strings.HasPrefix(t.Symbol, "e")
}

// ParsedFormula is a fully expanded formula: no groups remain.
type ParsedFormula []ElementToken

// Counts sums token counts by symbol.
func (f ParsedFormula) Counts() map[string]int {
	counts := make(map[string]int, len(f))
	for _, tok := range f {
		counts[tok.Symbol] += tok.Count
	}
	return counts
}

// ParseFormula expands a single formula such as "C6H12O6", "Fe2+" or "(NH4)2SO4"
// into element tokens. Element tokens outside of groups come first, followed by
// the expansion of each group in source order.
func ParseFormula(formula string) (ParsedFormula, error) {
	p := &formulaParser{src: stripBrackets(strings.TrimSpace(formula))}
	p.formula = formula
	if p.src == "" {
		return nil, p.fail("empty formula")
	}

	bare, groups, err := p.parseSequence(0)
	if err != nil {
		return nil, err
	}
	tokens := append(bare, groups...)
	if len(tokens) == 0 {
		return nil, p.fail("no element symbols")
	}
	return tokens, nil
}

// stripBrackets removes a single enclosing pair of square brackets.
func stripBrackets(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return s[1 : len(s)-1]
	}
	return s
}

type formulaParser struct {
	formula string
	src     string
	pos     int
}

func (p *formulaParser) fail(reason string) error {
	return &MalformedFormulaError{Formula: p.formula, Reason: reason}
}

// parseSequence reads tokens until end of input or an unmatched ')'. Bare
// element tokens and expanded group tokens are returned separately so callers
// can keep the remainder-then-groups ordering. Digits, lowercase letters and
// signs that do not follow an element symbol are skipped.
func (p *formulaParser) parseSequence(depth int) (bare, groups ParsedFormula, err error) {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '(':
			p.pos++
			tokens, err := p.parseGroup(depth + 1)
			if err != nil {
				return nil, nil, err
			}
			groups = append(groups, tokens...)
		case c == ')':
			if depth == 0 {
				return nil, nil, p.fail("unbalanced ')'")
			}
			return bare, groups, nil
		case isUpper(c):
			tokens, err := p.parseElement()
			if err != nil {
				return nil, nil, err
			}
			bare = append(bare, tokens...)
		case isLower(c) || isDigit(c) || c == '+' || c == '-':
			p.pos++
		default:
			return nil, nil, p.fail("invalid character " + strconv.Quote(string(c)))
		}
	}
	if depth > 0 {
		return nil, nil, p.fail("unbalanced '('")
	}
	return bare, groups, nil
}

// parseGroup is entered just after '(' and consumes through the closing
// ')' plus its count and charge suffix.
func (p *formulaParser) parseGroup(depth int) (ParsedFormula, error) {
	start := p.pos
	bare, nested, err := p.parseSequence(depth)
	if err != nil {
		return nil, err
	}
	if p.pos >= len(p.src) || p.src[p.pos] != ')' {
		return nil, p.fail("unbalanced '('")
	}
	if p.pos == start {
		return nil, p.fail("empty group")
	}
	p.pos++
	inner := append(bare, nested...)

	count, err := p.readCount()
	if err != nil {
		return nil, err
	}
	charge := p.readCharge()

	if charge != ChargeNone {
		// Charged group: inner atoms once, plus a single electron correction.
		out := make(ParsedFormula, 0, len(inner)+1)
		out = append(out, inner...)
		return append(out, ElementToken{Symbol: charge.ElectronSymbol(), Count: 1, Charge: charge}), nil
	}

	if count <= maxRepeatedTokens/max(len(inner), 1) {
		out := make(ParsedFormula, 0, len(inner)*count)
		for i := 0; i < count; i++ {
			out = append(out, inner...)
		}
		return out, nil
	}
	out := make(ParsedFormula, len(inner))
	for i, tok := range inner {
		if tok.Count > math.MaxInt/count {
			return nil, p.fail("group count " + strconv.Itoa(count) + " out of range")
		}
		tok.Count *= count
		out[i] = tok
	}
	return out, nil
}

// parseElement reads [A-Z][a-z]?\d*[+-]? at the current position.
func (p *formulaParser) parseElement() (ParsedFormula, error) {
	start := p.pos
	p.pos++
	if p.pos < len(p.src) && isLower(p.src[p.pos]) {
		p.pos++
	}
	symbol := p.src[start:p.pos]
	count, err := p.readCount()
	if err != nil {
		return nil, err
	}
	charge := p.readCharge()

	if charge == ChargeNone {
		return ParsedFormula{{Symbol: symbol, Count: count}}, nil
	}
	// An ion such as Fe2+ keeps one neutral atom; the digits are the charge.
	return ParsedFormula{
		{Symbol: symbol, Count: 1, Charge: charge},
		{Symbol: charge.ElectronSymbol(), Count: count, Charge: charge},
	}, nil
}

// readCount consumes a digit run. No digits means a count of 1.
func (p *formulaParser) readCount() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return 1, nil
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.fail("count " + strconv.Quote(p.src[start:p.pos]) + " out of range")
	}
	return n, nil
}

func (p *formulaParser) readCharge() ChargeSign {
	if p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '+':
			p.pos++
			return ChargePositive
		case '-':
			p.pos++
			return ChargeNegative
		}
	}
	return ChargeNone
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
