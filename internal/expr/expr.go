// Package expr evaluates arithmetic expressions over a deliberately tiny
// grammar: numeric literals, + - * /, unary minus, and parentheses. No
// identifiers, no function calls, no indexing. Anything beyond that grammar
// is a parse error, which keeps expression evaluation from ever becoming a
// code-execution surface.
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Eval parses and evaluates expression. Operator precedence is the usual
// one: * and / bind tighter than + and -, all left-associative.
func Eval(expression string) (float64, error) {
	p := &parser{input: expression}
	p.skipSpace()
	if p.eof() {
		return 0, fmt.Errorf("empty expression")
	}

	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}

	p.skipSpace()
	if !p.eof() {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() byte {
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && strings.ContainsRune(" \t\n\r", rune(p.input[p.pos])) {
		p.pos++
	}
}

// parseSum handles + and - terms.
func (p *parser) parseSum() (float64, error) {
	v, err := p.parseProduct()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		if p.eof() {
			return v, nil
		}
		op := p.peek()
		if op != '+' && op != '-' {
			return v, nil
		}
		p.pos++

		rhs, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

// parseProduct handles * and / factors.
func (p *parser) parseProduct() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpace()
		if p.eof() {
			return v, nil
		}
		op := p.peek()
		if op != '*' && op != '/' {
			return v, nil
		}
		p.pos++

		rhs, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	p.skipSpace()
	if p.eof() {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.eof() {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	if p.peek() == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.eof() || p.peek() != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}

	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for !p.eof() {
		c := p.peek()
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}

	if p.pos == start {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}

	lit := p.input[start:p.pos]
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", lit)
	}
	return v, nil
}
