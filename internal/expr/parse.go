package expr

import (
	"fmt"
	"strings"
)

// Parse parses text into an expression tree.
// Returns *ParseError on malformed syntax.
func Parse(text string) (*Expression, error) {
	p := &parser{src: text}
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("expected expression, found end of input")
	}

	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after expression", p.src[p.pos])
	}

	return &Expression{source: text, root: root}, nil
}

// MustParse is like Parse but panics on error.
// Intended for tests and package-level expressions.
func MustParse(text string) *Expression {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{
		Source:  p.src,
		Offset:  p.pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// consume skips whitespace and consumes c if it is next.
func (p *parser) consume(c byte) bool {
	p.skipSpace()
	if !p.eof() && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(c byte) error {
	if p.consume(c) {
		return nil
	}
	if p.eof() {
		return p.errorf("expected %q, found end of input", c)
	}
	return p.errorf("expected %q, found %q", c, p.src[p.pos])
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *parser) ident() (string, error) {
	p.skipSpace()
	if p.eof() {
		return "", p.errorf("expected identifier, found end of input")
	}
	if !isIdentStart(p.src[p.pos]) {
		return "", p.errorf("expected identifier, found %q", p.src[p.pos])
	}
	start := p.pos
	for !p.eof() && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) str() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	start := p.pos
	end := strings.IndexByte(p.src[start:], '"')
	if end < 0 {
		p.pos = start - 1
		return "", p.errorf("unterminated string literal")
	}
	p.pos = start + end + 1
	return p.src[start : start+end], nil
}

func (p *parser) parseExpr() (Node, error) {
	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	identEnd := p.pos
	if p.consume('(') {
		return p.parseFunc(name, identEnd)
	}
	if p.consume('=') {
		value, err := p.str()
		if err != nil {
			return nil, err
		}
		return Predicate{Key: name, Value: value, HasValue: true}, nil
	}
	return Predicate{Key: name}, nil
}

func (p *parser) parseFunc(name string, identEnd int) (Node, error) {
	switch name {
	case "not":
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	case "all", "any":
		operands, err := p.parseList()
		if err != nil {
			return nil, err
		}
		if name == "all" {
			return All{Operands: operands}, nil
		}
		return Any{Operands: operands}, nil
	default:
		p.pos = identEnd - len(name)
		return nil, p.errorf("unknown function %q (expected not, all or any)", name)
	}
}

// parseList parses a comma separated operand list up to the closing paren.
// A trailing comma is allowed.
func (p *parser) parseList() ([]Node, error) {
	var operands []Node
	for {
		if p.consume(')') {
			return operands, nil
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)

		if p.consume(',') {
			continue
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return operands, nil
	}
}
