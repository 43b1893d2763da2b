package ast

import (
	"fmt"
	"strconv"
)

// ParseError indicates malformed expression text. Pos is the byte
// offset of the offending token.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse parses an expression using the grammar, in descending binding
// strength:
//
//	atoms, parenthesized groups
//	dot(a, b), reinterpret(a, V), translate(a, V)
//	unary prefix ~ and -
//	* (bind, or scale when one operand is numeric)
//	+ and - (left associative)
//
// Identifiers become symbol nodes resolved against the ambient
// vocabulary during inference, except for the targets of reinterpret
// and translate, which name vocabularies.
func Parse(src string) (Node, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	n, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("unexpected %q", p.tok.text)}
	}
	return n, nil
}

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokTilde
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokKind
	pos  int
	text string
}

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func (l *lexer) lex() (token, error) {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch {
	case c == '+':
		l.pos++
		return token{kind: tokPlus, pos: start, text: "+"}, nil
	case c == '-':
		l.pos++
		return token{kind: tokMinus, pos: start, text: "-"}, nil
	case c == '*':
		l.pos++
		return token{kind: tokStar, pos: start, text: "*"}, nil
	case c == '~':
		l.pos++
		return token{kind: tokTilde, pos: start, text: "~"}, nil
	case c == '(':
		l.pos++
		return token{kind: tokLParen, pos: start, text: "("}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, pos: start, text: ")"}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, pos: start, text: ","}, nil
	case isDigit(c) || c == '.':
		for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.' ||
			l.src[l.pos] == 'e' || l.src[l.pos] == 'E' ||
			((l.src[l.pos] == '+' || l.src[l.pos] == '-') && l.pos > start &&
				(l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'))) {
			l.pos++
		}
		text := l.src[start:l.pos]
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return token{}, &ParseError{Pos: start, Msg: fmt.Sprintf("malformed number %q", text)}
		}
		return token{kind: tokNumber, pos: start, text: text}, nil
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, pos: start, text: l.src[start:l.pos]}, nil
	default:
		return token{}, &ParseError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", string(c))}
	}
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) next() error {
	tok, err := p.lex.lex()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokKind, what string) (token, error) {
	if p.tok.kind != kind {
		return token{}, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("expected %s, got %q", what, p.tok.text)}
	}
	tok := p.tok
	if err := p.next(); err != nil {
		return token{}, err
	}
	return tok, nil
}

func (p *parser) parseSum() (Node, error) {
	first, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	operands := []Node{first}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		neg := p.tok.kind == tokMinus
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if neg {
			operand = Neg(operand)
		}
		operands = append(operands, operand)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return SumOf(operands...), nil
}

func (p *parser) parseProduct() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	operands := []Node{first}
	for p.tok.kind == tokStar {
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return Mul(operands...), nil
}

func (p *parser) parseUnary() (Node, error) {
	switch p.tok.kind {
	case tokTilde:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Inv(operand), nil
	case tokMinus:
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(operand), nil
	default:
		return p.parsePrimary()
	}
}

func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.kind {
	case tokNumber:
		x, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("malformed number %q", p.tok.text)}
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return Num(x), nil

	case tokLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return inner, nil

	case tokIdent:
		name := p.tok.text
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokLParen {
			return p.parseCall(name)
		}
		return Sym(name), nil

	default:
		return nil, &ParseError{Pos: p.tok.pos, Msg: fmt.Sprintf("expected expression, got %q", p.tok.text)}
	}
}

func (p *parser) parseCall(name string) (Node, error) {
	pos := p.tok.pos
	if err := p.next(); err != nil { // consume "("
		return nil, err
	}

	switch name {
	case "dot":
		a, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, `","`); err != nil {
			return nil, err
		}
		b, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		return DotOf(a, b), nil

	case "reinterpret", "translate":
		operand, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokComma, `","`); err != nil {
			return nil, err
		}
		target, err := p.expect(tokIdent, "vocabulary name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}
		if name == "reinterpret" {
			return &ReinterpretNode{Operand: operand, TargetName: target.text}, nil
		}
		return &TranslateNode{Operand: operand, TargetName: target.text}, nil

	default:
		return nil, &ParseError{Pos: pos, Msg: fmt.Sprintf("unknown function %q", name)}
	}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
