// Package parser builds an expression tree from a search expression using a
// hand-written recursive-descent parser. Precedence, loosest first: OR, then
// AND (explicit or implicit between adjacent operands), then the unary
// prefixes and primaries. Failure is total: no partial tree is ever returned.
package parser

import (
	"fmt"

	"github.com/grammophone/fts-query-translator/internal/translator/ast"
	"github.com/grammophone/fts-query-translator/internal/translator/lexer"
)

// DefaultMaxDepth bounds group nesting so pathological input fails with a
// SyntaxError instead of exhausting the call stack.
const DefaultMaxDepth = 100

// SyntaxError is a structural parse error with the byte offset of the
// offending token.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Parser parses search expressions. The zero value is ready to use and a
// single Parser may serve concurrent calls; it holds no per-call state.
type Parser struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// Parse is shorthand for parsing with the default nesting limit.
func Parse(source string) (ast.Expr, error) {
	var p Parser
	return p.Parse(source)
}

// Parse tokenizes source and builds its expression tree. Empty input yields a
// nil tree and no error. Errors are *lexer.Error or *SyntaxError.
func (p *Parser) Parse(source string) (ast.Expr, error) {
	tokens, err := lexer.Scan(source)
	if err != nil {
		return nil, err
	}
	maxDepth := p.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	c := &cursor{tokens: tokens, maxDepth: maxDepth}
	if c.peek().Kind == lexer.KindEOF {
		return nil, nil
	}
	root, err := c.parseOr(0)
	if err != nil {
		return nil, err
	}
	if tok := c.peek(); tok.Kind != lexer.KindEOF {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected %s after end of expression", tok)}
	}
	return root, nil
}

type cursor struct {
	tokens   []lexer.Token
	pos      int
	maxDepth int
}

func (c *cursor) peek() lexer.Token {
	return c.tokens[c.pos]
}

func (c *cursor) next() lexer.Token {
	tok := c.tokens[c.pos]
	if tok.Kind != lexer.KindEOF {
		c.pos++
	}
	return tok
}

// parseOr handles: Or -> And (("or"|"|") And)*, folding left.
func (c *cursor) parseOr(depth int) (ast.Expr, error) {
	left, err := c.parseAnd(depth)
	if err != nil {
		return nil, err
	}
	for c.peek().Kind == lexer.KindOr {
		c.next()
		right, err := c.parseAnd(depth)
		if err != nil {
			return nil, err
		}
		left = ast.Or{Left: left, Right: right}
	}
	return left, nil
}

// parseAnd handles: And -> Primary (andOp? Operand)*, where the operator is
// optional (adjacency means AND) and every operand after the first may carry
// a leading exclusion.
func (c *cursor) parseAnd(depth int) (ast.Expr, error) {
	left, err := c.parsePrimary(depth)
	if err != nil {
		return nil, err
	}
	for {
		switch c.peek().Kind {
		case lexer.KindAnd:
			c.next()
		case lexer.KindTerm, lexer.KindSingleQuoted, lexer.KindDoubleQuoted,
			lexer.KindThesaurus, lexer.KindExact, lexer.KindLParen,
			lexer.KindLAngle, lexer.KindExclude:
			// Implicit AND between adjacent operands.
		default:
			return left, nil
		}
		right, err := c.parseOperand(depth)
		if err != nil {
			return nil, err
		}
		left = ast.And{Left: left, Right: right}
	}
}

func (c *cursor) parseOperand(depth int) (ast.Expr, error) {
	if c.peek().Kind == lexer.KindExclude {
		c.next()
		inner, err := c.parsePrimary(depth)
		if err != nil {
			return nil, err
		}
		return ast.Exclude{Inner: inner}, nil
	}
	return c.parsePrimary(depth)
}

func (c *cursor) parsePrimary(depth int) (ast.Expr, error) {
	tok := c.peek()
	switch tok.Kind {
	case lexer.KindTerm:
		c.next()
		return ast.Leaf{Text: tok.Text}, nil

	case lexer.KindSingleQuoted, lexer.KindDoubleQuoted:
		c.next()
		return ast.Phrase{Text: tok.Text}, nil

	case lexer.KindThesaurus:
		c.next()
		term := c.next()
		if term.Kind != lexer.KindTerm {
			return nil, &SyntaxError{Pos: term.Pos, Msg: fmt.Sprintf("expected term after ~, got %s", term)}
		}
		return ast.Thesaurus{Term: term.Text}, nil

	case lexer.KindExact:
		c.next()
		operand := c.next()
		switch operand.Kind {
		case lexer.KindTerm, lexer.KindSingleQuoted, lexer.KindDoubleQuoted:
			return ast.Exact{Text: operand.Text}, nil
		}
		return nil, &SyntaxError{Pos: operand.Pos, Msg: fmt.Sprintf("expected term or phrase after +, got %s", operand)}

	case lexer.KindLParen:
		if depth+1 > c.maxDepth {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expression nesting exceeds %d levels", c.maxDepth)}
		}
		c.next()
		inner, err := c.parseOr(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := c.next(); closing.Kind != lexer.KindRParen {
			return nil, &SyntaxError{Pos: closing.Pos, Msg: "unmatched ("}
		}
		return ast.Group{Inner: inner}, nil

	case lexer.KindLAngle:
		return c.parseProximity()

	default:
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected term, phrase, or group, got %s", tok)}
	}
}

// parseProximity handles: Proximity -> "<" Term+ ">". An empty group is a
// syntax error.
func (c *cursor) parseProximity() (ast.Expr, error) {
	open := c.next()
	var terms []string
	for c.peek().Kind == lexer.KindTerm {
		terms = append(terms, c.next().Text)
	}
	if closing := c.next(); closing.Kind != lexer.KindRAngle {
		return nil, &SyntaxError{Pos: closing.Pos, Msg: fmt.Sprintf("expected term or > in proximity group, got %s", closing)}
	}
	if len(terms) == 0 {
		return nil, &SyntaxError{Pos: open.Pos, Msg: "proximity group requires at least one term"}
	}
	return ast.Proximity{Terms: terms}, nil
}
