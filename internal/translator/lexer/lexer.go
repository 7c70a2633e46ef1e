// Package lexer splits a raw search expression into tokens: bare terms,
// quoted phrases, and the fixed operator and grouping symbols. It holds no
// state between calls, so Scan is safe for concurrent use.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Error is a lexical error with the byte offset at which it occurred.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexical error at offset %d: %s", e.Pos, e.Msg)
}

// termPunct is the punctuation allowed anywhere inside a bare term. It keeps
// trailing wildcard markers ("cat*"), possessive apostrophes ("driver's"),
// and abbreviations ("u.s.") in one token.
const termPunct = "!@#$%^*_'.?"

var symbolKinds = map[rune]Kind{
	'|': KindOr,
	'&': KindAnd,
	'-': KindExclude,
	'~': KindThesaurus,
	'+': KindExact,
	'(': KindLParen,
	')': KindRParen,
	'<': KindLAngle,
	'>': KindRAngle,
}

// Scan tokenizes input, skipping insignificant whitespace. It returns the
// full token sequence terminated by an EOF token, or an *Error for an
// unterminated phrase or a character no token class accepts.
func Scan(input string) ([]Token, error) {
	tokens := make([]Token, 0, 8)
	pos := 0
	for pos < len(input) {
		r, width := utf8.DecodeRuneInString(input[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += width

		case r == '\'' || r == '"':
			tok, next, err := scanPhrase(input, pos, r)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			pos = next

		case isTermRune(r):
			tok, next := scanTerm(input, pos)
			tokens = append(tokens, tok)
			pos = next

		default:
			if kind, ok := symbolKinds[r]; ok {
				tokens = append(tokens, Token{Kind: kind, Pos: pos})
				pos += width
				break
			}
			return nil, &Error{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	tokens = append(tokens, Token{Kind: KindEOF, Pos: len(input)})
	return tokens, nil
}

// scanPhrase reads from the opening quote at start to the next quote of the
// same kind. The stored text excludes the delimiters but is otherwise
// preserved byte for byte.
func scanPhrase(input string, start int, quote rune) (Token, int, error) {
	body := start + utf8.RuneLen(quote)
	end := strings.IndexRune(input[body:], quote)
	if end < 0 {
		return Token{}, 0, &Error{Pos: start, Msg: "unterminated phrase"}
	}
	kind := KindDoubleQuoted
	if quote == '\'' {
		kind = KindSingleQuoted
	}
	tok := Token{Kind: kind, Text: input[body : body+end], Pos: start}
	return tok, body + end + utf8.RuneLen(quote), nil
}

// scanTerm reads a maximal run of term runes. Reserved keywords win over the
// generic term pattern: a run spelling "or" or "and" in any case is emitted
// as its operator token instead.
func scanTerm(input string, start int) (Token, int) {
	end := start
	for end < len(input) {
		r, width := utf8.DecodeRuneInString(input[end:])
		if !isTermRune(r) {
			break
		}
		end += width
	}
	text := input[start:end]
	switch {
	case strings.EqualFold(text, "or"):
		return Token{Kind: KindOr, Pos: start}, end
	case strings.EqualFold(text, "and"):
		return Token{Kind: KindAnd, Pos: start}, end
	}
	return Token{Kind: KindTerm, Text: text, Pos: start}, end
}

func isTermRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(termPunct, r)
}
