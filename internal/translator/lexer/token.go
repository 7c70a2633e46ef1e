package lexer

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	KindTerm Kind = iota
	KindSingleQuoted
	KindDoubleQuoted
	KindOr
	KindAnd
	KindExclude
	KindThesaurus
	KindExact
	KindLParen
	KindRParen
	KindLAngle
	KindRAngle
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "TERM"
	case KindSingleQuoted:
		return "SINGLE_QUOTED_PHRASE"
	case KindDoubleQuoted:
		return "DOUBLE_QUOTED_PHRASE"
	case KindOr:
		return "OR"
	case KindAnd:
		return "AND"
	case KindExclude:
		return "EXCLUDE"
	case KindThesaurus:
		return "THESAURUS"
	case KindExact:
		return "EXACT"
	case KindLParen:
		return "LPAREN"
	case KindRParen:
		return "RPAREN"
	case KindLAngle:
		return "LANGLE"
	case KindRAngle:
		return "RANGLE"
	case KindEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit of a search expression. Text carries the
// term or phrase content (quotes already stripped for phrases) and Pos is the
// byte offset of the token in the original input.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func (t Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	}
	return t.Kind.String()
}
