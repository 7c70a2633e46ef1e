// Package compiler renders an expression tree into the CONTAINS/CONTAINSTABLE
// predicate syntax of the target full-text engine. Term formatting is context
// sensitive: the walk carries a term mode that proximity groups force to
// exact and conjunctions reset to inflectional.
package compiler

import (
	"fmt"
	"strings"

	"github.com/grammophone/fts-query-translator/internal/translator/ast"
)

// termMode is the contextual formatting applied to bare terms during the
// walk. It starts inflectional at the root.
type termMode int

const (
	termInflectional termMode = iota
	termExact
)

// Compile renders root under the given phrase mode. A nil root (the empty
// expression) compiles to the empty string. Compile panics on an expression
// node it does not know; that is a programming error in the tree builder, not
// a property of user input.
func Compile(root ast.Expr, mode PhraseMode) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	emit(&b, root, mode, termInflectional)
	return b.String()
}

func emit(b *strings.Builder, node ast.Expr, mode PhraseMode, tm termMode) {
	switch n := node.(type) {
	case ast.Or:
		b.WriteByte('(')
		emit(b, n.Left, mode, tm)
		b.WriteString(" OR ")
		emit(b, n.Right, mode, tm)
		b.WriteByte(')')

	case ast.And:
		// Both operands revert to inflectional formatting regardless of the
		// mode in effect at entry.
		emit(b, n.Left, mode, termInflectional)
		b.WriteString(" AND ")
		emit(b, n.Right, mode, termInflectional)

	case ast.Exclude:
		b.WriteString("NOT(")
		emit(b, n.Inner, mode, termInflectional)
		b.WriteByte(')')

	case ast.Thesaurus:
		b.WriteString("FORMSOF (THESAURUS, ")
		b.WriteString(n.Term)
		b.WriteByte(')')

	case ast.Exact:
		b.WriteByte('"')
		b.WriteString(n.Text)
		b.WriteByte('"')

	case ast.Group:
		b.WriteByte('(')
		emit(b, n.Inner, mode, tm)
		b.WriteByte(')')

	case ast.Phrase:
		// Double quotes are reapplied even when the source delimiter was a
		// single quote.
		b.WriteByte('"')
		b.WriteString(n.Text)
		b.WriteByte('"')

	case ast.Proximity:
		b.WriteByte('(')
		for i, term := range n.Terms {
			if i > 0 {
				b.WriteString(" NEAR ")
			}
			b.WriteString(term)
		}
		b.WriteByte(')')

	case ast.Leaf:
		b.WriteString(leafText(n.Text, mode, tm))

	default:
		panic(fmt.Sprintf("compiler: unhandled expression node %T", node))
	}
}

// leafText formats a bare term. In exact context the term passes through
// verbatim. Otherwise a trailing wildcard always wins: the term is quoted
// as-is, bypassing the phrase mode, so "cat*" never becomes "cat**".
func leafText(text string, mode PhraseMode, tm termMode) string {
	if tm == termExact {
		return text
	}
	if strings.HasSuffix(text, "*") {
		return `"` + text + `"`
	}
	if mode == Prefix {
		return `"` + text + `*"`
	}
	return "FORMSOF (INFLECTIONAL, " + text + ")"
}
