// Package ast defines the expression tree produced by parsing a search
// expression. Nodes are immutable once built; the compiler only reads them.
package ast

// Expr is a node of the expression tree. The set of implementations is
// closed: Or, And, Exclude, Thesaurus, Exact, Group, Proximity, Phrase, and
// Leaf. An empty input parses to a nil Expr.
type Expr interface {
	expr()
}

// Or is a binary disjunction. Chains fold left-associatively, so
// "a or b or c" becomes Or(Or(a,b),c).
type Or struct {
	Left  Expr
	Right Expr
}

// And is a binary conjunction. It covers the explicit "and"/"&" operators and
// the implicit conjunction of adjacent operands; all three are semantically
// identical. Negation is never part of And itself, it is carried by an
// Exclude operand.
type And struct {
	Left  Expr
	Right Expr
}

// Exclude negates its inner expression (leading "-").
type Exclude struct {
	Inner Expr
}

// Thesaurus marks a term for synonym expansion (leading "~").
type Thesaurus struct {
	Term string
}

// Exact forces literal matching of a term or quoted phrase (leading "+").
type Exact struct {
	Text string
}

// Group is a parenthesized sub-expression. It shapes the tree but carries no
// text of its own.
type Group struct {
	Inner Expr
}

// Proximity is an ordered run of terms required to appear near each other
// ("<alpha beta gamma>"). Terms always has at least one element.
type Proximity struct {
	Terms []string
}

// Phrase is a verbatim quoted phrase, stored without its delimiters.
type Phrase struct {
	Text string
}

// Leaf is a bare term.
type Leaf struct {
	Text string
}

func (Or) expr()        {}
func (And) expr()       {}
func (Exclude) expr()   {}
func (Thesaurus) expr() {}
func (Exact) expr()     {}
func (Group) expr()     {}
func (Proximity) expr() {}
func (Phrase) expr()    {}
func (Leaf) expr()      {}
