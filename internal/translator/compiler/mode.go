package compiler

import "fmt"

// PhraseMode selects how bare terms are rendered when no explicit marker on
// the term itself decides it: inflectional (stemmed by the engine) or prefix
// (wildcard) matching.
type PhraseMode int

const (
	Inflectional PhraseMode = iota
	Prefix
)

func (m PhraseMode) String() string {
	switch m {
	case Inflectional:
		return "inflectional"
	case Prefix:
		return "prefix"
	default:
		return fmt.Sprintf("PhraseMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m PhraseMode) Valid() bool {
	return m == Inflectional || m == Prefix
}

// ParsePhraseMode converts a configuration or request string into a
// PhraseMode.
func ParsePhraseMode(s string) (PhraseMode, error) {
	switch s {
	case "inflectional", "":
		return Inflectional, nil
	case "prefix":
		return Prefix, nil
	default:
		return Inflectional, fmt.Errorf("unknown phrase mode %q", s)
	}
}
