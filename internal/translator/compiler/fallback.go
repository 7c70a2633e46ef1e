package compiler

import "strings"

// strippedPunct is deleted outright from input before the fallback pass
// splits it into tokens. Deletion, not replacement: "it's" becomes "its",
// not two tokens.
const strippedPunct = `!@#$%^*_'.?"();+-&|`

// DefaultStopwords is the fallback stopword list: pronouns, articles, and the
// conjunctions that double as query operators. Callers with different corpora
// pass their own set to SimpleCompileWith.
var DefaultStopwords = NewStopwordSet(
	"a", "an", "the",
	"and", "or",
	"i", "me", "my", "mine",
	"you", "your", "yours",
	"he", "him", "his",
	"she", "her", "hers",
	"it", "its",
	"we", "us", "our", "ours",
	"they", "them", "their", "theirs",
	"this", "that", "these", "those",
)

// StopwordSet is a case-insensitive membership set.
type StopwordSet map[string]struct{}

// NewStopwordSet builds a StopwordSet from words, lowercasing each.
func NewStopwordSet(words ...string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Contains reports whether word (compared case-insensitively) is in the set.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// SimpleCompile is the lossy, grammar-free fallback used when structured
// parsing fails. It never fails itself; an all-stopword or empty input
// yields an empty string.
func SimpleCompile(text string, mode PhraseMode) string {
	return SimpleCompileWith(text, mode, DefaultStopwords)
}

// SimpleCompileWith strips the fixed punctuation set from text, splits the
// remainder on whitespace, drops stopwords, formats each survivor as an
// inflectional-context term, and joins the results with " AND ".
func SimpleCompileWith(text string, mode PhraseMode, stopwords StopwordSet) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(strippedPunct, r) {
			return -1
		}
		return r
	}, text)

	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ' ' || r == '\r' || r == '\n' || r == '\t'
	})

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if stopwords.Contains(field) {
			continue
		}
		// The wildcard special case of the structured compiler cannot apply
		// here: '*' is in the stripped set.
		if mode == Prefix {
			parts = append(parts, `"`+field+`*"`)
		} else {
			parts = append(parts, "FORMSOF (INFLECTIONAL, "+field+")")
		}
	}
	return strings.Join(parts, " AND ")
}
