// Package translator turns Google-style boolean search expressions into the
// predicate text accepted by the target engine's CONTAINS/CONTAINSTABLE
// clauses. It first attempts a structured parse and compile; when the input
// has no recognizable structure it falls back to a lossy keyword pass that
// always produces something usable.
package translator

import (
	"fmt"
	"strings"

	"github.com/grammophone/fts-query-translator/internal/translator/ast"
	"github.com/grammophone/fts-query-translator/internal/translator/compiler"
	"github.com/grammophone/fts-query-translator/internal/translator/parser"
	pkgerrors "github.com/grammophone/fts-query-translator/pkg/errors"
)

// PhraseMode selects the default rendering of bare terms; see the compiler
// package for the two modes.
type PhraseMode = compiler.PhraseMode

const (
	Inflectional = compiler.Inflectional
	Prefix       = compiler.Prefix
)

// Result is the outcome of a translation. Structured reports whether the
// grammar matched; when it is false, Predicate comes from the fallback pass
// and ParseErr holds the error that forced it. Fallback output is
// best-effort, not a hard failure.
type Result struct {
	Predicate  string
	Structured bool
	ParseErr   error
}

// Options tunes a Translator. The zero value gives the default nesting limit
// and stopword list.
type Options struct {
	// MaxDepth bounds group nesting in the parser when positive.
	MaxDepth int
	// ExtraStopwords extends the fallback stopword list.
	ExtraStopwords []string
}

// Translator is a reusable translation pipeline. It holds only immutable
// definition data, so one instance may serve concurrent calls.
type Translator struct {
	parser    parser.Parser
	stopwords compiler.StopwordSet
}

// New builds a Translator from opts.
func New(opts Options) *Translator {
	stopwords := compiler.DefaultStopwords
	if len(opts.ExtraStopwords) > 0 {
		merged := make(compiler.StopwordSet, len(stopwords)+len(opts.ExtraStopwords))
		for w := range stopwords {
			merged[w] = struct{}{}
		}
		for _, w := range opts.ExtraStopwords {
			merged[strings.ToLower(w)] = struct{}{}
		}
		stopwords = merged
	}
	return &Translator{
		parser:    parser.Parser{MaxDepth: opts.MaxDepth},
		stopwords: stopwords,
	}
}

// Translate rewrites source into predicate text under the given phrase mode.
// An invalid mode is rejected before any parsing with ErrInvalidInput. Parse
// failures are recovered internally via the fallback pass and reported
// through Result.Structured/ParseErr rather than as an error.
func (t *Translator) Translate(source string, mode PhraseMode) (Result, error) {
	if !mode.Valid() {
		return Result{}, fmt.Errorf("%w: phrase mode %v", pkgerrors.ErrInvalidInput, mode)
	}
	root, err := t.Parse(source)
	if err != nil {
		return Result{
			Predicate: compiler.SimpleCompileWith(source, mode, t.stopwords),
			ParseErr:  err,
		}, nil
	}
	return Result{
		Predicate:  compiler.Compile(root, mode),
		Structured: true,
	}, nil
}

// Parse exposes the structured parse on its own so a caller can build the
// tree once and compile it under several phrase modes.
func (t *Translator) Parse(source string) (ast.Expr, error) {
	return t.parser.Parse(source)
}

// SimpleCompile exposes the fallback pass with this Translator's stopword
// list. It never fails.
func (t *Translator) SimpleCompile(source string, mode PhraseMode) string {
	return compiler.SimpleCompileWith(source, mode, t.stopwords)
}

var defaultTranslator = New(Options{})

// Translate runs the default Translator.
func Translate(source string, mode PhraseMode) (Result, error) {
	return defaultTranslator.Translate(source, mode)
}
