package translator

import (
	"errors"
	"strings"
	"testing"

	"github.com/grammophone/fts-query-translator/internal/translator/compiler"
	pkgerrors "github.com/grammophone/fts-query-translator/pkg/errors"
)

func TestTranslateStructured(t *testing.T) {
	tests := []struct {
		name   string
		source string
		mode   PhraseMode
		want   string
	}{
		{
			name:   "or groups looser than and",
			source: "a or b and c",
			mode:   Inflectional,
			want:   "(FORMSOF (INFLECTIONAL, a) OR FORMSOF (INFLECTIONAL, b) AND FORMSOF (INFLECTIONAL, c))",
		},
		{
			name:   "exclusion",
			source: "drugs -marijuana",
			mode:   Inflectional,
			want:   "FORMSOF (INFLECTIONAL, drugs) AND NOT(FORMSOF (INFLECTIONAL, marijuana))",
		},
		{
			name:   "proximity",
			source: "<alpha beta gamma>",
			mode:   Inflectional,
			want:   "(alpha NEAR beta NEAR gamma)",
		},
		{
			name:   "wildcard passthrough in prefix mode",
			source: "cat*",
			mode:   Prefix,
			want:   `"cat*"`,
		},
		{
			name:   "wildcard passthrough in inflectional mode",
			source: "cat*",
			mode:   Inflectional,
			want:   `"cat*"`,
		},
		{
			name:   "empty input",
			source: "",
			mode:   Inflectional,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Translate(tt.source, tt.mode)
			if err != nil {
				t.Fatalf("Translate(%q, %v): %v", tt.source, tt.mode, err)
			}
			if !result.Structured {
				t.Errorf("Translate(%q, %v) fell back: %v", tt.source, tt.mode, result.ParseErr)
			}
			if result.Predicate != tt.want {
				t.Errorf("Translate(%q, %v) = %q, want %q", tt.source, tt.mode, result.Predicate, tt.want)
			}
		})
	}
}

func TestTranslateFallback(t *testing.T) {
	result, err := Translate(`"unterminated`, Inflectional)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.Structured {
		t.Fatal("Translate of unterminated phrase reported structured success")
	}
	if result.ParseErr == nil {
		t.Error("fallback result is missing the parse error")
	}
	if result.Predicate != "FORMSOF (INFLECTIONAL, unterminated)" {
		t.Errorf("fallback predicate = %q", result.Predicate)
	}
}

func TestTranslateFallbackNeverEmptyHanded(t *testing.T) {
	// Inputs with no recognizable structure still return best-effort output.
	sources := []string{"a ,, b", "((broken", "cats and or"}
	for _, source := range sources {
		result, err := Translate(source, Inflectional)
		if err != nil {
			t.Fatalf("Translate(%q): %v", source, err)
		}
		if result.Structured {
			t.Errorf("Translate(%q) unexpectedly parsed", source)
		}
	}
}

func TestTranslateInvalidMode(t *testing.T) {
	_, err := Translate("cat", PhraseMode(42))
	if err == nil {
		t.Fatal("Translate with invalid mode succeeded, want error")
	}
	if !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestParseOnceCompileTwice(t *testing.T) {
	tr := New(Options{})
	root, err := tr.Parse("big cats")
	if err != nil {
		t.Fatal(err)
	}
	inflectional := compiler.Compile(root, Inflectional)
	prefix := compiler.Compile(root, Prefix)
	if inflectional == prefix {
		t.Errorf("modes produced identical output %q", inflectional)
	}
	if !strings.Contains(inflectional, "FORMSOF (INFLECTIONAL, big)") {
		t.Errorf("inflectional output = %q", inflectional)
	}
	if prefix != `"big*" AND "cats*"` {
		t.Errorf("prefix output = %q", prefix)
	}
}

func TestTranslatorExtraStopwords(t *testing.T) {
	tr := New(Options{ExtraStopwords: []string{"feline"}})
	got := tr.SimpleCompile("feline leukemia", Inflectional)
	if got != "FORMSOF (INFLECTIONAL, leukemia)" {
		t.Errorf("SimpleCompile with extra stopword = %q", got)
	}
}

func TestTranslatorConcurrentUse(t *testing.T) {
	tr := New(Options{})
	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 200 {
				if result, err := tr.Translate("cats or dogs -fleas", Inflectional); err != nil || !result.Structured {
					t.Errorf("concurrent translate failed: %v %v", result, err)
					return
				}
			}
		}()
	}
	for range 8 {
		<-done
	}
}
