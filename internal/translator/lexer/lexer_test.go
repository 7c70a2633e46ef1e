package lexer

import (
	"errors"
	"testing"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestScanTokenKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{
			name:  "bare terms",
			input: "alpha beta",
			want:  []Kind{KindTerm, KindTerm, KindEOF},
		},
		{
			name:  "keyword operators",
			input: "a or b and c",
			want:  []Kind{KindTerm, KindOr, KindTerm, KindAnd, KindTerm, KindEOF},
		},
		{
			name:  "symbol operators",
			input: "a | b & c",
			want:  []Kind{KindTerm, KindOr, KindTerm, KindAnd, KindTerm, KindEOF},
		},
		{
			name:  "prefix markers",
			input: "-a ~b +c",
			want:  []Kind{KindExclude, KindTerm, KindThesaurus, KindTerm, KindExact, KindTerm, KindEOF},
		},
		{
			name:  "grouping",
			input: "(a) <b c>",
			want:  []Kind{KindLParen, KindTerm, KindRParen, KindLAngle, KindTerm, KindTerm, KindRAngle, KindEOF},
		},
		{
			name:  "phrases",
			input: `"double" 'single'`,
			want:  []Kind{KindDoubleQuoted, KindSingleQuoted, KindEOF},
		},
		{
			name:  "empty input",
			input: "",
			want:  []Kind{KindEOF},
		},
		{
			name:  "whitespace only",
			input: " \t\r\n ",
			want:  []Kind{KindEOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(tt.input)
			if err != nil {
				t.Fatalf("Scan(%q) returned error: %v", tt.input, err)
			}
			got := kinds(tokens)
			if len(got) != len(tt.want) {
				t.Fatalf("Scan(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScanKeywordsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"OR", "Or", "oR", "or"} {
		tokens, err := Scan(input)
		if err != nil {
			t.Fatalf("Scan(%q): %v", input, err)
		}
		if tokens[0].Kind != KindOr {
			t.Errorf("Scan(%q)[0].Kind = %v, want KindOr", input, tokens[0].Kind)
		}
	}
	tokens, err := Scan("AND")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindAnd {
		t.Errorf("Scan(\"AND\")[0].Kind = %v, want KindAnd", tokens[0].Kind)
	}
	// Keywords only win on an exact match; "android" stays a term.
	tokens, err = Scan("android oreo")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindTerm || tokens[1].Kind != KindTerm {
		t.Errorf("got %v %v, want two terms", tokens[0], tokens[1])
	}
}

func TestScanTermPunctuation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cat*", "cat*"},
		{"driver's", "driver's"},
		{"u.s.", "u.s."},
		{"c#", "c#"},
		{"what?", "what?"},
		{"snake_case", "snake_case"},
		{"50%", "50%"},
	}
	for _, tt := range tests {
		tokens, err := Scan(tt.input)
		if err != nil {
			t.Fatalf("Scan(%q): %v", tt.input, err)
		}
		if tokens[0].Kind != KindTerm || tokens[0].Text != tt.want {
			t.Errorf("Scan(%q)[0] = %v, want TERM(%s)", tt.input, tokens[0], tt.want)
		}
	}
}

func TestScanPhraseContentPreserved(t *testing.T) {
	tokens, err := Scan(`"Foo, Bar: baz!"`)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Text != "Foo, Bar: baz!" {
		t.Errorf("phrase text = %q, want %q", tokens[0].Text, "Foo, Bar: baz!")
	}

	tokens, err = Scan(`'it is "quoted" inside'`)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindSingleQuoted || tokens[0].Text != `it is "quoted" inside` {
		t.Errorf("got %v, want single-quoted phrase preserving inner double quotes", tokens[0])
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated double quote", `"unterminated`},
		{"unterminated single quote", "'unterminated"},
		{"unexpected comma", "a, b"},
		{"unexpected brace", "{a}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan(tt.input)
			if err == nil {
				t.Fatalf("Scan(%q) succeeded, want error", tt.input)
			}
			var lexErr *Error
			if !errors.As(err, &lexErr) {
				t.Errorf("Scan(%q) error type %T, want *Error", tt.input, err)
			}
		})
	}
}
