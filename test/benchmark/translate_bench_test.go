package benchmark

import (
	"fmt"
	"strings"
	"testing"

	"github.com/grammophone/fts-query-translator/internal/translator"
	"github.com/grammophone/fts-query-translator/internal/translator/compiler"
	"github.com/grammophone/fts-query-translator/internal/translator/lexer"
	"github.com/grammophone/fts-query-translator/internal/translator/parser"
)

var sampleQueries = map[string]string{
	"simple":    "database replication",
	"operators": `+postgres -mysql (replication or "log shipping") ~failover`,
	"nested":    `((a or b) (c or d)) -((e or f) (g or h)) <near terms here>`,
	"long": strings.Repeat(`distributed consensus "raft protocol" or +paxos -byzantine `,
		20),
}

func BenchmarkScan(b *testing.B) {
	for name, query := range sampleQueries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(query)))
			for i := 0; i < b.N; i++ {
				tokens, err := lexer.Scan(query)
				if err != nil {
					b.Fatal(err)
				}
				_ = tokens
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	for name, query := range sampleQueries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(query)))
			for i := 0; i < b.N; i++ {
				expr, err := parser.Parse(query)
				if err != nil {
					b.Fatal(err)
				}
				_ = expr
			}
		})
	}
}

func BenchmarkCompile(b *testing.B) {
	for name, query := range sampleQueries {
		expr, err := parser.Parse(query)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				predicate := compiler.Compile(expr, compiler.Inflectional)
				_ = predicate
			}
		})
	}
}

func BenchmarkTranslate(b *testing.B) {
	svc := translator.New(translator.Options{})
	for name, query := range sampleQueries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(query)))
			for i := 0; i < b.N; i++ {
				result, err := svc.Translate(query, translator.Inflectional)
				if err != nil {
					b.Fatal(err)
				}
				_ = result
			}
		})
	}
}

func BenchmarkTranslateParallel(b *testing.B) {
	svc := translator.New(translator.Options{})
	query := sampleQueries["operators"]
	b.ReportAllocs()
	b.SetBytes(int64(len(query)))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			result, err := svc.Translate(query, translator.Prefix)
			if err != nil {
				b.Fatal(err)
			}
			_ = result
		}
	})
}

func BenchmarkSimpleCompile(b *testing.B) {
	svc := translator.New(translator.Options{})
	for name, query := range sampleQueries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(query)))
			for i := 0; i < b.N; i++ {
				predicate := svc.SimpleCompile(query, translator.Inflectional)
				_ = predicate
			}
		})
	}
}

func BenchmarkParseVaryingDepth(b *testing.B) {
	depths := []int{1, 5, 10, 25, 50}
	for _, depth := range depths {
		query := strings.Repeat("(", depth) + "term" + strings.Repeat(")", depth)
		b.Run(fmt.Sprintf("depth_%d", depth), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				expr, err := parser.Parse(query)
				if err != nil {
					b.Fatal(err)
				}
				_ = expr
			}
		})
	}
}
