package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func eventJSON(t *testing.T, event TranslationEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)
	ctx := context.Background()

	events := []TranslationEvent{
		{Type: EventTranslated, Query: "alpha", Structured: true, LatencyMs: 2},
		{Type: EventTranslated, Query: "alpha", Structured: true, CacheHit: true, LatencyMs: 1},
		{Type: EventFallback, Query: "beta,", Structured: false, LatencyMs: 4},
		{Type: EventTranslated, Query: "gamma", Structured: true, LatencyMs: 3},
	}
	for _, event := range events {
		event.Timestamp = time.Now().UTC()
		if err := handle(ctx, []byte(event.Type), eventJSON(t, event)); err != nil {
			t.Fatalf("handling event: %v", err)
		}
	}

	stats := agg.Stats()
	if stats.TotalTranslations != 4 {
		t.Errorf("TotalTranslations = %d, want 4", stats.TotalTranslations)
	}
	if stats.StructuredCount != 3 {
		t.Errorf("StructuredCount = %d, want 3", stats.StructuredCount)
	}
	if stats.FallbackCount != 1 {
		t.Errorf("FallbackCount = %d, want 1", stats.FallbackCount)
	}
	if stats.FallbackRate != 0.25 {
		t.Errorf("FallbackRate = %v, want 0.25", stats.FallbackRate)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 3 {
		t.Errorf("cache hits/misses = %d/%d, want 1/3", stats.CacheHits, stats.CacheMisses)
	}
	if stats.AvgLatencyMs != 2.5 {
		t.Errorf("AvgLatencyMs = %v, want 2.5", stats.AvgLatencyMs)
	}

	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "alpha" {
		t.Errorf("TopQueries = %v, want alpha first", stats.TopQueries)
	}
	if len(stats.FallbackQueries) != 1 || stats.FallbackQueries[0].Query != "beta," {
		t.Errorf("FallbackQueries = %v, want only beta,", stats.FallbackQueries)
	}
}

func TestAggregatorIgnoresMalformedEvents(t *testing.T) {
	agg := NewAggregator()
	handle := HandleEvent(agg)

	// Decode failures are logged and skipped, never returned: a poison
	// message must not wedge the consumer loop.
	if err := handle(context.Background(), nil, []byte("{not json")); err != nil {
		t.Fatalf("malformed event returned error: %v", err)
	}
	if stats := agg.Stats(); stats.TotalTranslations != 0 {
		t.Errorf("TotalTranslations = %d, want 0", stats.TotalTranslations)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		pct  int
		want int64
	}{
		{50, 6},
		{95, 10},
		{99, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.pct); got != tt.want {
			t.Errorf("percentile(%d) = %d, want %d", tt.pct, got, tt.want)
		}
	}
	if got := percentile(nil, 50); got != 0 {
		t.Errorf("percentile(nil) = %d, want 0", got)
	}
}
