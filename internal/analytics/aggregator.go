package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grammophone/fts-query-translator/pkg/kafka"
)

// AggregatedStats is the rollup served by the analytics endpoint.
type AggregatedStats struct {
	TotalTranslations    int64        `json:"total_translations"`
	StructuredCount      int64        `json:"structured_count"`
	FallbackCount        int64        `json:"fallback_count"`
	FallbackRate         float64      `json:"fallback_rate"`
	CacheHits            int64        `json:"cache_hits"`
	CacheMisses          int64        `json:"cache_misses"`
	AvgLatencyMs         float64      `json:"avg_latency_ms"`
	P50LatencyMs         int64        `json:"p50_latency_ms"`
	P95LatencyMs         int64        `json:"p95_latency_ms"`
	P99LatencyMs         int64        `json:"p99_latency_ms"`
	TopQueries           []QueryCount `json:"top_queries"`
	FallbackQueries      []QueryCount `json:"fallback_queries"`
	TranslationsPerMin   float64      `json:"translations_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes translation events from Kafka and keeps in-memory
// rollups for the stats endpoint.
type Aggregator struct {
	mu              sync.RWMutex
	total           atomic.Int64
	structured      atomic.Int64
	fallback        atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	latencies       []int64
	queryCounts     map[string]int64
	fallbackQueries map[string]int64
	startTime       time.Time

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:       make([]int64, 0, 10000),
		queryCounts:     make(map[string]int64),
		fallbackQueries: make(map[string]int64),
		startTime:       time.Now(),
		logger:          slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns the Kafka message handler that feeds agg.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[TranslationEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode translation event", "error", err)
			return nil
		}
		agg.record(event)
		return nil
	}
}

func (a *Aggregator) record(event TranslationEvent) {
	a.total.Add(1)
	if event.Structured {
		a.structured.Add(1)
	} else {
		a.fallback.Add(1)
	}
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if !event.Structured {
		a.fallbackQueries[event.Query]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalTranslations: a.total.Load(),
		StructuredCount:   a.structured.Load(),
		FallbackCount:     a.fallback.Load(),
		CacheHits:         a.cacheHits.Load(),
		CacheMisses:       a.cacheMisses.Load(),
	}
	if stats.TotalTranslations > 0 {
		stats.FallbackRate = float64(stats.FallbackCount) / float64(stats.TotalTranslations)
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.FallbackQueries = topN(a.fallbackQueries, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.TranslationsPerMin = float64(stats.TotalTranslations) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
