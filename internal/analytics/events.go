package analytics

import "time"

type EventType string

const (
	EventTranslated EventType = "translated"
	EventFallback   EventType = "fallback"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
)

// TranslationEvent records a single translation request for the analytics
// pipeline.
type TranslationEvent struct {
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Mode       string    `json:"mode"`
	Structured bool      `json:"structured"`
	ParseError string    `json:"parse_error,omitempty"`
	OutputLen  int       `json:"output_len"`
	CacheHit   bool      `json:"cache_hit"`
	LatencyMs  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}
