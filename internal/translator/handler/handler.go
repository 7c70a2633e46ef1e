package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/grammophone/fts-query-translator/internal/analytics"
	"github.com/grammophone/fts-query-translator/internal/history"
	"github.com/grammophone/fts-query-translator/internal/translator"
	"github.com/grammophone/fts-query-translator/internal/translator/cache"
	"github.com/grammophone/fts-query-translator/internal/translator/compiler"
	"github.com/grammophone/fts-query-translator/internal/translator/lexer"
	"github.com/grammophone/fts-query-translator/internal/translator/parser"
	"github.com/grammophone/fts-query-translator/pkg/logger"
	"github.com/grammophone/fts-query-translator/pkg/metrics"
	"github.com/grammophone/fts-query-translator/pkg/middleware"
	"github.com/grammophone/fts-query-translator/pkg/tracing"
)

// translateRequest is the POST body for the translate endpoint.
type translateRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
}

// translateResponse is returned for both GET and POST translate calls.
// Structured=false marks best-effort fallback output, not a hard error.
type translateResponse struct {
	Query      string `json:"query"`
	Mode       string `json:"mode"`
	Predicate  string `json:"predicate"`
	Structured bool   `json:"structured"`
	ParseError string `json:"parse_error,omitempty"`
}

type Handler struct {
	svc            *translator.Translator
	cache          *cache.TranslationCache
	collector      *analytics.Collector
	history        *history.Store
	metrics        *metrics.Metrics
	defaultMode    translator.PhraseMode
	maxQueryLength int
	logger         *slog.Logger
}

func New(
	svc *translator.Translator,
	translationCache *cache.TranslationCache,
	collector *analytics.Collector,
	historyStore *history.Store,
	m *metrics.Metrics,
	defaultMode translator.PhraseMode,
	maxQueryLength int,
) *Handler {
	return &Handler{
		svc:            svc,
		cache:          translationCache,
		collector:      collector,
		history:        historyStore,
		metrics:        m,
		defaultMode:    defaultMode,
		maxQueryLength: maxQueryLength,
		logger:         slog.Default().With("component", "translate-handler"),
	}
}

// Translate handles GET (?q=&mode=) and POST (JSON body) requests.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query, mode, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "translate", middleware.GetRequestID(ctx))
	span.SetAttr("mode", mode.String())
	defer func() {
		span.End()
		span.Log()
	}()

	var entry cache.Entry
	var parseErrText string
	cacheHit := false

	if h.cache != nil {
		var err error
		entry, cacheHit, err = h.cache.GetOrCompute(ctx, query, mode, func() (cache.Entry, error) {
			_, compileSpan := tracing.StartChild(ctx, "parse-compile")
			defer compileSpan.End()
			result, err := h.svc.Translate(query, mode)
			if err != nil {
				return cache.Entry{}, err
			}
			h.recordParseError(result.ParseErr)
			if result.ParseErr != nil {
				parseErrText = result.ParseErr.Error()
			}
			return cache.Entry{Predicate: result.Predicate, Structured: result.Structured}, nil
		})
		if err != nil {
			log.Error("translation failed", "query", query, "error", err)
			h.writeError(w, http.StatusInternalServerError, "translation failed")
			return
		}
	} else {
		_, compileSpan := tracing.StartChild(ctx, "parse-compile")
		result, err := h.svc.Translate(query, mode)
		compileSpan.End()
		if err != nil {
			log.Error("translation failed", "query", query, "error", err)
			h.writeError(w, http.StatusInternalServerError, "translation failed")
			return
		}
		h.recordParseError(result.ParseErr)
		if result.ParseErr != nil {
			parseErrText = result.ParseErr.Error()
		}
		entry = cache.Entry{Predicate: result.Predicate, Structured: result.Structured}
	}

	latencyMs := time.Since(start).Milliseconds()
	span.SetAttr("structured", entry.Structured)
	span.SetAttr("cache_hit", cacheHit)

	if h.metrics != nil {
		outcome := "structured"
		if !entry.Structured {
			outcome = "fallback"
		}
		h.metrics.TranslationsTotal.WithLabelValues(mode.String(), outcome).Inc()
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		h.metrics.TranslationDuration.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		if h.cache != nil {
			if cacheHit {
				h.metrics.CacheHitsTotal.Inc()
			} else {
				h.metrics.CacheMissesTotal.Inc()
			}
		}
	}

	log.Info("query translated",
		"query", query,
		"mode", mode.String(),
		"structured", entry.Structured,
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)

	if h.collector != nil {
		eventType := analytics.EventTranslated
		if !entry.Structured {
			eventType = analytics.EventFallback
		}
		h.collector.Track(analytics.TranslationEvent{
			Type:       eventType,
			Query:      query,
			Mode:       mode.String(),
			Structured: entry.Structured,
			ParseError: parseErrText,
			OutputLen:  len(entry.Predicate),
			CacheHit:   cacheHit,
			LatencyMs:  latencyMs,
			Timestamp:  time.Now().UTC(),
			RequestID:  middleware.GetRequestID(ctx),
		})
	}

	if h.history != nil && !cacheHit {
		rec := history.Record{
			Source:     query,
			Mode:       mode.String(),
			Predicate:  entry.Predicate,
			Structured: entry.Structured,
			LatencyMs:  latencyMs,
		}
		// Off the request path; Record absorbs its own failures.
		go h.history.Record(context.WithoutCancel(ctx), rec)
	}

	h.writeJSON(w, http.StatusOK, translateResponse{
		Query:      query,
		Mode:       mode.String(),
		Predicate:  entry.Predicate,
		Structured: entry.Structured,
		ParseError: parseErrText,
	})
}

// readRequest extracts and validates the query and mode from either request
// shape, writing the error response itself when validation fails.
func (h *Handler) readRequest(w http.ResponseWriter, r *http.Request) (string, translator.PhraseMode, bool) {
	var query, modeName string
	if r.Method == http.MethodPost {
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return "", 0, false
		}
		query, modeName = req.Query, req.Mode
	} else {
		query = r.URL.Query().Get("q")
		modeName = r.URL.Query().Get("mode")
	}

	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return "", 0, false
	}
	if h.maxQueryLength > 0 && len(query) > h.maxQueryLength {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("query exceeds %d bytes", h.maxQueryLength))
		return "", 0, false
	}

	mode := h.defaultMode
	if modeName != "" {
		parsed, err := compiler.ParsePhraseMode(modeName)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return "", 0, false
		}
		mode = parsed
	}
	return query, mode, true
}

func (h *Handler) recordParseError(err error) {
	if err == nil || h.metrics == nil {
		return
	}
	var lexErr *lexer.Error
	var synErr *parser.SyntaxError
	kind := "other"
	switch {
	case errors.As(err, &lexErr):
		kind = "lexical"
	case errors.As(err, &synErr):
		kind = "syntactic"
	}
	h.metrics.ParseErrorsTotal.WithLabelValues(kind).Inc()
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// History returns the most recent translations from the audit store.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > 500 {
			parsed = 500
		}
		limit = parsed
	}

	records, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
