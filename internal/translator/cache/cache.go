// Package cache provides a Redis-backed cache of compiled predicates keyed by
// source text and phrase mode. Misses are deduplicated with singleflight so a
// burst of identical queries translates once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/grammophone/fts-query-translator/internal/translator"
	"github.com/grammophone/fts-query-translator/pkg/config"
	pkgredis "github.com/grammophone/fts-query-translator/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "translate:"

// Entry is the cached portion of a translation result. The parse error that
// produced a fallback entry is not cached; cached fallbacks simply report
// Structured=false.
type Entry struct {
	Predicate  string `json:"predicate"`
	Structured bool   `json:"structured"`
}

type TranslationCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, cfg config.RedisConfig) *TranslationCache {
	return &TranslationCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "translation-cache"),
	}
}

func (c *TranslationCache) Get(ctx context.Context, source string, mode translator.PhraseMode) (Entry, bool) {
	key := c.buildKey(source, mode)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return Entry{}, false
	}
	c.hits.Add(1)
	return entry, true
}

func (c *TranslationCache) Set(ctx context.Context, source string, mode translator.PhraseMode, entry Entry) {
	key := c.buildKey(source, mode)
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached entry for (source, mode) or runs computeFn
// once per key across concurrent callers, caching its result. The second
// return reports whether the entry came from cache.
func (c *TranslationCache) GetOrCompute(
	ctx context.Context,
	source string,
	mode translator.PhraseMode,
	computeFn func() (Entry, error),
) (Entry, bool, error) {
	if entry, ok := c.Get(ctx, source, mode); ok {
		return entry, true, nil
	}
	key := c.buildKey(source, mode)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if entry, ok := c.Get(ctx, source, mode); ok {
			return entry, nil
		}
		entry, err := computeFn()
		if err != nil {
			return Entry{}, err
		}
		c.Set(ctx, source, mode, entry)
		return entry, nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return val.(Entry), false, nil
}

func (c *TranslationCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating translation cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *TranslationCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *TranslationCache) buildKey(source string, mode translator.PhraseMode) string {
	hash := sha256.Sum256([]byte(mode.String() + "|" + source))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
