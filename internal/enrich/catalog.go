// Package enrich normalizes exercise names against a user's logged history.
// It runs after parsing and before persistence; the parser itself never
// consults historical data.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NameSource yields the distinct exercise names a user has logged before.
type NameSource interface {
	DistinctExerciseNames(ctx context.Context, userID int) ([]string, error)
}

// Catalog matches freshly parsed exercise names against a user's history so
// "pullups", "pull ups" and "pull-ups" all land on one spelling. The name
// list is cached in Redis when a cache client is configured; entries expire
// by TTL rather than explicit invalidation, so a brand-new name may take one
// TTL window to join the match pool.
type Catalog struct {
	source NameSource
	cache  *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// NewCatalog creates a Catalog. cache may be nil to read from the source on
// every call.
func NewCatalog(source NameSource, cache *redis.Client, ttl time.Duration, log *slog.Logger) *Catalog {
	return &Catalog{source: source, cache: cache, ttl: ttl, log: log}
}

// Normalize canonicalizes name and, when the user has logged a close enough
// match before, returns that existing spelling. Enrichment is best effort: a
// source or cache failure degrades to the canonical form, never to an error.
func (c *Catalog) Normalize(ctx context.Context, userID int, name string) string {
	canon := Canonicalize(name)
	if canon == "" {
		return canon
	}

	known, err := c.knownNames(ctx, userID)
	if err != nil {
		c.log.Warn("name enrichment degraded", "user_id", userID, "error", err)
		return canon
	}

	if match, ok := nearest(canon, known); ok {
		return match
	}
	return canon
}

func (c *Catalog) knownNames(ctx context.Context, userID int) ([]string, error) {
	key := fmt.Sprintf("replog:names:%d", userID)

	if c.cache != nil {
		data, err := c.cache.Get(ctx, key).Bytes()
		if err == nil {
			var names []string
			if json.Unmarshal(data, &names) == nil {
				return names, nil
			}
		} else if err != redis.Nil {
			c.log.Warn("name cache read failed", "error", err)
		}
	}

	names, err := c.source.DistinctExerciseNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading exercise names: %w", err)
	}

	if c.cache != nil {
		data, err := json.Marshal(names)
		if err == nil {
			if err := c.cache.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.log.Warn("name cache write failed", "error", err)
			}
		}
	}
	return names, nil
}

// nearest picks the best historical match for a canonical name. Exact match
// wins; otherwise a dehyphenated comparison catches spelling variants the
// canonicalizer doesn't know; otherwise a small edit distance on names long
// enough for it to be meaningful.
func nearest(canon string, known []string) (string, bool) {
	flat := flatten(canon)
	for _, k := range known {
		ck := Canonicalize(k)
		if ck == canon || flatten(ck) == flat {
			return ck, true
		}
	}
	if len(canon) >= 5 {
		for _, k := range known {
			ck := Canonicalize(k)
			if len(ck) >= 5 && levenshtein(canon, ck) <= 1 {
				return ck, true
			}
		}
	}
	return "", false
}

// flatten strips separators so "pull-ups" and "pull ups" compare equal.
func flatten(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}
