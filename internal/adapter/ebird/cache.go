package ebird

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcgee/ebird-notable-maps/internal/domain"
	"github.com/mmcgee/ebird-notable-maps/internal/observability"
)

// FetchCache memoizes an ObservationFetcher by rounded spatial/temporal key.
//
// The key rounds coordinates to 6 decimal places and coerces radius to whole
// kilometers, so lookups that differ only in sub-meter noise collapse to one
// external call. Entries live for the cache's lifetime with no TTL and no
// eviction; a cache is created per build invocation and discarded with it.
//
// A failed fetch caches an empty result under the same key; the cache does
// not distinguish "failed" from "legitimately zero observations", and repeat
// lookups never re-fetch. The error is still returned from the first call so
// the caller owns the degrade-to-empty decision.
//
// Builds are single-threaded, so the table needs no locking.
type FetchCache struct {
	inner   domain.ObservationFetcher
	entries map[string][]domain.ObservationRecord
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFetchCache creates a memoizing decorator around a fetcher.
func NewFetchCache(inner domain.ObservationFetcher, logger *slog.Logger, metrics *observability.Metrics) *FetchCache {
	return &FetchCache{
		inner:   inner,
		entries: make(map[string][]domain.ObservationRecord),
		logger:  logger,
		metrics: metrics,
	}
}

// RecentNotable returns the cached record slice for the query's key, or
// performs exactly one inner fetch and stores the result.
func (c *FetchCache) RecentNotable(ctx context.Context, q domain.Query) ([]domain.ObservationRecord, error) {
	key := cacheKey(q)
	if records, ok := c.entries[key]; ok {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return records, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	records, err := c.inner.RecentNotable(ctx, q)
	if err != nil {
		// Cache the empty result so the same key is not re-fetched
		// within this build's lifetime.
		c.entries[key] = []domain.ObservationRecord{}
		c.metrics.FetchRequests.WithLabelValues("error").Inc()
		c.logger.Warn("ebird fetch failed", "key", key, "error", err)
		return nil, err
	}

	c.entries[key] = records
	c.metrics.FetchRequests.WithLabelValues("success").Inc()
	c.logger.Debug("ebird fetch cached", "key", key, "records", len(records))
	return records, nil
}

// Len reports the number of cached keys.
func (c *FetchCache) Len() int {
	return len(c.entries)
}

func cacheKey(q domain.Query) string {
	return fmt.Sprintf("%.6f,%.6f|%d|%d", q.Lat, q.Lon, int(q.RadiusKm), q.BackDays)
}
