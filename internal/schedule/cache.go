package schedule

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const defaultStaleAfter = 24 * time.Hour

// Cache combines a Store and a Fetcher with the refresh-then-persist,
// fall-back-on-failure policy. Reads never block on the network; only
// Refresh and Ensure may reach out.
type Cache struct {
	store      Store
	fetcher    Fetcher
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewCache creates a cache over the given store and fetcher. staleAfter
// controls when current- and future-year records are refetched; zero means
// the 24h default. Past-year records never go stale.
func NewCache(store Store, fetcher Fetcher, staleAfter time.Duration, logger *zap.Logger) *Cache {
	if staleAfter == 0 {
		staleAfter = defaultStaleAfter
	}
	return &Cache{
		store:      store,
		fetcher:    fetcher,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
	}
}

// Get is a local lookup only. Returns ErrMissing when nothing is cached.
func (c *Cache) Get(year int) (*Record, error) {
	return c.store.Get(year)
}

// Refresh fetches the year from the remote source and atomically replaces
// the stored record. On any failure the prior record stays untouched and a
// RefreshError is returned; the caller falls back to Get.
func (c *Cache) Refresh(ctx context.Context, year int) (*Record, error) {
	record, err := c.fetcher.FetchYear(ctx, year)
	if err != nil {
		return nil, &RefreshError{Year: year, Err: err}
	}

	record.FetchedAt = c.now()
	if err := c.store.Put(record); err != nil {
		return nil, &RefreshError{Year: year, Err: err}
	}

	return record, nil
}

// Ensure returns a usable record for the year: the cached one if fresh,
// otherwise a refreshed one, otherwise whatever is cached even if stale.
// ErrMissing only when nothing is cached and the refresh failed too.
func (c *Cache) Ensure(ctx context.Context, year int) (*Record, error) {
	cached, err := c.store.Get(year)
	if err != nil && !errors.Is(err, ErrMissing) {
		return nil, err
	}

	if cached != nil && !c.stale(cached) {
		return cached, nil
	}

	refreshed, refreshErr := c.Refresh(ctx, year)
	if refreshErr == nil {
		return refreshed, nil
	}

	// Refresh failures are absorbed: stale data beats no data.
	c.logger.Warn("Schedule refresh failed, falling back to cache",
		zap.Int("year", year),
		zap.Error(refreshErr))

	if cached != nil {
		return cached, nil
	}
	return nil, ErrMissing
}

// stale reports whether a record should be refetched. Past years are final
// once published; the current and future years may gain late-announced
// adjustments and expire after staleAfter.
func (c *Cache) stale(record *Record) bool {
	if record.Year < c.now().Year() {
		return false
	}
	return c.now().Sub(record.FetchedAt) > c.staleAfter
}
