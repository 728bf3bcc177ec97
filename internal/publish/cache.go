// internal/publish/cache.go
//
// Remote-publish cache.
//
// Context
// -------
// Publishing is slow and the chart host meters it, so identical documents
// are published once per process and reused afterwards.  Lookup order:
//
//	memo (in-process) → ledger (optional, survives restarts) → chart host
//
// Concurrent callers for one key share the in-flight publish.  Only
// successful URLs are stored; a failed publish is retried by the next call.
//
// Notes
// -----
// • Ledger failures are logged and never fail a publish.
// • Hit, miss, and error counters are exported through internal/metrics.
package publish

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/adept-charts/internal/cache"
	"github.com/yanizio/adept-charts/internal/logger"
	"github.com/yanizio/adept-charts/internal/metrics"
)

// Publisher uploads one figure document.  *Client implements it.
type Publisher interface {
	Publish(ctx context.Context, figure []byte, opts Options) (string, error)
}

// Ledger persists published URLs by content hash.  *SQLLedger implements it.
type Ledger interface {
	Lookup(ctx context.Context, hash string) (url string, ok bool, err error)
	Record(ctx context.Context, hash, url, sharing string) error
}

// Cache memoizes publishes.  Safe for concurrent use.
type Cache struct {
	pub    Publisher
	memo   *cache.Memo
	ledger Ledger // nil disables the ledger tier
}

// NewCache wires pub behind memo.  ledger may be nil.
func NewCache(pub Publisher, memo *cache.Memo, ledger Ledger) *Cache {
	if memo == nil {
		memo = cache.NewMemo(0)
	}
	return &Cache{pub: pub, memo: memo, ledger: ledger}
}

// PublishOrFetchCached returns the URL for (figure, opts), publishing only
// when neither tier has it.
func (c *Cache) PublishOrFetchCached(ctx context.Context, figure []byte, opts Options) (string, error) {
	key, err := Key(figure, opts)
	if err != nil {
		return "", fmt.Errorf("publish: hash figure: %w", err)
	}
	log := logger.FromContext(ctx)

	v, hit, err := c.memo.Do(key, func() (any, error) {
		return c.fetch(ctx, log, key, figure, opts)
	})
	if err != nil {
		return "", err
	}
	if hit {
		metrics.PublishCacheHitsTotal.Inc()
	}
	return v.(string), nil
}

// fetch runs inside the singleflight barrier, once per key at a time.
func (c *Cache) fetch(ctx context.Context, log *zap.SugaredLogger, key string, figure []byte, opts Options) (string, error) {
	if c.ledger != nil {
		url, ok, err := c.ledger.Lookup(ctx, key)
		switch {
		case err != nil:
			log.Warnw("publish ledger lookup failed", "hash", key, "err", err)
		case ok:
			metrics.PublishCacheHitsTotal.Inc()
			return url, nil
		}
	}

	metrics.PublishCacheMissesTotal.Inc()
	log.Debugw("publishing chart", "hash", key, "sharing", opts.Sharing)
	url, err := c.pub.Publish(ctx, figure, opts)
	if err != nil {
		metrics.PublishErrorsTotal.Inc()
		return "", err
	}

	if c.ledger != nil {
		if err := c.ledger.Record(ctx, key, url, opts.Sharing); err != nil {
			log.Warnw("publish ledger record failed", "hash", key, "err", err)
		}
	}
	return url, nil
}

// Invalidate drops the stored URL for (figure, opts) from the memo.  The
// ledger keeps its row.
func (c *Cache) Invalidate(figure []byte, opts Options) error {
	key, err := Key(figure, opts)
	if err != nil {
		return err
	}
	c.memo.Forget(key)
	return nil
}

// Len reports the number of memoized URLs.
func (c *Cache) Len() int { return c.memo.Len() }
