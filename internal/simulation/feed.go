package simulation

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
)

// FeedLoader performs the one-shot startup fetch of the near-Earth-object
// feed. It never retries; a failure leaves the feed empty.
type FeedLoader struct {
	feed    domain.NeoFeed
	store   *Store
	logger  *slog.Logger
	metrics *observability.Metrics
	done    atomic.Bool
}

// NewFeedLoader creates a loader. A nil feed disables fetching.
func NewFeedLoader(feed domain.NeoFeed, store *Store, logger *slog.Logger, metrics *observability.Metrics) *FeedLoader {
	return &FeedLoader{
		feed:    feed,
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Load fetches the feed once and installs it into the session.
func (l *FeedLoader) Load(ctx context.Context) {
	defer l.done.Store(true)

	if l.feed == nil {
		l.logger.Info("near-earth object feed disabled")
		l.store.Dispatch(domain.FeedLoaded{})
		return
	}

	records, err := l.feed.FetchNeoFeed(ctx)
	if err != nil {
		l.logger.Warn("failed to fetch near-earth object feed", "error", err)
		l.metrics.FeedFetches.WithLabelValues("error").Inc()
		l.store.Dispatch(domain.FeedFailed{})
		return
	}

	l.metrics.FeedFetches.WithLabelValues("success").Inc()
	l.metrics.FeedRecords.Set(float64(len(records)))
	l.store.Dispatch(domain.FeedLoaded{Records: records})
	l.logger.Info("near-earth object feed loaded", "records", len(records))
}

// CheckReadiness returns nil once the startup fetch has finished, whether or
// not it succeeded.
func (l *FeedLoader) CheckReadiness(_ context.Context) error {
	if !l.done.Load() {
		return errors.New("near-earth object feed still loading")
	}
	return nil
}
